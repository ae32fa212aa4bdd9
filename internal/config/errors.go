package config

import "errors"

// Error variables for configuration loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrImagePathEmpty     = errors.New("image cannot be empty")
	ErrLimitOutOfRange    = errors.New("limit out of range")
	ErrLogLevelInvalid    = errors.New("log_level must be one of debug, info, warn, error")
)
