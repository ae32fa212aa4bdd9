// Package config loads the shell's layered JSONC configuration.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"github.com/tailscale/hujson"

	"github.com/calvinalkan/vfat/pkg/fatfs"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	Image        string `json:"image" jsonschema:"description=Path of the disk image file. Created on first save."`
	HistoryFile  string `json:"history_file,omitempty" jsonschema:"description=File for interactive command history. Empty disables history."`
	MaxEntries   int    `json:"max_entries,omitempty" jsonschema:"description=Maximum entries per directory.,minimum=1,maximum=1638"`
	MaxDepth     int    `json:"max_depth,omitempty" jsonschema:"description=Maximum directory depth including the root.,minimum=1"`
	MaxSegments  int    `json:"max_segments,omitempty" jsonschema:"description=Maximum number of segments in a path.,minimum=1"`
	LogLevel     string `json:"log_level,omitempty" jsonschema:"description=Diagnostic log level on stderr.,enum=debug,enum=info,enum=warn,enum=error"`
	OTLPEndpoint string `json:"otlp_endpoint,omitempty" jsonschema:"description=host:port of an OTLP/HTTP metrics collector. Empty disables export."`

	// Resolved paths (computed, not serialized)
	ImageAbs       string `json:"-"`
	HistoryFileAbs string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project or explicit config if loaded, empty otherwise
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Image:       "data",
		MaxEntries:  fatfs.DefaultMaxEntries,
		MaxDepth:    fatfs.DefaultMaxDepth,
		MaxSegments: fatfs.DefaultMaxSegments,
		LogLevel:    "warn",
	}
}

// FileName is the project config file name.
const FileName = ".vfat.json"

// globalPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/vfat/config.json if set, otherwise ~/.config/vfat/config.json.
// Returns empty string if home directory cannot be determined.
func globalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "vfat", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "vfat", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDir       string            // working directory; if empty, os.Getwd() is used
	ConfigPath    string            // -c/--config flag value
	ImageOverride string            // -i/--image flag value; empty means no override
	Verbose       bool              // -v/--verbose forces log_level debug
	Env           map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/vfat/config.json or $XDG_CONFIG_HOME/vfat/config.json)
// 3. Project config file at default location (.vfat.json, if exists)
// 4. Explicit config file via ConfigPath (replaces 3)
// 5. CLI overrides.
//
// Relative image and history paths resolve against the working directory.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDir
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	globalCfg, globalFile, err := loadGlobal(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalFile
	cfg = merge(cfg, globalCfg)

	projectCfg, projectFile, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectFile
	cfg = merge(cfg, projectCfg)

	if input.ImageOverride != "" {
		cfg.Image = input.ImageOverride
	}

	if input.Verbose {
		cfg.LogLevel = "debug"
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	cfg.ImageAbs = absPath(workDir, cfg.Image)

	if cfg.HistoryFile != "" {
		cfg.HistoryFileAbs = absPath(workDir, cfg.HistoryFile)
	}

	return cfg, nil
}

func absPath(workDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}

// loadGlobal loads the global user config file if it exists.
// Returns the config, the path if loaded, and any error.
func loadGlobal(env map[string]string) (Config, string, error) {
	path := globalPath(env)
	if path == "" {
		return Config{}, "", nil
	}

	cfg, explicitEmpty, loaded, err := loadFile(path, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["image"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, ErrImagePathEmpty)
	}

	return cfg, path, nil
}

// loadProject loads the project config file (.vfat.json) or an explicit config file.
// Returns the config, the path if loaded, and any error.
func loadProject(workDir, configPath string) (Config, string, error) {
	var (
		file      string
		mustExist bool
	)

	if configPath != "" {
		file = absPath(workDir, configPath)
		mustExist = true

		if _, statErr := os.Stat(file); statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	} else {
		file = filepath.Join(workDir, FileName)
	}

	cfg, explicitEmpty, loaded, err := loadFile(file, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["image"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, file, ErrImagePathEmpty)
	}

	return cfg, file, nil
}

// loadFile loads a config file. If mustExist is false, missing files return zero config.
// Returns the config, a map of explicitly empty fields, whether file was loaded, and any error.
func loadFile(path string, mustExist bool) (Config, map[string]bool, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config paths are user-controlled
	if err != nil {
		if mustExist || !os.IsNotExist(err) {
			return Config{}, nil, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return Config{}, nil, false, nil
	}

	cfg, explicitEmpty, parseErr := parse(data)
	if parseErr != nil {
		return Config{}, nil, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, explicitEmpty, true, nil
}

func parse(data []byte) (Config, map[string]bool, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSON: %w", err)
	}

	// Check which fields were explicitly set to empty
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	explicitEmpty := make(map[string]bool)

	if val, exists := raw["image"]; exists {
		if str, ok := val.(string); ok && str == "" {
			explicitEmpty["image"] = true
		}
	}

	return cfg, explicitEmpty, nil
}

func merge(base, overlay Config) Config {
	if overlay.Image != "" {
		base.Image = overlay.Image
	}

	if overlay.HistoryFile != "" {
		base.HistoryFile = overlay.HistoryFile
	}

	if overlay.MaxEntries != 0 {
		base.MaxEntries = overlay.MaxEntries
	}

	if overlay.MaxDepth != 0 {
		base.MaxDepth = overlay.MaxDepth
	}

	if overlay.MaxSegments != 0 {
		base.MaxSegments = overlay.MaxSegments
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	if overlay.OTLPEndpoint != "" {
		base.OTLPEndpoint = overlay.OTLPEndpoint
	}

	return base
}

func validate(cfg Config) error {
	if cfg.Image == "" {
		return ErrImagePathEmpty
	}

	if cfg.MaxEntries < 1 || cfg.MaxEntries > fatfs.MaxEntriesLimit {
		return fmt.Errorf("%w: max_entries %d not in [1,%d]", ErrLimitOutOfRange, cfg.MaxEntries, fatfs.MaxEntriesLimit)
	}

	if cfg.MaxDepth < 1 {
		return fmt.Errorf("%w: max_depth %d must be positive", ErrLimitOutOfRange, cfg.MaxDepth)
	}

	if cfg.MaxSegments < 1 {
		return fmt.Errorf("%w: max_segments %d must be positive", ErrLimitOutOfRange, cfg.MaxSegments)
	}

	if _, err := cfg.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// SlogLevel maps LogLevel to a [slog.Level].
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrLogLevelInvalid, err)
		}

		return level, nil
	default:
		return 0, fmt.Errorf("%w: got %q", ErrLogLevelInvalid, c.LogLevel)
	}
}

// FsOptions returns the file system limits from the config.
func (c Config) FsOptions() fatfs.Options {
	return fatfs.Options{
		MaxEntries:  c.MaxEntries,
		MaxDepth:    c.MaxDepth,
		MaxSegments: c.MaxSegments,
	}
}

// Schema returns the JSON schema of the config file.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}

	s := r.Reflect(&Config{})
	s.Title = "vfat configuration"
	s.Description = "Schema for .vfat.json and ~/.config/vfat/config.json (JSON with comments)."

	return s
}
