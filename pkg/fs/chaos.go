package fs

import (
	"math/rand"
	"os"
	"sync"
	"syscall"
)

// ChaosConfig controls fault injection probabilities.
// Each rate is a float64 from 0.0 (never) to 1.0 (always).
type ChaosConfig struct {
	ReadFailRate  float64 // Fail ReadFile with EIO
	WriteFailRate float64 // Fail WriteFileAtomic with ENOSPC before touching disk
	OpenFailRate  float64 // Fail OpenFile and MkdirAll with EACCES
	StatFailRate  float64 // Fail Stat and Exists with EIO
}

// ChaosMode controls how Chaos behaves.
type ChaosMode uint8

const (
	// ChaosModePassthrough behaves like the underlying FS.
	ChaosModePassthrough ChaosMode = iota

	// ChaosModeInject enables fault-rate injection.
	ChaosModeInject
)

// Chaos wraps an [FS] and injects failures at configured rates. A failed
// call never reaches the underlying FS, so an injected write leaves the
// previous file contents in place.
//
// Chaos is safe for concurrent use.
type Chaos struct {
	fs   FS
	cfg  ChaosConfig
	mu   sync.Mutex
	rng  *rand.Rand
	mode ChaosMode
}

// NewChaos wraps fsys. seed makes the fault sequence reproducible. The
// returned Chaos starts in [ChaosModeInject].
func NewChaos(fsys FS, seed int64, cfg ChaosConfig) *Chaos {
	return &Chaos{
		fs:   fsys,
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test faults
		mode: ChaosModeInject,
	}
}

// SetMode switches between injecting and passing through.
func (c *Chaos) SetMode(mode ChaosMode) {
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
}

// roll reports whether a fault with the given rate fires now.
func (c *Chaos) roll(rate float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ChaosModePassthrough || rate <= 0 {
		return false
	}

	return c.rng.Float64() < rate
}

func injected(op, path string, errno syscall.Errno) error {
	return &InjectedError{Op: op, Path: path, Err: errno}
}

// OpenFile fails with EACCES at OpenFailRate.
func (c *Chaos) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	if c.roll(c.cfg.OpenFailRate) {
		return nil, injected("open", path, syscall.EACCES)
	}

	return c.fs.OpenFile(path, flag, perm)
}

// ReadFile fails with EIO at ReadFailRate.
func (c *Chaos) ReadFile(path string) ([]byte, error) {
	if c.roll(c.cfg.ReadFailRate) {
		return nil, injected("read", path, syscall.EIO)
	}

	return c.fs.ReadFile(path)
}

// WriteFileAtomic fails with ENOSPC at WriteFailRate.
func (c *Chaos) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if c.roll(c.cfg.WriteFailRate) {
		return injected("write", path, syscall.ENOSPC)
	}

	return c.fs.WriteFileAtomic(path, data, perm)
}

// MkdirAll fails with EACCES at OpenFailRate.
func (c *Chaos) MkdirAll(path string, perm os.FileMode) error {
	if c.roll(c.cfg.OpenFailRate) {
		return injected("mkdir", path, syscall.EACCES)
	}

	return c.fs.MkdirAll(path, perm)
}

// Stat fails with EIO at StatFailRate.
func (c *Chaos) Stat(path string) (os.FileInfo, error) {
	if c.roll(c.cfg.StatFailRate) {
		return nil, injected("stat", path, syscall.EIO)
	}

	return c.fs.Stat(path)
}

// Exists fails with EIO at StatFailRate.
func (c *Chaos) Exists(path string) (bool, error) {
	if c.roll(c.cfg.StatFailRate) {
		return false, injected("stat", path, syscall.EIO)
	}

	return c.fs.Exists(path)
}

// Compile-time interface check.
var _ FS = (*Chaos)(nil)
