package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dshills/bbuf/internal/config/loader"
)

// DefaultEnvPrefix is the prefix of environment variables read by Load.
const DefaultEnvPrefix = "BBUF_"

// Source identifies where a setting's current value came from.
type Source uint8

const (
	// SourceDefault is a built-in default.
	SourceDefault Source = iota
	// SourceFile is the configuration file.
	SourceFile
	// SourceEnv is an environment variable.
	SourceEnv
	// SourceSet is a call to Set.
	SourceSet
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceFile:
		return "file"
	case SourceEnv:
		return "env"
	case SourceSet:
		return "set"
	default:
		return "unknown"
	}
}

// Config holds bbuf settings merged from defaults, an optional file, and
// the environment. Values are validated and converted when they are
// loaded, so the typed getters only fail for unknown paths.
type Config struct {
	mu sync.RWMutex

	fsys      loader.FileSystem
	path      string
	envPrefix string

	values  map[string]any
	sources map[string]Source
}

// Option configures a Config instance.
type Option func(*Config)

// WithFile sets the configuration file read by Load. The format is chosen
// by extension: .toml, .yaml or .yml.
func WithFile(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithFileSystem sets the file system the configuration file is read from.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(c *Config) {
		c.fsys = fsys
	}
}

// WithEnvPrefix sets the environment variable prefix. An empty prefix
// disables environment overrides.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// New creates a Config holding the built-in defaults.
func New(opts ...Option) *Config {
	c := &Config{
		fsys:      loader.DefaultFS(),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.values, c.sources = defaults()
	return c
}

// Default returns a Config holding only the built-in defaults.
func Default() *Config {
	return New(WithEnvPrefix(""))
}

// Load reads the configuration file, if one was given, and then the
// environment. Later sources override earlier ones. Unknown paths in the
// file are errors; unknown environment variables are ignored. On error
// the previous values are kept.
func (c *Config) Load(_ context.Context) error {
	values, sources := defaults()

	var errs []error
	if c.path != "" {
		l, err := loader.ForPath(c.fsys, c.path)
		if err != nil {
			return err
		}
		data, err := l.Load()
		if err != nil {
			return err
		}
		if data == nil {
			return fmt.Errorf("%w: %s", ErrFileNotFound, c.path)
		}
		errs = append(errs, apply(values, sources, loader.Flatten(data), SourceFile, true)...)
	}

	if c.envPrefix != "" {
		data, err := loader.NewEnvLoader(c.envPrefix).Load()
		if err != nil {
			return err
		}
		errs = append(errs, apply(values, sources, loader.Flatten(data), SourceEnv, false)...)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.mu.Lock()
	c.values = values
	c.sources = sources
	c.mu.Unlock()
	return nil
}

// apply validates flat and stores its values, returning every failure.
func apply(values map[string]any, sources map[string]Source, flat map[string]any, src Source, strict bool) []error {
	var errs []error
	for _, path := range slices.Sorted(maps.Keys(flat)) {
		s, ok := settings[path]
		if !ok {
			if strict {
				errs = append(errs, &ValidationError{
					Path:    path,
					Message: "unknown setting",
					Value:   flat[path],
					Code:    ErrCodeUnknownSetting,
				})
			}
			continue
		}
		v, err := s.coerce(path, flat[path])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		values[path] = v
		sources[path] = src
	}
	return errs
}

func defaults() (map[string]any, map[string]Source) {
	values := make(map[string]any, len(settings))
	sources := make(map[string]Source, len(settings))
	for path, s := range settings {
		values[path] = s.def
		sources[path] = SourceDefault
	}
	return values, sources
}

// Validate checks every current value against its setting.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var errs []error
	for _, path := range slices.Sorted(maps.Keys(c.values)) {
		s, ok := settings[path]
		if !ok {
			errs = append(errs, &ValidationError{Path: path, Message: "unknown setting", Value: c.values[path]})
			continue
		}
		if _, err := s.coerce(path, c.values[path]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Path returns the configuration file path, or "" if none was given.
func (c *Config) Path() string {
	return c.path
}

// Get returns the value at the given path.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[path]
	return v, ok
}

// Source reports where the value at path came from.
func (c *Config) Source(path string) (Source, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sources[path]
	return s, ok
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	n, ok := v.(int)
	if !ok {
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
	return n, nil
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetDuration returns a duration value at the given path.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	d, ok := v.(time.Duration)
	if !ok {
		return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
	}
	return d, nil
}

// Set validates value and stores it at path.
func (c *Config) Set(path string, value any) error {
	s, ok := settings[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	v, err := s.coerce(path, value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[path] = v
	c.sources[path] = SourceSet
	return nil
}

// Merged returns the current values as a nested map.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]any)
	for path, v := range c.values {
		parts := strings.Split(path, ".")
		m := out
		for _, part := range parts[:len(parts)-1] {
			next, ok := m[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				m[part] = next
			}
			m = next
		}
		m[parts[len(parts)-1]] = v
	}
	return out
}
