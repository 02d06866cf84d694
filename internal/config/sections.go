package config

import "time"

// Section accessor methods return snapshot structs. Mutating the returned
// struct does not modify the underlying configuration. Use Config.Set()
// to update configuration values.

// LoggingConfig provides type-safe access to logging settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", ...).
	Level string

	// Format is "console" or "json".
	Format string

	// Output is "stderr", "stdout", or a file path.
	Output string
}

// BufferConfig provides type-safe access to line buffer settings.
type BufferConfig struct {
	// WindowSize is the capacity in bytes of the read window.
	WindowSize int

	// MaxScratch caps transcoding scratch capacity. Zero means no cap.
	MaxScratch int

	// NarrowCodeUnits truncates decoded characters to 16 bits.
	NarrowCodeUnits bool
}

// EngineConfig provides type-safe access to document settings.
type EngineConfig struct {
	// MaxUndo is the number of undo entries kept per document.
	MaxUndo int

	// ReadOnly rejects edits and saves.
	ReadOnly bool

	// Encoding names the encoding used when saving. Empty keeps the
	// encoding the document was read with.
	Encoding string

	// WatchDelay debounces external change events.
	WatchDelay time.Duration
}

// Logging returns type-safe access to logging settings.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level:  c.getStringOr("logging.level", "info"),
		Format: c.getStringOr("logging.format", "console"),
		Output: c.getStringOr("logging.output", "stderr"),
	}
}

// Buffer returns type-safe access to line buffer settings.
func (c *Config) Buffer() BufferConfig {
	return BufferConfig{
		WindowSize:      c.getIntOr("buffer.windowSize", settings["buffer.windowSize"].def.(int)),
		MaxScratch:      c.getIntOr("buffer.maxScratch", 0),
		NarrowCodeUnits: c.getBoolOr("buffer.narrowCodeUnits", false),
	}
}

// Engine returns type-safe access to document settings.
func (c *Config) Engine() EngineConfig {
	return EngineConfig{
		MaxUndo:    c.getIntOr("engine.maxUndo", settings["engine.maxUndo"].def.(int)),
		ReadOnly:   c.getBoolOr("engine.readOnly", false),
		Encoding:   c.getStringOr("engine.encoding", ""),
		WatchDelay: c.getDurationOr("engine.watchDelay", settings["engine.watchDelay"].def.(time.Duration)),
	}
}

func (c *Config) getStringOr(path string, defaultValue string) string {
	if v, err := c.GetString(path); err == nil {
		return v
	}
	return defaultValue
}

func (c *Config) getIntOr(path string, defaultValue int) int {
	if v, err := c.GetInt(path); err == nil {
		return v
	}
	return defaultValue
}

func (c *Config) getBoolOr(path string, defaultValue bool) bool {
	if v, err := c.GetBool(path); err == nil {
		return v
	}
	return defaultValue
}

func (c *Config) getDurationOr(path string, defaultValue time.Duration) time.Duration {
	if v, err := c.GetDuration(path); err == nil {
		return v
	}
	return defaultValue
}
