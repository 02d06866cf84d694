package engine

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/bbuf/internal/engine/buffer"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = 1000
	DefaultWatchDelay     = 100 * time.Millisecond
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithReadOnly creates a read-only engine.
// Edits and saves return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}

// WithLogger sets the logger. The engine and its buffer log through it.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithBufferOptions passes options through to every buffer the engine
// creates, including the one built after a save.
func WithBufferOptions(opts ...buffer.Option) Option {
	return func(e *Engine) {
		e.bufOpts = append(e.bufOpts, opts...)
	}
}

// WithWatchDelay sets how long Watch waits for changes to settle before
// comparing fingerprints.
func WithWatchDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.watchDelay = d
		}
	}
}
