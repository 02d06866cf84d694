package buffer

import "github.com/rs/zerolog"

// Window sizing.
const (
	// DefaultWindowSize is the capacity of an owned window.
	DefaultWindowSize = 8 * 1024 * 1024

	// MinWindowSize is the smallest accepted window capacity.
	MinWindowSize = 64
)

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithName sets the buffer's name. The source's name is used otherwise.
func WithName(name string) Option {
	return func(b *Buffer) {
		b.name = name
	}
}

// WithWindowSize sets the capacity of the owned window. Sizes below
// MinWindowSize are raised to it.
func WithWindowSize(size int) Option {
	return func(b *Buffer) {
		if size > 0 {
			b.windowSize = max(size, MinWindowSize)
		}
	}
}

// WithWindowBuffer supplies the window storage. The buffer never frees or
// grows it; its length is the window capacity. Buffers shorter than
// MinWindowSize are ignored.
func WithWindowBuffer(buf []byte) Option {
	return func(b *Buffer) {
		if len(buf) >= MinWindowSize {
			b.win.buf = buf
			b.win.owned = false
		}
	}
}

// WithMaxScratch caps the capacity of the transcoding scratch buffers.
// Lines that would need more fail with ErrAllocation.
func WithMaxScratch(size int) Option {
	return func(b *Buffer) {
		if size > 0 {
			b.sandbox.max = size
			b.outbox.max = size
		}
	}
}

// WithNarrowCodeUnits truncates characters decoded from UTF-8 and UCS-4
// sources to 16 bits, matching the legacy code unit. UCS-4 characters
// beyond the Basic Multilingual Plane are then altered by a round trip;
// UCS-2 sources are unaffected.
func WithNarrowCodeUnits() Option {
	return func(b *Buffer) {
		b.codec.Narrow = true
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Buffer) {
		b.log = log
	}
}
