// Package watcher reports external changes to files a buffer was read from.
//
// A watched file is observed through its parent directory so that editors
// saving by rename, and tools that delete and recreate the file, are still
// seen. Rapid changes to one path are coalesced into a single event after
// a debounce delay.
package watcher

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("file is already being watched")
	ErrPathNotExist    = errors.New("path does not exist")
	ErrNotRegular      = errors.New("not a regular file")
)

// Op is a set of file system operations.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

var opNames = [...]string{"CREATE", "WRITE", "REMOVE", "RENAME", "CHMOD"}

// String joins the names of the operations in op with "|".
func (op Op) String() string {
	var names []string
	for i, name := range opNames {
		if op.Has(1 << i) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(names, "|")
}

// Has returns true if op includes every operation in o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a change to a watched file.
type Event struct {
	// Path is the absolute path of the file.
	Path string

	// Op holds every operation seen during the debounce delay.
	Op Op

	// Timestamp is when the last coalesced change occurred.
	Timestamp time.Time
}

// Stats counts what a watcher has seen since it was created.
type Stats struct {
	Files     int
	Pending   int
	Delivered int64
	Filtered  int64
	Dropped   int64
	Errors    int64
	LastError error
	Since     time.Time
}

// Watcher delivers change events for individual files.
type Watcher interface {
	// Watch starts watching a regular file.
	Watch(path string) error

	// Events is closed when the watcher is closed.
	Events() <-chan Event

	// Errors is closed when the watcher is closed.
	Errors() <-chan error

	Close() error
}

// Handler handles a file event.
type Handler func(event Event)

// ErrorHandler handles a watcher error.
type ErrorHandler func(err error)

// EventFilter returns false for events that should be discarded before
// debouncing.
type EventFilter func(event Event) bool

// Config holds watcher settings.
type Config struct {
	// DebounceDelay coalesces events for one file arriving within the
	// delay. Zero delivers every event immediately.
	DebounceDelay time.Duration

	// Filter, when set, is consulted for every raw event.
	Filter EventFilter
}

const defaultBufferSize = 100

// DefaultConfig returns the default settings: a 100ms debounce and no
// filter.
func DefaultConfig() Config {
	return Config{DebounceDelay: 100 * time.Millisecond}
}

// WatcherOption configures a watcher.
type WatcherOption func(*Config)

// WithDebounceDelay sets the debounce delay.
func WithDebounceDelay(d time.Duration) WatcherOption {
	return func(c *Config) {
		c.DebounceDelay = d
	}
}

// WithEventFilter sets the event filter.
func WithEventFilter(filter EventFilter) WatcherOption {
	return func(c *Config) {
		c.Filter = filter
	}
}

// SkipChmod is an EventFilter dropping events that only changed a file's
// permissions or timestamps.
func SkipChmod(event Event) bool {
	return event.Op != OpChmod
}

// EventDispatcher fans events out to registered handlers.
type EventDispatcher struct {
	handlers      []Handler
	errorHandlers []ErrorHandler
}

// NewEventDispatcher creates a new event dispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{}
}

// OnEvent registers a handler for file events.
func (d *EventDispatcher) OnEvent(handler Handler) {
	d.handlers = append(d.handlers, handler)
}

// OnError registers a handler for errors.
func (d *EventDispatcher) OnError(handler ErrorHandler) {
	d.errorHandlers = append(d.errorHandlers, handler)
}

// Dispatch sends an event to all handlers.
func (d *EventDispatcher) Dispatch(event Event) {
	for _, handler := range d.handlers {
		handler(event)
	}
}

// DispatchError sends an error to all error handlers.
func (d *EventDispatcher) DispatchError(err error) {
	for _, handler := range d.errorHandlers {
		handler(err)
	}
}

// Run listens to a watcher and dispatches events until ctx is cancelled
// or the watcher is closed.
func (d *EventDispatcher) Run(ctx context.Context, w Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events():
			if !ok {
				return
			}
			d.Dispatch(event)
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			d.DispatchError(err)
		}
	}
}
