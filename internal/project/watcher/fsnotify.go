package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FSNotifyWatcher implements Watcher using fsnotify. Each file is watched
// through its directory; a directory shared by several files is
// registered once.
type FSNotifyWatcher struct {
	mu     sync.RWMutex
	fsw    *fsnotify.Watcher
	config Config
	files  map[string]struct{}
	dirs   map[string]struct{}

	events   chan Event
	errors   chan error
	debounce *debouncer

	since     time.Time
	delivered atomic.Int64
	filtered  atomic.Int64
	dropped   atomic.Int64
	failures  atomic.Int64
	lastError error

	closed bool
	done   chan struct{}
	loop   sync.WaitGroup
}

// NewFSNotifyWatcher creates a new fsnotify-based watcher.
func NewFSNotifyWatcher(opts ...WatcherOption) (*FSNotifyWatcher, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &FSNotifyWatcher{
		fsw:    fsw,
		config: config,
		files:  make(map[string]struct{}),
		dirs:   make(map[string]struct{}),
		events: make(chan Event, defaultBufferSize),
		errors: make(chan error, defaultBufferSize),
		since:  time.Now(),
		done:   make(chan struct{}),
	}
	w.debounce = newDebouncer(config.DebounceDelay, w.deliver)

	w.loop.Add(1)
	go w.run()
	return w, nil
}

// Watch starts watching the regular file at path.
func (w *FSNotifyWatcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrPathNotExist
	case err != nil:
		return err
	case !info.Mode().IsRegular():
		return fmt.Errorf("%s: %w", abs, ErrNotRegular)
	}
	if _, ok := w.files[abs]; ok {
		return ErrAlreadyWatching
	}

	dir := filepath.Dir(abs)
	if _, ok := w.dirs[dir]; !ok {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = struct{}{}
	}
	w.files[abs] = struct{}{}
	return nil
}

// Events returns the event channel.
func (w *FSNotifyWatcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel.
func (w *FSNotifyWatcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. Pending debounced events are discarded.
func (w *FSNotifyWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	w.loop.Wait()
	w.debounce.stop()
	close(w.events)
	close(w.errors)
	return w.fsw.Close()
}

// Stats returns counters for the events seen so far. It may be called
// after Close.
func (w *FSNotifyWatcher) Stats() Stats {
	pending := w.debounce.pendingCount()

	w.mu.RLock()
	defer w.mu.RUnlock()

	return Stats{
		Files:     len(w.files),
		Pending:   pending + len(w.events),
		Delivered: w.delivered.Load(),
		Filtered:  w.filtered.Load(),
		Dropped:   w.dropped.Load(),
		Errors:    w.failures.Load(),
		LastError: w.lastError,
		Since:     w.since,
	}
}

func (w *FSNotifyWatcher) run() {
	defer w.loop.Done()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.fail(err)
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// handle converts an fsnotify event for a watched file and queues it.
func (w *FSNotifyWatcher) handle(ev fsnotify.Event) {
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}
	path := filepath.Clean(ev.Name)

	w.mu.RLock()
	_, ok := w.files[path]
	w.mu.RUnlock()
	if !ok {
		return
	}

	event := Event{Path: path, Op: op, Timestamp: time.Now()}
	if w.config.Filter != nil && !w.config.Filter(event) {
		w.filtered.Add(1)
		return
	}
	w.debounce.add(event)
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	for _, m := range [...]struct {
		from fsnotify.Op
		to   Op
	}{
		{fsnotify.Create, OpCreate},
		{fsnotify.Write, OpWrite},
		{fsnotify.Remove, OpRemove},
		{fsnotify.Rename, OpRename},
		{fsnotify.Chmod, OpChmod},
	} {
		if fsOp.Has(m.from) {
			op |= m.to
		}
	}
	return op
}

// deliver is the debouncer's sink. A full channel drops the event.
func (w *FSNotifyWatcher) deliver(event Event) {
	select {
	case w.events <- event:
		w.delivered.Add(1)
	default:
		w.dropped.Add(1)
		w.fail(fmt.Errorf("event channel full, dropped %s on %s", event.Op, event.Path))
	}
}

func (w *FSNotifyWatcher) fail(err error) {
	w.failures.Add(1)
	w.mu.Lock()
	w.lastError = err
	w.mu.Unlock()
}

var _ Watcher = (*FSNotifyWatcher)(nil)
