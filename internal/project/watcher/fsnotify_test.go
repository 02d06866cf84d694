package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T, opts ...WatcherOption) *FSNotifyWatcher {
	t.Helper()
	w, err := NewFSNotifyWatcher(opts...)
	if err != nil {
		t.Fatalf("NewFSNotifyWatcher error = %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

// waitEvent returns the first event for path, skipping others.
func waitEvent(t *testing.T, w *FSNotifyWatcher, path string) Event {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case e, ok := <-w.Events():
			if !ok {
				t.Fatal("events channel closed")
			}
			if e.Path == path {
				return e
			}
		case <-timeout:
			t.Fatalf("timed out waiting for event on %s", path)
		}
	}
}

// expectNoEvent fails if an event for path arrives within d.
func expectNoEvent(t *testing.T, w *FSNotifyWatcher, path string, d time.Duration) {
	t.Helper()
	timeout := time.After(d)
	for {
		select {
		case e := <-w.Events():
			if e.Path == path {
				t.Fatalf("unexpected event %s on %s", e.Op, e.Path)
			}
		case <-timeout:
			return
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFSNotifyWatcher_Watch(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	writeFile(t, path, "x")

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	if err := w.Watch(path); !errors.Is(err, ErrAlreadyWatching) {
		t.Errorf("Watch again error = %v, want ErrAlreadyWatching", err)
	}
	if err := w.Watch(dir); !errors.Is(err, ErrNotRegular) {
		t.Errorf("Watch(dir) error = %v, want ErrNotRegular", err)
	}
}

func TestFSNotifyWatcher_WatchNonexistent(t *testing.T) {
	w := newTestWatcher(t)

	err := w.Watch(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, ErrPathNotExist) {
		t.Errorf("Watch error = %v, want ErrPathNotExist", err)
	}
}

func TestFSNotifyWatcher_SharedDirectory(t *testing.T) {
	w := newTestWatcher(t, WithDebounceDelay(0))
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	writeFile(t, a, "a")
	writeFile(t, b, "b")

	if err := w.Watch(a); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(b); err != nil {
		t.Fatal(err)
	}
	if len(w.dirs) != 1 {
		t.Errorf("registered dirs = %d, want 1", len(w.dirs))
	}
	if got := w.Stats().Files; got != 2 {
		t.Errorf("Stats().Files = %d, want 2", got)
	}

	writeFile(t, b, "bb")
	waitEvent(t, w, b)
}

func TestFSNotifyWatcher_FileEvents(t *testing.T) {
	w := newTestWatcher(t, WithDebounceDelay(0))
	dir := t.TempDir()
	path := filepath.Join(dir, "watched.txt")
	other := filepath.Join(dir, "other.txt")
	writeFile(t, path, "one")

	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}

	// Siblings of a watched file are not reported.
	writeFile(t, other, "x")
	expectNoEvent(t, w, other, 100*time.Millisecond)

	writeFile(t, path, "two")
	e := waitEvent(t, w, path)
	if !e.Op.Has(OpWrite) && !e.Op.Has(OpCreate) {
		t.Errorf("Op = %s, want a write", e.Op)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	for {
		e = waitEvent(t, w, path)
		if e.Op.Has(OpRemove) {
			break
		}
	}
}

func TestFSNotifyWatcher_RenameOver(t *testing.T) {
	w := newTestWatcher(t, WithDebounceDelay(0))
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	tmp := filepath.Join(dir, ".doc.txt.tmp")
	writeFile(t, path, "old")

	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}

	writeFile(t, tmp, "new")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, w, path)
}

func TestFSNotifyWatcher_Debounce(t *testing.T) {
	w := newTestWatcher(t, WithDebounceDelay(50*time.Millisecond))
	dir := t.TempDir()
	path := filepath.Join(dir, "busy.txt")
	writeFile(t, path, "0")

	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	for i := range 5 {
		writeFile(t, path, string(rune('a'+i)))
	}

	waitEvent(t, w, path)
	expectNoEvent(t, w, path, 150*time.Millisecond)
}

func TestFSNotifyWatcher_EventFilter(t *testing.T) {
	w := newTestWatcher(t,
		WithDebounceDelay(0),
		WithEventFilter(func(e Event) bool { return e.Op.Has(OpRemove) }),
	)
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	writeFile(t, path, "x")
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}

	writeFile(t, path, "y")
	expectNoEvent(t, w, path, 100*time.Millisecond)
	if w.Stats().Filtered == 0 {
		t.Error("Stats().Filtered = 0 after a filtered write")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if e := waitEvent(t, w, path); !e.Op.Has(OpRemove) {
		t.Errorf("Op = %s, want REMOVE", e.Op)
	}
}

func TestFSNotifyWatcher_Stats(t *testing.T) {
	w := newTestWatcher(t, WithDebounceDelay(time.Hour))
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	writeFile(t, path, "0")
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}

	stats := w.Stats()
	if stats.Files != 1 || stats.Since.IsZero() {
		t.Errorf("Stats() = %+v", stats)
	}

	writeFile(t, path, "1")
	deadline := time.Now().Add(3 * time.Second)
	for w.Stats().Pending == 0 {
		if time.Now().After(deadline) {
			t.Fatal("event never became pending")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := w.Stats().Delivered; got != 0 {
		t.Errorf("Delivered = %d before the debounce delay", got)
	}
}

func TestFSNotifyWatcher_DropsWhenFull(t *testing.T) {
	w := newTestWatcher(t)
	for i := range defaultBufferSize + 3 {
		w.deliver(Event{Path: "/f", Op: OpWrite, Timestamp: time.Unix(int64(i), 0)})
	}

	stats := w.Stats()
	if stats.Delivered != defaultBufferSize || stats.Dropped != 3 {
		t.Errorf("Delivered = %d, Dropped = %d", stats.Delivered, stats.Dropped)
	}
	if stats.LastError == nil || stats.Errors != 3 {
		t.Errorf("Errors = %d, LastError = %v", stats.Errors, stats.LastError)
	}
}

func TestSkipChmod(t *testing.T) {
	if SkipChmod(Event{Op: OpChmod}) {
		t.Error("SkipChmod kept a chmod-only event")
	}
	if !SkipChmod(Event{Op: OpChmod | OpWrite}) {
		t.Error("SkipChmod dropped a write")
	}
}

func TestFSNotifyWatcher_Close(t *testing.T) {
	w, err := NewFSNotifyWatcher()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "doc.txt")
	writeFile(t, path, "x")
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}
	if err := w.Watch(path); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Watch after close = %v, want ErrWatcherClosed", err)
	}
	if got := w.Stats().Files; got != 1 {
		t.Errorf("Stats().Files after close = %d, want 1", got)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("events channel should be closed")
	}
	if _, ok := <-w.Errors(); ok {
		t.Error("errors channel should be closed")
	}
}
