package watcher

import (
	"sync"
	"testing"
	"time"
)

// recorder collects fired events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) fire(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) waitFor(t *testing.T, n int) []Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := r.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events, got %d", n, len(r.snapshot()))
	return nil
}

func TestDebouncer_ZeroDelayPassesThrough(t *testing.T) {
	r := &recorder{}
	d := newDebouncer(0, r.fire)
	defer d.stop()

	d.add(Event{Path: "/a", Op: OpWrite})
	d.add(Event{Path: "/a", Op: OpWrite})

	if got := r.snapshot(); len(got) != 2 {
		t.Errorf("got %d events, want 2", len(got))
	}
	if d.pendingCount() != 0 {
		t.Errorf("pendingCount = %d", d.pendingCount())
	}
}

func TestDebouncer_Coalesces(t *testing.T) {
	r := &recorder{}
	d := newDebouncer(30*time.Millisecond, r.fire)
	defer d.stop()

	d.add(Event{Path: "/a", Op: OpCreate})
	d.add(Event{Path: "/a", Op: OpWrite})
	d.add(Event{Path: "/a", Op: OpWrite})

	if d.pendingCount() != 1 {
		t.Errorf("pendingCount = %d, want 1", d.pendingCount())
	}

	got := r.waitFor(t, 1)
	time.Sleep(60 * time.Millisecond)
	got = r.snapshot()
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].Op != OpCreate|OpWrite {
		t.Errorf("Op = %s, want CREATE|WRITE", got[0].Op)
	}
}

func TestDebouncer_DifferentPaths(t *testing.T) {
	r := &recorder{}
	d := newDebouncer(20*time.Millisecond, r.fire)
	defer d.stop()

	d.add(Event{Path: "/a", Op: OpWrite})
	d.add(Event{Path: "/b", Op: OpWrite})

	got := r.waitFor(t, 2)
	paths := map[string]bool{}
	for _, e := range got {
		paths[e.Path] = true
	}
	if !paths["/a"] || !paths["/b"] {
		t.Errorf("paths = %v", paths)
	}
}

func TestDebouncer_StopDiscardsPending(t *testing.T) {
	r := &recorder{}
	d := newDebouncer(10*time.Millisecond, r.fire)

	d.add(Event{Path: "/a", Op: OpWrite})
	d.stop()
	d.add(Event{Path: "/b", Op: OpWrite})

	time.Sleep(40 * time.Millisecond)
	if got := r.snapshot(); len(got) != 0 {
		t.Errorf("got %d events after stop, want 0", len(got))
	}
}
