package watcher

import (
	"sync"
	"time"
)

// debouncer coalesces rapid events for the same path. Each path's event
// is delivered once no further event for it arrived within the delay.
type debouncer struct {
	delay time.Duration
	fire  func(Event)

	mu      sync.Mutex
	pending map[string]*pendingEvent
	stopped bool
}

// pendingEvent tracks a debounced event.
type pendingEvent struct {
	event Event
	timer *time.Timer
}

func newDebouncer(delay time.Duration, fire func(Event)) *debouncer {
	return &debouncer{
		delay:   delay,
		fire:    fire,
		pending: make(map[string]*pendingEvent),
	}
}

// add schedules event, merging it with a pending event for the same path.
func (d *debouncer) add(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.delay <= 0 {
		d.fire(event)
		return
	}

	// Coalesce: combine operations and reset timer
	if p, exists := d.pending[event.Path]; exists {
		p.event.Op |= event.Op
		p.event.Timestamp = event.Timestamp
		p.timer.Reset(d.delay)
		return
	}

	path := event.Path
	d.pending[path] = &pendingEvent{
		event: event,
		timer: time.AfterFunc(d.delay, func() { d.expire(path) }),
	}
}

// expire delivers the pending event for path. fire runs under the lock so
// stop cannot return while a delivery is in flight.
func (d *debouncer) expire(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, exists := d.pending[path]
	if !exists || d.stopped {
		return
	}
	delete(d.pending, path)
	d.fire(p.event)
}

// stop cancels all pending events. No event is delivered after it returns.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}
}

func (d *debouncer) pendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
