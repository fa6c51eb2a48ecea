package fs

import (
	"sync"
	"time"

	"github.com/aretw0/packlist/pkg/core"
)

// debouncer coalesces bursts of events for the same document into one.
// An atomic write shows up as CREATE followed by WRITE; the pair is reported
// as a single CREATE.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	seq     uint64
	pending map[string]*pendingEvent
	stopped bool
	wg      sync.WaitGroup
}

type pendingEvent struct {
	event core.Event
	timer *time.Timer
	seq   uint64
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]*pendingEvent),
	}
}

// add schedules fire(event) after the delay, replacing any pending event for
// the same ID.
func (d *debouncer) add(event core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	key := event.ID
	if prev, ok := d.pending[key]; ok {
		if prev.event.Type == core.EventCreate && event.Type == core.EventModify {
			event.Type = core.EventCreate
		}
		if prev.timer.Stop() {
			d.wg.Done()
		}
	}

	d.seq++
	seq := d.seq
	p := &pendingEvent{event: event, seq: seq}

	d.wg.Add(1)
	p.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		cur, ok := d.pending[key]
		if !ok || cur.seq != seq {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()

		fire(cur.event)
	})
	d.pending[key] = p
}

// stopAndWait drops pending events and waits up to timeout for callbacks
// already running.
func (d *debouncer) stopAndWait(timeout time.Duration) bool {
	d.mu.Lock()
	d.stopped = true
	for key, p := range d.pending {
		if p.timer.Stop() {
			d.wg.Done()
		}
		delete(d.pending, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
