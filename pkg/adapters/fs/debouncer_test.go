package fs

import (
	"sync"
	"testing"
	"time"

	"github.com/aretw0/packlist/pkg/core"
)

func TestDebouncer(t *testing.T) {
	t.Run("Coalesces Create and Write", func(t *testing.T) {
		d := newDebouncer(20 * time.Millisecond)

		var mu sync.Mutex
		var fired []core.Event
		fire := func(e core.Event) {
			mu.Lock()
			defer mu.Unlock()
			fired = append(fired, e)
		}

		d.add(core.Event{Type: core.EventCreate, ID: "a"}, fire)
		d.add(core.Event{Type: core.EventModify, ID: "a"}, fire)
		d.add(core.Event{Type: core.EventModify, ID: "b"}, fire)

		time.Sleep(100 * time.Millisecond)
		d.stopAndWait(time.Second)

		mu.Lock()
		defer mu.Unlock()
		if len(fired) != 2 {
			t.Fatalf("expected 2 events, got %d: %v", len(fired), fired)
		}
		for _, e := range fired {
			if e.ID == "a" && e.Type != core.EventCreate {
				t.Errorf("expected CREATE for a, got %s", e.Type)
			}
		}
	})

	t.Run("Drops Pending on Stop", func(t *testing.T) {
		d := newDebouncer(time.Hour)
		called := false
		d.add(core.Event{Type: core.EventModify, ID: "x"}, func(core.Event) { called = true })

		if !d.stopAndWait(time.Second) {
			t.Fatal("stopAndWait timed out")
		}
		d.add(core.Event{Type: core.EventModify, ID: "y"}, func(core.Event) { called = true })
		if called {
			t.Error("no callback expected after stop")
		}
	})
}
