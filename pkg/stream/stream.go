// Package stream provides long-lived change feeds with an explicit
// subscribe/close lifecycle.
//
// A Subscription always holds at most one undelivered value: when the consumer
// falls behind, the newest value replaces the pending one. Every feed in this
// module delivers full snapshots, so the most recent value supersedes any
// prior one.
package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/lifecycle"
)

// Producer runs until ctx is cancelled or the source is exhausted, handing
// every value to emit. Returning a non-nil error ends the subscription and
// makes the error available through Subscription.Err.
type Producer[T any] func(ctx context.Context, emit func(T)) error

// Subscription is a running feed of values of type T.
type Subscription[T any] struct {
	updates chan T
	cancel  context.CancelFunc
	done    chan struct{}

	mu     sync.Mutex
	err    error
	closed bool
}

// Start runs produce in its own goroutine and returns the subscription that
// receives its values. The feed stops when ctx is cancelled, when Close is
// called, or when produce returns.
func Start[T any](ctx context.Context, produce Producer[T]) *Subscription[T] {
	runCtx, cancel := context.WithCancel(ctx)
	s := &Subscription[T]{
		updates: make(chan T, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	emit := func(v T) {
		for {
			select {
			case <-runCtx.Done():
				return
			case s.updates <- v:
				return
			default:
			}
			// Drop the stale pending value.
			select {
			case <-s.updates:
			default:
			}
		}
	}

	lifecycle.Go(runCtx, func(ctx context.Context) error {
		defer close(s.done)
		defer close(s.updates)

		err := produce(ctx, emit)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.setErr(err)
		}
		return err
	}, lifecycle.WithErrorHandler(func(err error) {
		s.setErr(fmt.Errorf("stream producer: %w", err))
	}))

	return s
}

// Updates returns the channel of values. It is closed when the feed ends.
func (s *Subscription[T]) Updates() <-chan T {
	return s.updates
}

// Done is closed once the producer has exited.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Err reports why the feed ended. It is nil while the feed runs and after a
// regular Close.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the producer and waits for it to exit. It is safe to call more
// than once.
func (s *Subscription[T]) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	<-s.done
	return nil
}

func (s *Subscription[T]) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil && !s.closed {
		s.err = err
	}
}
