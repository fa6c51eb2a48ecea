package stream

import (
	"context"

	"github.com/aretw0/lifecycle"
)

// Filter forwards the values of in for which keep returns true. The returned
// channel is closed once in is closed or ctx is done.
func Filter[T any](ctx context.Context, in <-chan T, buffer int, keep func(T) bool) <-chan T {
	out := make(chan T, buffer)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case v, ok := <-in:
				if !ok {
					return nil
				}
				if !keep(v) {
					continue
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return out
}
