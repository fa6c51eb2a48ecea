package stream

import "context"

// Map returns a subscription delivering fn applied to every value of src.
// Closing the returned subscription closes src; an error ending src is
// reported by the mapped subscription.
func Map[A, B any](ctx context.Context, src *Subscription[A], fn func(A) B) *Subscription[B] {
	return Start(ctx, func(ctx context.Context, emit func(B)) error {
		defer src.Close()
		for {
			select {
			case <-ctx.Done():
				return nil
			case v, ok := <-src.Updates():
				if !ok {
					return src.Err()
				}
				emit(fn(v))
			}
		}
	})
}
