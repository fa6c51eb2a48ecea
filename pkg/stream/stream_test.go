package stream_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aretw0/packlist/pkg/stream"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSubscription_DeliversValues(t *testing.T) {
	sub := stream.Start(context.Background(), func(ctx context.Context, emit func(int)) error {
		emit(1)
		<-ctx.Done()
		return nil
	})
	defer sub.Close()

	select {
	case v := <-sub.Updates():
		assert.Equal(t, 1, v)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
}

func TestSubscription_ConflatesToLatest(t *testing.T) {
	produced := make(chan struct{})
	sub := stream.Start(context.Background(), func(ctx context.Context, emit func(int)) error {
		for i := 1; i <= 5; i++ {
			emit(i)
		}
		close(produced)
		<-ctx.Done()
		return nil
	})
	defer sub.Close()

	<-produced
	assert.Equal(t, 5, <-sub.Updates(), "only the most recent value should be pending")
}

func TestSubscription_CloseStopsProducer(t *testing.T) {
	sub := stream.Start(context.Background(), func(ctx context.Context, emit func(string)) error {
		<-ctx.Done()
		return ctx.Err()
	})

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close(), "second close is a no-op")

	_, ok := <-sub.Updates()
	assert.False(t, ok, "updates channel should be closed")
	assert.NoError(t, sub.Err(), "cancellation is not an error")
}

func TestSubscription_ProducerError(t *testing.T) {
	boom := errors.New("backend unavailable")
	sub := stream.Start(context.Background(), func(ctx context.Context, emit func(int)) error {
		return boom
	})
	defer sub.Close()

	<-sub.Done()
	assert.ErrorIs(t, sub.Err(), boom)
}

func TestSubscription_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := stream.Start(ctx, func(ctx context.Context, emit func(int)) error {
		<-ctx.Done()
		return nil
	})

	cancel()
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("producer did not stop after parent cancellation")
	}
}

func TestBroadcaster_FanOut(t *testing.T) {
	b := stream.NewBroadcaster[string](4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := b.Subscribe(ctx)
	c := b.Subscribe(ctx)
	require.Equal(t, 2, b.Len())

	b.Publish("hello")
	assert.Equal(t, "hello", <-a)
	assert.Equal(t, "hello", <-c)
}

func TestBroadcaster_DropsOldestWhenFull(t *testing.T) {
	b := stream.NewBroadcaster[int](1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)
	b.Publish(1)
	b.Publish(2)
	assert.Equal(t, 2, <-ch)
}

func TestBroadcaster_UnsubscribeOnCancel(t *testing.T) {
	b := stream.NewBroadcaster[int](1)
	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
	assert.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestBroadcaster_Close(t *testing.T) {
	b := stream.NewBroadcaster[int](1)
	ch := b.Subscribe(context.Background())
	b.Close()

	_, ok := <-ch
	assert.False(t, ok)

	late := b.Subscribe(context.Background())
	_, ok = <-late
	assert.False(t, ok)
}

func TestMap(t *testing.T) {
	src := stream.Start(context.Background(), func(ctx context.Context, emit func(int)) error {
		emit(21)
		<-ctx.Done()
		return nil
	})
	mapped := stream.Map(context.Background(), src, func(v int) string {
		return string(rune('A' + v%26))
	})

	select {
	case v := <-mapped.Updates():
		assert.Equal(t, "V", v)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mapped value")
	}

	require.NoError(t, mapped.Close())
	select {
	case <-src.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("closing the mapped subscription should close the source")
	}
}

func TestMap_PropagatesError(t *testing.T) {
	boom := errors.New("lost connection")
	src := stream.Start(context.Background(), func(ctx context.Context, emit func(int)) error {
		return boom
	})
	mapped := stream.Map(context.Background(), src, func(v int) int { return v })
	defer mapped.Close()

	<-mapped.Done()
	assert.ErrorIs(t, mapped.Err(), boom)
}

func TestFilter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan int, 4)
	out := stream.Filter(ctx, in, 4, func(v int) bool { return v%2 == 0 })
	for i := 1; i <= 4; i++ {
		in <- i
	}
	close(in)

	var got []int
	for v := range out {
		got = append(got, v)
	}
	assert.Equal(t, []int{2, 4}, got)
}
