package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type counter struct {
	n int
}

func TestDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher[*counter](4)
	c := &counter{}

	require.NoError(t, d.Dispatch(ctx, func(c *counter) error {
		c.n++
		return nil
	}))
	require.NoError(t, d.Dispatch(ctx, func(c *counter) error {
		c.n += 10
		return nil
	}))
	assert.Equal(t, 0, c.n)
	require.NoError(t, d.Drain(c))
	assert.Equal(t, 11, c.n)

	// nothing left to run
	require.NoError(t, d.Drain(c))
	assert.Equal(t, 11, c.n)
}

func TestDispatchFullQueueCancelled(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	d := NewDispatcher[*counter](1)
	noop := func(*counter) error { return nil }
	require.NoError(t, d.Dispatch(ctx, noop))

	stop := errors.New("stopped")
	cancel(stop)
	assert.ErrorIs(t, d.Dispatch(ctx, noop), stop)
}

func TestDrainStopsAtError(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher[*counter](4)
	c := &counter{}
	boom := errors.New("boom")
	require.NoError(t, d.Dispatch(ctx, func(*counter) error { return boom }))
	require.NoError(t, d.Dispatch(ctx, func(c *counter) error {
		c.n++
		return nil
	}))
	assert.ErrorIs(t, d.Drain(c), boom)
	assert.Equal(t, 0, c.n)
	require.NoError(t, d.Drain(c))
	assert.Equal(t, 1, c.n)
}

func TestDispatchWait(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher[*counter](4)
	c := &counter{n: 41}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ctx.Err() == nil {
			_ = d.Drain(c)
			time.Sleep(time.Millisecond)
		}
	}()

	res, err := d.DispatchWait(ctx, func(c *counter) (any, error) {
		c.n++
		return c.n, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, res)
	cancel()
	<-done
}

func TestDispatchWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	d := NewDispatcher[*counter](4)
	_, err := d.DispatchWait(ctx, func(*counter) (any, error) { return nil, nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRepeatTask(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx, cancel := context.WithCancel(context.Background())

	d := NewDispatcher[*counter](8)
	c := &counter{}
	d.RepeatTask(ctx, func(c *counter) error {
		c.n++
		return nil
	}, 5*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for c.n < 3 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for repeated task")
		case <-time.After(time.Millisecond):
			require.NoError(t, d.Drain(c))
		}
	}
	cancel()
	assert.GreaterOrEqual(t, c.n, 3)
}

func TestDispatcherClosed(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher[*counter](1)
	res := make(chan error, 1)
	go func() {
		_, err := d.DispatchWait(ctx, func(*counter) (any, error) { return nil, nil })
		res <- err
	}()

	// nobody drains, so the waiter only returns once the owner goes away
	select {
	case err := <-res:
		t.Fatal("DispatchWait returned before Close: ", err)
	case <-time.After(20 * time.Millisecond):
	}
	d.Close()
	d.Close()
	select {
	case err := <-res:
		assert.ErrorIs(t, err, ErrDispatcherClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("DispatchWait did not return after Close")
	}
	assert.ErrorIs(t, d.Dispatch(ctx, func(*counter) error { return nil }), ErrDispatcherClosed)
}
