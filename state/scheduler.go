package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrDispatcherClosed = errors.New("dispatcher closed")

// Dispatcher queues functions to run on the goroutine that owns T.
type Dispatcher[T any] struct {
	ch        chan func(T) error
	closed    chan struct{}
	closeOnce sync.Once
}

func NewDispatcher[T any](size int) *Dispatcher[T] {
	return &Dispatcher[T]{
		ch:     make(chan func(T) error, size),
		closed: make(chan struct{}),
	}
}

// Close marks the owner as gone. Pending and future requests fail with
// ErrDispatcherClosed instead of waiting for a Drain that will never come.
func (d *Dispatcher[T]) Close() {
	d.closeOnce.Do(func() {
		close(d.closed)
	})
}

// Dispatch queues fun without waiting for it to run. It gives up once ctx is done or
// the dispatcher is closed.
func (d *Dispatcher[T]) Dispatch(ctx context.Context, fun func(T) error) error {
	select {
	case <-d.closed:
		return ErrDispatcherClosed
	default:
	}
	select {
	case d.ch <- fun:
		return nil
	case <-d.closed:
		return ErrDispatcherClosed
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// DispatchWait queues fun and waits for its result.
func (d *Dispatcher[T]) DispatchWait(ctx context.Context, fun func(T) (any, error)) (any, error) {
	ret := make(chan Pair[any, error], 1)
	err := d.Dispatch(ctx, func(t T) error {
		res, err := fun(t)
		ret <- Pair[any, error]{res, err}
		return err
	})
	if err != nil {
		return nil, err
	}
	select {
	case res := <-ret:
		return res.V1, res.V2
	case <-d.closed:
		return nil, ErrDispatcherClosed
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	}
}

// Drain runs every queued function on the calling goroutine without blocking.
// It stops at the first error.
func (d *Dispatcher[T]) Drain(t T) error {
	for {
		select {
		case fun := <-d.ch:
			if err := fun(t); err != nil {
				return fmt.Errorf("dispatched task: %w", err)
			}
		default:
			return nil
		}
	}
}

// RepeatTask dispatches fun every delay until ctx is done.
func (d *Dispatcher[T]) RepeatTask(ctx context.Context, fun func(T) error, delay time.Duration) {
	go func() {
		ticker := time.NewTicker(delay)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if d.Dispatch(ctx, fun) != nil {
					return
				}
			}
		}
	}()
}
