// Package loop runs posted work one item at a time on a single goroutine.
// The trackers are only ever touched from inside a Loop.
package loop

import (
	"context"
	"errors"
)

// ErrStopped is returned when work is posted after the loop has exited.
var ErrStopped = errors.New("loop stopped")

// Loop is a serial mailbox.
type Loop struct {
	queue chan func()
	done  chan struct{}
}

// New creates a Loop whose mailbox holds up to size pending items.
func New(size int) *Loop {
	if size <= 0 {
		size = 64
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Run executes posted work until ctx is cancelled. It must be called once.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post queues fn without waiting for it to run.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case <-l.done:
		return ErrStopped
	case l.queue <- fn:
		return nil
	}
}

// Do queues fn and waits until it has run.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }
