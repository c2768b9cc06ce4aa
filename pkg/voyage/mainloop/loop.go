// Package mainloop provides a single-threaded event loop that serializes
// navigation and the application of asynchronous results.
package mainloop

import (
	"context"
	"sync"
)

// Loop is an unbounded FIFO of functions executed on one goroutine.
// It implements lifecycle.Dispatcher.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
}

func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn. It never blocks and never drops.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes posted functions until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// RunPending executes everything queued so far, including functions posted
// by those functions, and returns how many ran. Tests drive the loop with it
// directly instead of calling Run.
func (l *Loop) RunPending() int {
	ran := 0
	for {
		l.mu.Lock()
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return ran
		}
		for _, fn := range batch {
			fn()
			ran++
		}
	}
}

// Len returns the number of queued functions.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}
