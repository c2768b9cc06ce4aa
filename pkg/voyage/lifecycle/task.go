package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/BrandonKowalski/voyage/pkg/voyage/internal"
	"go.uber.org/atomic"
)

// Go runs work on a new goroutine bound to the scope's context and posts
// apply to the scope's dispatcher with the result. apply is skipped when the
// scope has been destroyed by the time it would run, so a completed but
// unobserved result never reaches a torn down component.
//
// Go reports false, and starts nothing, if the scope is already destroyed.
func Go[T any](s *Scope, work func(ctx context.Context) (T, error), apply func(T, error)) bool {
	if s.IsDestroyed() {
		return false
	}

	s.tasks.Add(1)
	s.inFlight.Inc()
	go func() {
		defer s.tasks.Done()

		v, err := work(s.ctx)
		s.inFlight.Dec()

		s.dispatcher.Post(func() {
			if s.IsDestroyed() {
				internal.GetInternalLogger().Debug("dropping task result of destroyed scope", "scope", s.id)
				return
			}
			apply(v, err)
		})
	}()
	return true
}

// Debouncer delays work until input has been quiet for a fixed interval.
// Each Trigger supersedes the previous one: its wait or in-flight work is
// cancelled and its result discarded.
type Debouncer[T any] struct {
	scope *Scope
	delay time.Duration
	apply func(T, error)

	generation *atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewDebouncer creates a debouncer whose results are applied with apply.
func NewDebouncer[T any](s *Scope, delay time.Duration, apply func(T, error)) *Debouncer[T] {
	d := &Debouncer[T]{
		scope:      s,
		delay:      delay,
		apply:      apply,
		generation: atomic.NewUint64(0),
	}
	s.OnDestroy(d.Cancel)
	return d
}

// Trigger schedules work to run after the debounce delay.
func (d *Debouncer[T]) Trigger(work func(ctx context.Context) (T, error)) {
	gen := d.generation.Inc()

	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(d.scope.Context())
	d.cancel = cancel
	d.mu.Unlock()

	Go(d.scope, func(context.Context) (T, error) {
		timer := time.NewTimer(d.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-timer.C:
		}
		return work(ctx)
	}, func(v T, err error) {
		if d.generation.Load() != gen {
			return
		}
		d.apply(v, err)
	})
}

// Cancel abandons any pending or in-flight work.
func (d *Debouncer[T]) Cancel() {
	d.generation.Inc()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
