package router

import (
	"context"
	"iter"
	"sync"
)

// Observe returns a sequence of snapshots starting with the current one and
// followed by one per completed mutation, in mutation order. Delivery is
// buffered per consumer, so a slow consumer never blocks navigation.
// The sequence ends when ctx is cancelled or the consumer stops iterating.
func (n *Navigator[C]) Observe(ctx context.Context) iter.Seq[Snapshot[C]] {
	return func(yield func(Snapshot[C]) bool) {
		q := newQueue[Snapshot[C]]()
		unsubscribe := n.state.Subscribe(q.put)
		defer unsubscribe()

		stop := context.AfterFunc(ctx, q.close)
		defer stop()

		var last uint64
		first := true
		for {
			snap, ok := q.take()
			if !ok {
				return
			}
			// A subscription racing a mutation may enqueue the newer
			// snapshot ahead of the current one.
			if !first && snap.Version <= last {
				continue
			}
			first, last = false, snap.Version
			if !yield(snap) {
				return
			}
		}
	}
}

type queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	closed bool
}

func newQueue[T any]() *queue[T] {
	q := &queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue[T]) put(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, v)
	q.cond.Signal()
}

func (q *queue[T]) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// take blocks until an item is available. Items queued before close are
// dropped once close is called.
func (q *queue[T]) take() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		var zero T
		return zero, false
	}
	v := q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true
}
