// Package value provides an observable holder for screen state.
package value

import "sync"

// Value holds a current T and notifies subscribers synchronously, in
// subscription order, every time it is set. A new subscriber is called with
// the current value immediately.
type Value[T any] struct {
	mu     sync.Mutex
	cur    T
	nextID int
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

func New[T any](initial T) *Value[T] {
	return &Value[T]{cur: initial}
}

func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Set stores next and notifies subscribers. Subscribers run without the
// lock held, so they may read the value or unsubscribe.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	v.cur = next
	subs := append([]subscriber[T](nil), v.subs...)
	v.mu.Unlock()

	for _, s := range subs {
		s.fn(next)
	}
}

// Update applies fn to the current value and stores the result.
func (v *Value[T]) Update(fn func(T) T) {
	v.Set(fn(v.Get()))
}

// Subscribe registers fn and returns a function that removes it.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs = append(v.subs, subscriber[T]{id: id, fn: fn})
	cur := v.cur
	v.mu.Unlock()

	fn(cur)

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			for i, s := range v.subs {
				if s.id == id {
					v.subs = append(v.subs[:i], v.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Len returns the number of live subscribers.
func (v *Value[T]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}
