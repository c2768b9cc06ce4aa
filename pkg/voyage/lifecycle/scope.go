// Package lifecycle binds a screen component's resources and asynchronous
// work to the lifetime of its stack entry.
//
// A Scope is created when an entry is pushed and destroyed when the entry is
// popped or reset away. Destroying a scope cancels its context, runs every
// registered release in reverse order, and guarantees that results of tasks
// started with Go are never applied afterwards.
//
// Results are delivered through a Dispatcher, the single logical thread that
// owns UI state. Work runs on its own goroutine; only the apply step runs on
// the dispatcher.
package lifecycle

import (
	"context"
	"sync"

	"github.com/BrandonKowalski/voyage/pkg/voyage/internal"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// Dispatcher runs functions on the UI thread, in the order they were posted.
type Dispatcher interface {
	Post(fn func())
}

// State is the lifecycle state of a Scope.
type State int32

const (
	StateCreated   State = iota // Constructed, never shown
	StateResumed                // Owning entry is the active one
	StatePaused                 // Owning entry is on the stack but covered
	StateDestroyed              // Owning entry left the stack; terminal
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateResumed:
		return "resumed"
	case StatePaused:
		return "paused"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Scope is the cancellation and cleanup boundary of one stack entry.
type Scope struct {
	id         string
	ctx        context.Context
	cancel     context.CancelFunc
	dispatcher Dispatcher

	state    *atomic.Int32
	inFlight *atomic.Int64
	tasks    sync.WaitGroup

	mu       sync.Mutex
	releases []func()
	onResume []func()
	onPause  []func()
}

// NewScope creates a scope whose context derives from parent and whose task
// results are applied on d.
func NewScope(parent context.Context, d Dispatcher) *Scope {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Scope{
		id:         uuid.NewString(),
		ctx:        ctx,
		cancel:     cancel,
		dispatcher: d,
		state:      atomic.NewInt32(int32(StateCreated)),
		inFlight:   atomic.NewInt64(0),
	}
}

// ID returns a random identifier, useful for correlating log lines.
func (s *Scope) ID() string {
	return s.id
}

// Context is cancelled when the scope is destroyed.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Dispatcher returns the UI dispatcher results are applied on.
func (s *Scope) Dispatcher() Dispatcher {
	return s.dispatcher
}

func (s *Scope) State() State {
	return State(s.state.Load())
}

func (s *Scope) IsDestroyed() bool {
	return s.State() == StateDestroyed
}

// InFlight returns the number of tasks whose work function has not returned.
func (s *Scope) InFlight() int64 {
	return s.inFlight.Load()
}

// OnDestroy registers a release to run when the scope is destroyed. Releases
// run in reverse registration order. On an already destroyed scope, release
// runs immediately.
func (s *Scope) OnDestroy(release func()) {
	s.mu.Lock()
	if !s.IsDestroyed() {
		s.releases = append(s.releases, release)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	release()
}

// OnResume registers a callback fired each time the owning entry becomes
// the active one.
func (s *Scope) OnResume(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onResume = append(s.onResume, fn)
}

// OnPause registers a callback fired each time another entry covers the
// owning one.
func (s *Scope) OnPause(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPause = append(s.onPause, fn)
}

// Resume moves the scope to StateResumed. Repeated calls are no-ops.
func (s *Scope) Resume() {
	s.transition(StateResumed, func() []func() { return s.onResume })
}

// Pause moves the scope to StatePaused. Repeated calls are no-ops.
func (s *Scope) Pause() {
	s.transition(StatePaused, func() []func() { return s.onPause })
}

func (s *Scope) transition(to State, callbacks func() []func()) {
	for {
		from := s.state.Load()
		if from == int32(StateDestroyed) || from == int32(to) {
			return
		}
		if s.state.CompareAndSwap(from, int32(to)) {
			break
		}
	}

	s.mu.Lock()
	fns := append([]func(){}, callbacks()...)
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Destroy cancels the scope's context and runs releases. It is idempotent.
// In-flight work is told to stop through its context; whatever it returns
// afterwards is discarded.
func (s *Scope) Destroy() {
	if s.state.Swap(int32(StateDestroyed)) == int32(StateDestroyed) {
		return
	}
	s.cancel()

	s.mu.Lock()
	releases := s.releases
	s.releases = nil
	s.onResume = nil
	s.onPause = nil
	s.mu.Unlock()

	for i := len(releases) - 1; i >= 0; i-- {
		releases[i]()
	}

	internal.GetInternalLogger().Debug("scope destroyed", "scope", s.id, "in_flight", s.inFlight.Load())
}

// Wait blocks until every task started on the scope has returned from its
// work function.
func (s *Scope) Wait() {
	s.tasks.Wait()
}

// Acquire obtains a resource and ties its release to the scope. If the scope
// is already destroyed the resource is released before Acquire returns, and
// the returned error is context.Canceled.
func Acquire[T any](s *Scope, acquire func(ctx context.Context) (T, error), release func(T)) (T, error) {
	v, err := acquire(s.ctx)
	if err != nil {
		return v, err
	}
	s.OnDestroy(func() { release(v) })
	if s.IsDestroyed() {
		return v, context.Canceled
	}
	return v, nil
}
