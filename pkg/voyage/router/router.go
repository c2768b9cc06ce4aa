package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BrandonKowalski/voyage/pkg/voyage/internal"
	"github.com/BrandonKowalski/voyage/pkg/voyage/lifecycle"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
	"github.com/BrandonKowalski/voyage/pkg/voyage/value"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// FactoryFunc builds the child for a configuration. It is called once per
// stack entry with a freshly created scope and must be total over the
// declared screen variants.
type FactoryFunc[C any] func(cfg screen.Config, scope *lifecycle.Scope) (C, error)

// Guard validates a forward transition from the active configuration.
// Returning a non-nil error rejects the push or replace with
// ErrInvalidTransition and leaves the stack unchanged.
type Guard func(active, next screen.Config) error

// Options configures a Navigator.
type Options struct {
	Initial    []screen.Config      // Initial stack head to tail (default: Onboarding)
	Guard      Guard                // Optional transition validation
	Dispatcher lifecycle.Dispatcher // Where scoped task results are applied (required)
	Context    context.Context      // Parent of every entry scope (default: Background)
	Logger     *slog.Logger         // Default: the internal voyage logger
}

// Navigator owns the back stack. It is the only code that changes the
// stack's shape, and every completed change produces exactly one Snapshot.
//
// A Navigator is not safe for concurrent use: all calls must be made from
// the UI dispatcher. Observe may be consumed from any goroutine.
//
// A mutation requested while subscribers are being notified (for example a
// screen that redirects as soon as it appears) is applied at once and its
// result returned to the caller as usual, but its snapshot is held back
// until the current notification finishes. Observers therefore see
// snapshots in mutation order, and a subscriber still handling an older
// snapshot may find Active already ahead of it.
type Navigator[C any] struct {
	factory    FactoryFunc[C]
	guard      Guard
	dispatcher lifecycle.Dispatcher
	ctx        context.Context
	logger     *slog.Logger

	stack   stack[C]
	state   *value.Value[Snapshot[C]]
	version uint64

	busy    bool
	pending []Snapshot[C]

	live *atomic.Int64
}

// New builds a navigator and constructs the initial entries head to tail.
// The first snapshot is available as soon as New returns.
func New[C any](factory FactoryFunc[C], opts Options) (*Navigator[C], error) {
	if factory == nil {
		return nil, fmt.Errorf("router: no factory function set")
	}
	if opts.Dispatcher == nil {
		return nil, fmt.Errorf("router: no dispatcher set")
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = internal.GetInternalLogger()
	}
	initial := opts.Initial
	if len(initial) == 0 {
		initial = []screen.Config{screen.Onboarding{}}
	}

	n := &Navigator[C]{
		factory:    factory,
		guard:      opts.Guard,
		dispatcher: opts.Dispatcher,
		ctx:        opts.Context,
		logger:     opts.Logger,
		live:       atomic.NewInt64(0),
	}

	entries, err := n.createAll(initial)
	if err != nil {
		return nil, &NavigationError{Op: "init", From: screen.KindUnknown, To: kindOf(initial[len(initial)-1]), Err: err}
	}
	for _, e := range entries {
		n.stack.push(e)
	}
	n.settle()
	n.state = value.New(n.stack.snapshot(n.version))

	n.logger.Debug("navigator ready", "stack", kindsOf(n.stack.entries))
	return n, nil
}

// Push appends an entry for cfg. Every call produces a new entry, even when
// cfg equals the active configuration.
func (n *Navigator[C]) Push(cfg screen.Config) error {
	return n.run("push", func() (bool, error) {
		active := n.stack.peek().Config
		if err := n.check("push", active, cfg); err != nil {
			return false, err
		}

		entry, err := n.create(cfg)
		if err != nil {
			return false, &NavigationError{Op: "push", From: kindOf(active), To: kindOf(cfg), Err: err}
		}
		n.stack.push(entry)
		n.settle()
		return true, nil
	})
}

// Pop removes the active entry and destroys its scope. At the root it is a
// no-op returning ErrEmptyStackPop.
func (n *Navigator[C]) Pop() error {
	return n.run("pop", func() (bool, error) {
		if n.stack.len() <= 1 {
			return false, &NavigationError{Op: "pop", From: kindOf(n.stack.peek().Config), Err: ErrEmptyStackPop}
		}
		n.destroy(*n.stack.pop())
		n.settle()
		return true, nil
	})
}

// Replace swaps the active entry for one built from cfg. Observers see a
// single snapshot; the stack length is unchanged.
func (n *Navigator[C]) Replace(cfg screen.Config) error {
	return n.run("replace", func() (bool, error) {
		active := n.stack.peek().Config
		if err := n.check("replace", active, cfg); err != nil {
			return false, err
		}

		entry, err := n.create(cfg)
		if err != nil {
			return false, &NavigationError{Op: "replace", From: kindOf(active), To: kindOf(cfg), Err: err}
		}
		n.destroy(*n.stack.pop())
		n.stack.push(entry)
		n.settle()
		return true, nil
	})
}

// Reset replaces the whole stack with cfgs, head to tail. The old entries
// are destroyed tail to head; the last of cfgs becomes active.
//
// The new entries are built first and the old ones torn down afterwards, so
// a factory failure leaves the stack exactly as it was. While Reset runs,
// Live briefly counts both the old and the new entries, and every new
// factory call happens before any old scope is destroyed.
func (n *Navigator[C]) Reset(cfgs ...screen.Config) error {
	return n.run("reset", func() (bool, error) {
		from := kindOf(n.stack.peek().Config)
		if len(cfgs) == 0 {
			return false, &NavigationError{Op: "reset", From: from, Err: ErrEmptyReset}
		}

		entries, err := n.createAll(cfgs)
		if err != nil {
			return false, &NavigationError{Op: "reset", From: from, To: kindOf(cfgs[len(cfgs)-1]), Err: err}
		}

		old := n.stack.clear()
		for i := len(old) - 1; i >= 0; i-- {
			n.destroy(old[i])
		}
		for _, e := range entries {
			n.stack.push(e)
		}
		n.settle()
		return true, nil
	})
}

// CanPop reports whether Pop would remove an entry.
func (n *Navigator[C]) CanPop() bool {
	return n.stack.len() > 1
}

// Active returns the entry currently shown.
func (n *Navigator[C]) Active() Entry[C] {
	return *n.stack.peek()
}

// Snapshot returns the most recently emitted snapshot.
func (n *Navigator[C]) Snapshot() Snapshot[C] {
	return n.state.Get()
}

// Subscribe calls fn with the current snapshot and then once per completed
// mutation, synchronously on the mutating goroutine.
func (n *Navigator[C]) Subscribe(fn func(Snapshot[C])) (unsubscribe func()) {
	return n.state.Subscribe(fn)
}

// Live returns the number of children whose scope has not been destroyed.
func (n *Navigator[C]) Live() int {
	return int(n.live.Load())
}

// Close destroys every entry, tail to head. The navigator must not be used
// afterwards.
func (n *Navigator[C]) Close() {
	old := n.stack.clear()
	for i := len(old) - 1; i >= 0; i-- {
		n.destroy(old[i])
	}
}

func (n *Navigator[C]) run(name string, fn func() (bool, error)) error {
	changed, err := fn()
	if err != nil {
		n.logNavigationError(name, err)
		return err
	}
	if !changed {
		return nil
	}

	n.version++
	snap := n.stack.snapshot(n.version)
	n.logger.Debug("navigation", "op", name, "version", snap.Version, "stack", kindsOf(snap.Entries))
	n.emit(snap)
	return nil
}

// emit publishes snap, or queues it behind the notification in progress.
func (n *Navigator[C]) emit(snap Snapshot[C]) {
	if n.busy {
		n.pending = append(n.pending, snap)
		n.logger.Debug("snapshot queued", "version", snap.Version)
		return
	}

	n.busy = true
	defer func() { n.busy = false }()

	n.state.Set(snap)
	for len(n.pending) > 0 {
		next := n.pending[0]
		n.pending = n.pending[1:]
		n.state.Set(next)
	}
}

func (n *Navigator[C]) logNavigationError(op string, err error) {
	switch {
	case IsEmptyStackPop(err):
		n.logger.Debug("pop at root ignored", "op", op)
	case IsInvalidTransition(err):
		n.logger.Warn("transition rejected", "op", op, "error", err)
	default:
		n.logger.Error("navigation failed", "op", op, "error", err)
	}
}

func (n *Navigator[C]) check(op string, active, next screen.Config) error {
	if next == nil {
		return &NavigationError{Op: op, From: kindOf(active), Err: ErrUnhandledScreen}
	}
	if n.guard == nil {
		return nil
	}
	if err := n.guard(active, next); err != nil {
		if !errors.Is(err, ErrInvalidTransition) {
			err = fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		return &NavigationError{Op: op, From: kindOf(active), To: kindOf(next), Err: err}
	}
	return nil
}

func (n *Navigator[C]) create(cfg screen.Config) (Entry[C], error) {
	scope := lifecycle.NewScope(n.ctx, n.dispatcher)
	child, err := n.factory(cfg, scope)
	if err != nil {
		scope.Destroy()
		return Entry[C]{}, err
	}
	n.live.Inc()
	return Entry[C]{Key: uuid.NewString(), Config: cfg, Child: child, scope: scope}, nil
}

func (n *Navigator[C]) createAll(cfgs []screen.Config) ([]Entry[C], error) {
	entries := make([]Entry[C], 0, len(cfgs))
	for _, cfg := range cfgs {
		if cfg == nil {
			n.rollback(entries)
			return nil, ErrUnhandledScreen
		}
		e, err := n.create(cfg)
		if err != nil {
			n.rollback(entries)
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (n *Navigator[C]) rollback(entries []Entry[C]) {
	for i := len(entries) - 1; i >= 0; i-- {
		n.destroy(entries[i])
	}
}

func (n *Navigator[C]) destroy(e Entry[C]) {
	e.scope.Destroy()
	n.live.Dec()
	n.logger.Debug("entry destroyed", "screen", kindOf(e.Config).String(), "key", e.Key)
}

// settle resumes the active entry and pauses every other one.
func (n *Navigator[C]) settle() {
	last := n.stack.len() - 1
	for i, e := range n.stack.entries {
		if i == last {
			e.scope.Resume()
		} else {
			e.scope.Pause()
		}
	}
}

func kindsOf[C any](entries []Entry[C]) []string {
	kinds := make([]string, len(entries))
	for i, e := range entries {
		kinds[i] = kindOf(e.Config).String()
	}
	return kinds
}
