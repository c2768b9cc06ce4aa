// Package screens holds one component per screen variant and the factory
// that builds them.
//
// Components expose observable state as value.Value fields and intents as
// methods. Intents run on the UI dispatcher; backend calls run on the
// component's lifecycle scope and their results are applied back on the
// dispatcher only while the component is still on the stack.
//
// Components never touch the back stack. They ask for navigation through the
// Navigator they were built with.
package screens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BrandonKowalski/voyage/pkg/voyage/i18n"
	"github.com/BrandonKowalski/voyage/pkg/voyage/lifecycle"
	"github.com/BrandonKowalski/voyage/pkg/voyage/model"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
	"github.com/BrandonKowalski/voyage/pkg/voyage/services"
	"github.com/BrandonKowalski/voyage/pkg/voyage/value"
)

// Navigator is the set of navigation intents available to components.
type Navigator interface {
	NavigateTo(cfg screen.Config) error
	Replace(cfg screen.Config) error
	Reset(cfgs ...screen.Config) error
	Back() bool
}

// Session holds the signed in user.
type Session interface {
	User() model.UserID
	SetUser(id model.UserID)
}

// Child is a live screen component.
type Child interface {
	Kind() screen.Kind
	Title() string
	Loading() *value.Value[bool]
	Failure() *value.Value[*TaskError]
	Items() []Item
}

// BackHandler is implemented by components that consume a back press
// themselves, for example to clear a search field. HandleBack reports
// whether the press was consumed.
type BackHandler interface {
	HandleBack() bool
}

// Form is implemented by components with text input.
type Form interface {
	Fields() []Field
	Submit()
}

// Field is one editable text input.
type Field struct {
	Label  string
	Value  *value.Value[string]
	Secret bool
}

// Item is one selectable row of a component.
type Item struct {
	Label  string
	Detail string
	Select func()
}

// Deps are the collaborators every component may use.
type Deps struct {
	Nav       Navigator
	Session   Session
	Backend   services.Backend
	Localizer *i18n.Localizer

	SearchDebounce time.Duration    // Default: 300ms
	Now            func() time.Time // Default: time.Now
}

func (d Deps) withDefaults() Deps {
	if d.SearchDebounce == 0 {
		d.SearchDebounce = 300 * time.Millisecond
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Localizer == nil {
		d.Localizer = i18n.New()
	}
	return d
}

// ErrMissingField is reported when a form is submitted incomplete.
var ErrMissingField = errors.New("missing field")

// TaskError is a failed backend call, kept in the component that issued it.
// It never reaches the navigator.
type TaskError struct {
	Op      string // backend operation, e.g. search_flights
	Err     error
	Message string // localized, ready to show

	retry func()
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// Retry reissues the failed call. It is a no-op for errors that cannot be
// retried, such as validation failures.
func (e *TaskError) Retry() {
	if e.retry != nil {
		e.retry()
	}
}

// CanRetry reports whether Retry does anything.
func (e *TaskError) CanRetry() bool {
	return e.retry != nil
}

// IsTaskError reports whether err is a TaskError.
func IsTaskError(err error) bool {
	var taskErr *TaskError
	return errors.As(err, &taskErr)
}

// base carries what every component shares.
type base struct {
	kind  screen.Kind
	deps  Deps
	scope *lifecycle.Scope

	loading *value.Value[bool]
	failure *value.Value[*TaskError]
}

func newBase(kind screen.Kind, deps Deps, scope *lifecycle.Scope) base {
	return base{
		kind:    kind,
		deps:    deps,
		scope:   scope,
		loading: value.New(false),
		failure: value.New[*TaskError](nil),
	}
}

func (b *base) Kind() screen.Kind { return b.kind }

func (b *base) Title() string { return b.deps.Localizer.Title(b.kind) }

func (b *base) Loading() *value.Value[bool] { return b.loading }

func (b *base) Failure() *value.Value[*TaskError] { return b.failure }

// Scope returns the lifecycle scope of the component.
func (b *base) Scope() *lifecycle.Scope { return b.scope }

func (b *base) navigate(cfg screen.Config) {
	if err := b.deps.Nav.NavigateTo(cfg); err != nil {
		b.fail(&TaskError{Op: "navigate", Err: err, Message: b.deps.Localizer.Error(err)})
	}
}

func (b *base) fail(e *TaskError) {
	b.failure.Set(e)
}

func (b *base) invalid(field string) {
	b.failure.Set(&TaskError{
		Op:      "validate",
		Err:     fmt.Errorf("%w: %s", ErrMissingField, field),
		Message: b.deps.Localizer.Message("error_validation", map[string]any{"Field": field}),
	})
}

// load runs work on the component's scope and hands the result to apply on
// the UI dispatcher. Failures land in the component's Failure value with a
// retry that reissues the same call.
func load[T any](b *base, op string, work func(ctx context.Context) (T, error), apply func(T)) {
	b.loading.Set(true)
	b.failure.Set(nil)

	lifecycle.Go(b.scope, work, func(v T, err error) {
		b.loading.Set(false)
		if err != nil {
			b.failure.Set(&TaskError{
				Op:      op,
				Err:     err,
				Message: b.deps.Localizer.Error(err),
				retry:   func() { load(b, op, work, apply) },
			})
			return
		}
		apply(v)
	})
}

// watch subscribes fn to v for the lifetime of the component.
func watch[T any](b *base, v *value.Value[T], fn func(T)) {
	b.scope.OnDestroy(v.Subscribe(fn))
}
