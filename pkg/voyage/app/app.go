// Package app wires the navigator, the screen factory and the session into
// the root controller a host shell drives.
package app

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/BrandonKowalski/voyage/pkg/voyage/i18n"
	"github.com/BrandonKowalski/voyage/pkg/voyage/internal"
	"github.com/BrandonKowalski/voyage/pkg/voyage/lifecycle"
	"github.com/BrandonKowalski/voyage/pkg/voyage/model"
	"github.com/BrandonKowalski/voyage/pkg/voyage/router"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screens"
	"github.com/BrandonKowalski/voyage/pkg/voyage/services"
	"github.com/BrandonKowalski/voyage/pkg/voyage/statestore"
	"github.com/BrandonKowalski/voyage/pkg/voyage/value"
)

// Store persists the back stack and the signed in user between runs.
// *statestore.Store implements it.
type Store interface {
	Save(ctx context.Context, slot string, state router.SavedState) error
	Load(ctx context.Context, slot string) (router.SavedState, error)
	SetUser(ctx context.Context, id model.UserID) error
	User(ctx context.Context) (model.UserID, error)
}

// Options configures a Root.
type Options struct {
	Backend    services.Backend
	Dispatcher lifecycle.Dispatcher // Required
	Localizer  *i18n.Localizer      // Default: English
	Store      Store                // Optional; without it nothing survives a restart
	Slot       string               // Default: statestore.DefaultSlot
	Initial    []screen.Config      // Overrides the saved or default stack
	Context    context.Context
	Logger     *slog.Logger

	SearchDebounce time.Duration
	Now            func() time.Time
}

type Stack = router.Snapshot[screens.Child]

// Root is the navigation controller. It decides how each navigation
// intent maps onto the back stack and is the Navigator every component is
// built with.
//
// Like the navigator it wraps, Root must only be used from the UI
// dispatcher.
type Root struct {
	nav       *router.Navigator[screens.Child]
	session   *session
	store     Store
	slot      string
	localizer *i18n.Localizer
	ctx       context.Context
	logger    *slog.Logger
}

// New builds the root controller. The initial stack is, in order of
// preference, opts.Initial, the stack saved in opts.Store, [Home] for a
// remembered user, and [Onboarding].
func New(opts Options) (*Root, error) {
	if opts.Dispatcher == nil {
		return nil, fmt.Errorf("app: no dispatcher set")
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = internal.GetLogger()
	}
	if opts.Localizer == nil {
		opts.Localizer = i18n.New()
	}
	if opts.Slot == "" {
		opts.Slot = statestore.DefaultSlot
	}

	r := &Root{
		store:     opts.Store,
		slot:      opts.Slot,
		localizer: opts.Localizer,
		ctx:       opts.Context,
		logger:    opts.Logger,
	}
	r.session = newSession(r)

	factory := screens.NewFactory(screens.Deps{
		Nav:            r,
		Session:        r.session,
		Backend:        opts.Backend,
		Localizer:      opts.Localizer,
		SearchDebounce: opts.SearchDebounce,
		Now:            opts.Now,
	})

	nav, err := router.New(factory.Build, router.Options{
		Initial:    r.initial(opts.Initial),
		Guard:      TripGuard,
		Dispatcher: opts.Dispatcher,
		Context:    opts.Context,
		Logger:     opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	r.nav = nav
	return r, nil
}

func (r *Root) initial(override []screen.Config) []screen.Config {
	if len(override) > 0 {
		return override
	}
	if r.store == nil {
		return []screen.Config{screen.Onboarding{}}
	}

	saved, err := r.store.Load(r.ctx, r.slot)
	switch {
	case err == nil:
		cfgs, err := saved.Decode()
		if err == nil {
			r.logger.Info("restoring saved stack", "slot", r.slot, "entries", len(cfgs))
			return cfgs
		}
		r.logger.Warn("discarding unreadable saved stack", "slot", r.slot, "error", err)
	case !errors.Is(err, statestore.ErrNotFound):
		r.logger.Warn("could not load saved stack", "slot", r.slot, "error", err)
	}

	if r.session.User() != "" {
		return []screen.Config{screen.Home{}}
	}
	return []screen.Config{screen.Onboarding{}}
}

// NavigateTo moves to cfg. Switching between sign-in and sign-up replaces
// the active screen, finishing authentication clears the stack down to
// Home, and signing out from the profile clears it down to Login. Every
// other destination is pushed.
func (r *Root) NavigateTo(cfg screen.Config) error {
	if cfg == nil {
		return r.nav.Push(nil)
	}
	from := r.nav.Active().Config.Kind()
	to := cfg.Kind()

	switch {
	case isAuth(from) && isAuth(to) && from != to:
		return r.nav.Replace(cfg)
	case to == screen.KindHome && (from == screen.KindOnboarding || isAuth(from)):
		return r.nav.Reset(cfg)
	case to == screen.KindLogin && from == screen.KindProfile:
		return r.nav.Reset(cfg)
	default:
		return r.nav.Push(cfg)
	}
}

func isAuth(k screen.Kind) bool {
	return k == screen.KindLogin || k == screen.KindSignup
}

// Back offers the press to the active component first, then pops. It
// returns false when nothing handled the press because the stack is at its
// root; the host should treat that as a request to exit.
func (r *Root) Back() bool {
	if h, ok := r.nav.Active().Child.(screens.BackHandler); ok && h.HandleBack() {
		return true
	}
	err := r.nav.Pop()
	return err == nil || !router.IsEmptyStackPop(err)
}

func (r *Root) Replace(cfg screen.Config) error {
	return r.nav.Replace(cfg)
}

func (r *Root) Reset(cfgs ...screen.Config) error {
	return r.nav.Reset(cfgs...)
}

// OpenDeepLink shows the screen a link names on top of Home.
func (r *Root) OpenDeepLink(link string) error {
	cfg, err := screen.ParseDeepLink(link)
	if err != nil {
		return err
	}
	if cfg.Kind() == screen.KindHome {
		return r.nav.Reset(cfg)
	}
	if err := TripGuard(screen.Home{}, cfg); err != nil {
		return &router.NavigationError{Op: "deeplink", From: r.nav.Active().Config.Kind(), To: cfg.Kind(), Err: err}
	}
	return r.nav.Reset(screen.Home{}, cfg)
}

// Stack returns the current snapshot of the back stack.
func (r *Root) Stack() Stack {
	return r.nav.Snapshot()
}

// Active returns the component currently shown.
func (r *Root) Active() screens.Child {
	return r.nav.Active().Child
}

func (r *Root) CanGoBack() bool {
	return r.nav.CanPop()
}

// Subscribe calls fn with the current stack and after every change.
func (r *Root) Subscribe(fn func(Stack)) (unsubscribe func()) {
	return r.nav.Subscribe(fn)
}

// Observe yields the current stack and then every change, in order, until
// ctx is done or the consumer stops.
func (r *Root) Observe(ctx context.Context) iter.Seq[Stack] {
	return r.nav.Observe(ctx)
}

// User is the signed in user; empty when signed out.
func (r *Root) User() *value.Value[model.UserID] {
	return r.session.user
}

func (r *Root) Localizer() *i18n.Localizer {
	return r.localizer
}

// Live returns the number of components that have not been torn down.
func (r *Root) Live() int {
	return r.nav.Live()
}

// Save persists the back stack. It is a no-op without a store.
func (r *Root) Save(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	saved, err := r.nav.SaveState()
	if err != nil {
		return fmt.Errorf("save stack: %w", err)
	}
	if err := r.store.Save(ctx, r.slot, saved); err != nil {
		return fmt.Errorf("save stack: %w", err)
	}
	r.logger.Debug("stack saved", "slot", r.slot, "entries", len(saved.Configs))
	return nil
}

// Restore replaces the live stack with the one last saved. It returns
// statestore.ErrNotFound when nothing was saved.
func (r *Root) Restore(ctx context.Context) error {
	if r.store == nil {
		return statestore.ErrNotFound
	}
	saved, err := r.store.Load(ctx, r.slot)
	if err != nil {
		return err
	}
	return r.nav.RestoreState(saved)
}

// Close tears down every component.
func (r *Root) Close() {
	r.nav.Close()
}
