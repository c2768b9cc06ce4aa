package router

import (
	"errors"
	"fmt"

	"github.com/BrandonKowalski/voyage/pkg/voyage/screen"
)

// Sentinel errors for navigator contract violations.
var (
	// ErrEmptyStackPop indicates a pop was requested while only the root
	// entry remains. The stack is unchanged; hosts usually treat it as an
	// exit intent.
	ErrEmptyStackPop = errors.New("cannot pop the root entry")

	// ErrInvalidTransition indicates the guard rejected a configuration
	// because its required preceding context is absent. The stack is
	// unchanged.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrUnhandledScreen indicates the child factory has no mapping for a
	// configuration. This is a programming error and should be treated as
	// fatal.
	ErrUnhandledScreen = screen.ErrUnhandledScreen

	// ErrEmptyReset indicates Reset was called without configurations.
	ErrEmptyReset = errors.New("reset requires at least one screen")
)

// NavigationError describes a rejected navigator operation.
type NavigationError struct {
	Op   string      // push, pop, replace, reset, restore
	From screen.Kind // active screen when the operation was requested
	To   screen.Kind // requested screen, KindUnknown for pop/reset
	Err  error
}

func (e *NavigationError) Error() string {
	if e.To != screen.KindUnknown {
		return fmt.Sprintf("router: %s %s -> %s: %v", e.Op, e.From, e.To, e.Err)
	}
	return fmt.Sprintf("router: %s from %s: %v", e.Op, e.From, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// IsEmptyStackPop reports whether err is a pop at the root.
func IsEmptyStackPop(err error) bool {
	return errors.Is(err, ErrEmptyStackPop)
}

// IsInvalidTransition reports whether err is a guard rejection.
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// IsUnhandledScreen reports whether err is a missing factory mapping.
func IsUnhandledScreen(err error) bool {
	return errors.Is(err, ErrUnhandledScreen)
}

func kindOf(c screen.Config) screen.Kind {
	if c == nil {
		return screen.KindUnknown
	}
	return c.Kind()
}
