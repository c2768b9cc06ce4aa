// Package backbutton turns presses of a hardware back key into Back calls
// on the root controller.
package backbutton

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BrandonKowalski/voyage/pkg/voyage/internal"
	"github.com/BrandonKowalski/voyage/pkg/voyage/lifecycle"
)

// KeyBack is the Linux input code of KEY_BACK.
const KeyBack uint16 = 158

// ErrUnsupported is returned by sources that cannot run on this platform.
var ErrUnsupported = errors.New("back button source not supported on this platform")

// Source delivers back presses. Run blocks, calling press once per press,
// until ctx is done or the source fails.
type Source interface {
	Run(ctx context.Context, press func()) error
}

// Backer is the navigation side of a press. app.Root implements it.
type Backer interface {
	Back() bool
}

// Config describes a back key on an input device.
type Config struct {
	DevicePath string // e.g. /dev/input/event1
	Code       uint16 // Default: KeyBack
}

// Listener forwards presses from a Source to a Backer on the UI dispatcher.
// A press the Backer does not handle, because the stack is at its root, is
// passed to Exit.
type Listener struct {
	Source     Source
	Back       Backer
	Dispatcher lifecycle.Dispatcher
	Exit       func()
	CoolDown   time.Duration // Presses closer together than this are ignored
	Logger     *slog.Logger

	now  func() time.Time
	last time.Time
}

// Run listens until ctx is done. A context error is not reported.
func (l *Listener) Run(ctx context.Context) error {
	if l.Logger == nil {
		l.Logger = internal.GetInternalLogger()
	}
	if l.now == nil {
		l.now = time.Now
	}

	err := l.Source.Run(ctx, l.press)
	if err != nil && ctx.Err() == nil {
		l.Logger.Error("back button source stopped", "error", err)
		return err
	}
	return nil
}

func (l *Listener) press() {
	now := l.now()
	if l.CoolDown > 0 && !l.last.IsZero() && now.Sub(l.last) < l.CoolDown {
		l.Logger.Debug("back press ignored during cool down")
		return
	}
	l.last = now

	l.Dispatcher.Post(func() {
		if l.Back.Back() {
			return
		}
		l.Logger.Debug("back press at root")
		if l.Exit != nil {
			l.Exit()
		}
	})
}

// Chan is a Source fed by sending on it. Hosts use it to route a keyboard
// key through the same path as the hardware button.
type Chan chan struct{}

func (c Chan) Run(ctx context.Context, press func()) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-c:
			if !ok {
				return nil
			}
			press()
		}
	}
}
