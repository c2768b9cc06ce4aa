package main

import (
	"github.com/BrandonKowalski/voyage/pkg/voyage/mainloop"
	tea "github.com/charmbracelet/bubbletea"
)

// drainMsg tells the shell that posted work is waiting.
type drainMsg struct{}

// teaDispatcher applies posted work inside Bubble Tea's Update, so
// components and the navigator are only ever touched from the program's
// event loop. Post never blocks, even when called from Update itself.
type teaDispatcher struct {
	loop *mainloop.Loop
	wake chan struct{}
}

func newTeaDispatcher() *teaDispatcher {
	return &teaDispatcher{loop: mainloop.New(), wake: make(chan struct{}, 1)}
}

func (d *teaDispatcher) Post(fn func()) {
	d.loop.Post(fn)
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// wait is a command that resolves once work has been posted.
func (d *teaDispatcher) wait() tea.Cmd {
	return func() tea.Msg {
		<-d.wake
		return drainMsg{}
	}
}

// drain runs everything posted so far. Call it from Update only.
func (d *teaDispatcher) drain() int {
	return d.loop.RunPending()
}
