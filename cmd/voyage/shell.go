package main

import (
	"context"
	"strings"

	"github.com/BrandonKowalski/voyage/pkg/voyage/app"
	"github.com/BrandonKowalski/voyage/pkg/voyage/screens"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// shell renders the active component of the root controller and turns key
// presses into its intents.
type shell struct {
	ctx      context.Context
	root     *app.Root
	dispatch *teaDispatcher

	keys     KeyMap
	formKeys FormKeyMap
	spinner  spinner.Model

	activeKey string
	cursor    int
	fields    []screens.Field
	inputs    []textinput.Model
	focus     int // index into inputs, -1 while browsing

	width int
	info  string
	quit  bool
}

func newShell(ctx context.Context, root *app.Root, d *teaDispatcher) *shell {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	s := &shell{
		ctx:      ctx,
		root:     root,
		dispatch: d,
		keys:     DefaultKeyMap(),
		formKeys: DefaultFormKeyMap(),
		spinner:  sp,
		focus:    -1,
	}
	s.sync()
	return s
}

func (s *shell) Init() tea.Cmd {
	return tea.Batch(s.dispatch.wait(), s.spinner.Tick)
}

func (s *shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width

	case drainMsg:
		s.dispatch.drain()
		cmds = append(cmds, s.dispatch.wait())

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		cmds = append(cmds, s.handleKey(msg))
	}

	s.sync()
	if s.quit {
		return s, tea.Quit
	}
	return s, tea.Batch(cmds...)
}

func (s *shell) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.focus >= 0 {
		return s.handleFormKey(msg)
	}
	s.info = ""
	child := s.root.Active()

	switch {
	case key.Matches(msg, s.keys.Quit):
		s.quit = true

	case key.Matches(msg, s.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}

	case key.Matches(msg, s.keys.Down):
		if s.cursor < len(child.Items())-1 {
			s.cursor++
		}

	case key.Matches(msg, s.keys.Select):
		items := child.Items()
		if s.cursor < len(items) && items[s.cursor].Select != nil {
			items[s.cursor].Select()
		}

	case key.Matches(msg, s.keys.Back):
		if !s.root.Back() {
			s.quit = true
		}

	case key.Matches(msg, s.keys.Edit):
		if len(s.inputs) > 0 {
			return s.focusField(0)
		}

	case key.Matches(msg, s.keys.Retry):
		if f := child.Failure().Get(); f != nil && f.CanRetry() {
			f.Retry()
		}

	case key.Matches(msg, s.keys.Save):
		if err := s.root.Save(s.ctx); err != nil {
			s.info = err.Error()
		} else {
			s.info = "Saved"
		}
	}
	return nil
}

func (s *shell) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.formKeys.Cancel):
		s.blur()
		return nil

	case key.Matches(msg, s.formKeys.Submit):
		s.blur()
		if form, ok := s.root.Active().(screens.Form); ok {
			form.Submit()
		}
		return nil

	case key.Matches(msg, s.formKeys.NextField):
		return s.focusField((s.focus + 1) % len(s.inputs))

	case key.Matches(msg, s.formKeys.PrevField):
		return s.focusField((s.focus - 1 + len(s.inputs)) % len(s.inputs))
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	s.fields[s.focus].Value.Set(s.inputs[s.focus].Value())
	return cmd
}

func (s *shell) focusField(i int) tea.Cmd {
	s.blur()
	s.focus = i
	return s.inputs[i].Focus()
}

func (s *shell) blur() {
	if s.focus >= 0 && s.focus < len(s.inputs) {
		s.inputs[s.focus].Blur()
	}
	s.focus = -1
}

// sync rebuilds per-screen state when the active entry changed and copies
// field values that a component changed on its own into the inputs.
func (s *shell) sync() {
	entry := s.root.Stack().Active()
	if entry.Key != s.activeKey {
		s.activeKey = entry.Key
		s.cursor = 0
		s.focus = -1
		s.fields = nil
		s.inputs = nil

		if form, ok := entry.Child.(screens.Form); ok {
			s.fields = form.Fields()
			s.inputs = make([]textinput.Model, len(s.fields))
			for i, f := range s.fields {
				in := textinput.New()
				in.Placeholder = f.Label
				in.CharLimit = 200
				if f.Secret {
					in.EchoMode = textinput.EchoPassword
				}
				in.SetValue(f.Value.Get())
				s.inputs[i] = in
			}
		}
	}

	for i, f := range s.fields {
		if i != s.focus && s.inputs[i].Value() != f.Value.Get() {
			s.inputs[i].SetValue(f.Value.Get())
		}
	}
	if n := len(entry.Child.Items()); s.cursor >= n {
		s.cursor = max(n-1, 0)
	}
}

func (s *shell) View() string {
	if s.quit {
		return ""
	}
	child := s.root.Active()
	var b strings.Builder

	b.WriteString(TitleStyle.Render(child.Title()))
	b.WriteString("\n")
	b.WriteString(CrumbStyle.Render(s.breadcrumbs()))
	b.WriteString("\n\n")

	for i, in := range s.inputs {
		b.WriteString(LabelStyle.Render(s.fields[i].Label))
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if len(s.inputs) > 0 {
		b.WriteString("\n")
	}

	for i, item := range child.Items() {
		row := item.Label
		if item.Detail != "" {
			row += "  " + DetailStyle.Render(item.Detail)
		}
		if i == s.cursor && s.focus < 0 {
			b.WriteString(SelectedRowStyle.Render("› " + row))
		} else {
			b.WriteString(NormalRowStyle.Render("  " + row))
		}
		b.WriteString("\n")
	}

	if child.Loading().Get() {
		b.WriteString("\n" + s.spinner.View() + " Loading…\n")
	}
	if f := child.Failure().Get(); f != nil {
		msg := f.Message
		if f.CanRetry() {
			msg += "  (r to retry)"
		}
		b.WriteString("\n" + ErrorStyle.Render(msg) + "\n")
	}
	if s.info != "" {
		b.WriteString("\n" + DetailStyle.Render(s.info) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(s.help())
	return b.String()
}

func (s *shell) breadcrumbs() string {
	l := s.root.Localizer()
	var parts []string
	for _, cfg := range s.root.Stack().Configs() {
		parts = append(parts, l.Title(cfg.Kind()))
	}
	return strings.Join(parts, " › ")
}

func (s *shell) help() string {
	var bindings []key.Binding
	if s.focus >= 0 {
		bindings = []key.Binding{s.formKeys.NextField, s.formKeys.Submit, s.formKeys.Cancel}
	} else {
		bindings = []key.Binding{s.keys.Up, s.keys.Down, s.keys.Select, s.keys.Back}
		if len(s.inputs) > 0 {
			bindings = append(bindings, s.keys.Edit)
		}
		bindings = append(bindings, s.keys.Retry, s.keys.Save, s.keys.Quit)
	}

	parts := make([]string, len(bindings))
	for i, k := range bindings {
		h := k.Help()
		parts[i] = HelpKeyStyle.Render(h.Key) + " " + HelpDescStyle.Render(h.Desc)
	}
	line := strings.Join(parts, "  ")
	if s.width > 0 {
		return FooterStyle.Width(s.width).Render(line)
	}
	return FooterStyle.Render(line)
}

var _ tea.Model = (*shell)(nil)
