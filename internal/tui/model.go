// Package tui is the interactive terminal front end. It renders a
// tasklist.Model and runs the reducer's effects as bubbletea commands.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mytodo/internal/service"
	"mytodo/internal/tasklist"
)

const (
	toastDuration  = 3 * time.Second
	confettiFrames = 14
	confettiTick   = 80 * time.Millisecond
)

type focus int

const (
	focusInput focus = iota
	focusList
)

// Model is the bubbletea model.
type Model struct {
	ctx context.Context
	svc service.Service

	state tasklist.Model

	input    textinput.Model
	bar      progress.Model
	focus    focus
	cursor   int
	editing  string // id of the task whose text is in the input
	width    int
	quitting bool

	toast      string
	toastErr   bool
	toastSeq   int
	confetti   int
	celebrated string

	feed     <-chan service.ChangeEvent
	stopFeed context.CancelFunc

	// err ends the program, e.g. a rejected session.
	err error
}

// New creates a model bound to svc. ctx bounds every backend call.
func New(ctx context.Context, svc service.Service) Model {
	in := textinput.New()
	in.Placeholder = "新しいタスクを入力..."
	in.CharLimit = 500
	in.Width = 48
	in.Focus()

	return Model{
		ctx:   ctx,
		svc:   svc,
		state: tasklist.New(),
		input: in,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage()),
	}
}

// State returns the application state (for testing).
func (m Model) State() tasklist.Model { return m.state }

// Init resolves the session.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.whoami())
}

type sessionMsg struct {
	session service.Session
	err     error
}

type feedOpenedMsg struct {
	events <-chan service.ChangeEvent
	cancel context.CancelFunc
	err    error
}

type toastExpiredMsg struct{ seq int }

type confettiMsg struct{}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case sessionMsg:
		if msg.err != nil {
			m.quitting = true
			m.err = msg.err
			return m, tea.Quit
		}
		s := msg.session
		return m.apply(tasklist.SessionChanged{Session: &s})

	case feedOpenedMsg:
		if msg.err != nil {
			return m.apply(tasklist.FeedLost{Err: feedError(msg.err)})
		}
		m.feed = msg.events
		m.stopFeed = msg.cancel
		return m, waitForEvent(m.feed)

	case tasklist.RemoteChange:
		next, cmd := m.apply(msg)
		nm := next.(Model)
		return nm, tea.Batch(cmd, waitForEvent(nm.feed))

	case tasklist.FeedLost:
		m.feed = nil
		m.stopFeed = nil
		return m.apply(msg)

	case tasklist.Msg:
		return m.apply(msg)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case confettiMsg:
		if m.confetti > 0 {
			m.confetti--
			return m, confettiCmd()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// apply runs the reducer and turns its effects into commands.
func (m Model) apply(msg tasklist.Msg) (tea.Model, tea.Cmd) {
	var effects []tasklist.Effect
	m.state, effects = tasklist.Update(m.state, msg)
	m.clampCursor()

	var cmds []tea.Cmd
	for _, eff := range effects {
		var cmd tea.Cmd
		m, cmd = m.run(eff)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "tab":
		return m.apply(tasklist.SetFilter{Filter: m.state.Filter.Next()})
	}

	if m.focus == focusInput {
		return m.handleInputKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		if m.editing != "" {
			id := m.editing
			m.editing = ""
			m.input.SetValue("")
			return m.apply(tasklist.Edit{ID: id, Text: text})
		}
		return m.apply(tasklist.AddText(text))
	case "esc":
		if m.editing != "" {
			m.editing = ""
			m.input.SetValue("")
			return m, nil
		}
		return m.focusList()
	case "down":
		return m.focusList()
	}

	if m.state.Adding {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.state.Visible()
	switch msg.String() {
	case "q":
		return m.quit()
	case "up", "k":
		if m.cursor == 0 {
			return m.focusInput()
		}
		m.cursor--
	case "down", "j":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case "a", "i", "esc":
		return m.focusInput()
	case "r":
		return m.apply(tasklist.Reload{})
	case " ", "space":
		if t, ok := m.selected(); ok {
			return m.apply(tasklist.Toggle{ID: t.ID})
		}
	case "d", "delete":
		if t, ok := m.selected(); ok {
			return m.apply(tasklist.Remove{ID: t.ID})
		}
	case "e":
		if t, ok := m.selected(); ok {
			m.editing = t.ID
			m.input.SetValue(t.Text)
			m.input.CursorEnd()
			return m.focusInput()
		}
	}
	return m, nil
}

func (m Model) focusInput() (tea.Model, tea.Cmd) {
	m.focus = focusInput
	return m, m.input.Focus()
}

func (m Model) focusList() (tea.Model, tea.Cmd) {
	if len(m.state.Visible()) == 0 {
		return m, nil
	}
	m.focus = focusList
	m.input.Blur()
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.stopFeed != nil {
		m.stopFeed()
		m.stopFeed = nil
	}
	m.quitting = true
	return m, tea.Quit
}

func (m Model) selected() (service.Task, bool) {
	visible := m.state.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return service.Task{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.state.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if n == 0 && m.focus == focusList {
		m.focus = focusInput
		m.input.Focus()
	}
}
