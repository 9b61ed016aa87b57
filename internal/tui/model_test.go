package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mytodo/internal/service"
	"mytodo/internal/tasklist"
	"mytodo/internal/testutil"
)

// runCmd executes c, giving up on commands that block (ticks, feed reads).
func runCmd(c tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// settle feeds every message produced by cmd back into m until nothing is left.
func settle(m Model, cmd tea.Cmd) Model {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := runCmd(c).(type) {
		case nil, confettiMsg, toastExpiredMsg, tea.QuitMsg:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, nc := m.Update(msg)
			m = next.(Model)
			queue = append(queue, nc)
		}
	}
	return m
}

func send(m Model, msg tea.Msg) Model {
	next, cmd := m.Update(msg)
	return settle(next.(Model), cmd)
}

func typeText(m Model, s string) Model {
	return send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func started(t *testing.T, svc *testutil.FakeService) Model {
	t.Helper()
	m := New(context.Background(), svc)
	m = settle(m, m.Init())
	if !m.State().SignedIn() {
		t.Fatalf("expected signed-in model")
	}
	return m
}

func TestInitLoadsTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "Buy milk", false)
	svc.AddTask("b", "Walk dog", true)

	m := started(t, svc)
	if got := len(m.State().Tasks); got != 2 {
		t.Fatalf("expected 2 tasks, got %d", got)
	}
	view := m.View()
	if !strings.Contains(view, "Buy milk") || !strings.Contains(view, "Lv.1 見習い") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestInitUnauthorizedQuits(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.WhoamiErr = service.ErrUnauthorized

	m := New(context.Background(), svc)
	next, _ := m.Update(sessionMsg{err: svc.WhoamiErr})
	got := next.(Model)
	if !got.quitting || !errors.Is(got.err, service.ErrUnauthorized) {
		t.Fatalf("expected quit with unauthorized, got quitting=%v err=%v", got.quitting, got.err)
	}
}

func TestEnterAddsTask(t *testing.T) {
	svc := testutil.NewFakeService()
	m := started(t, svc)

	m = typeText(m, "Buy milk")
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := len(svc.Tasks()); got != 1 {
		t.Fatalf("expected 1 stored task, got %d", got)
	}
	if got := len(m.State().Tasks); got != 1 {
		t.Fatalf("expected 1 task in model, got %d", got)
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input cleared, got %q", m.input.Value())
	}
	if m.State().Adding {
		t.Fatalf("expected add to be finished")
	}
}

func TestAddFailureShowsToast(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.InsertErr = errors.New("server down")
	m := started(t, svc)

	m = typeText(m, "Buy milk")
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.toastErr || !strings.Contains(m.toast, "server down") {
		t.Fatalf("expected error toast, got %q", m.toast)
	}
	if m.input.Value() != "Buy milk" {
		t.Fatalf("expected input kept after failure, got %q", m.input.Value())
	}
}

func TestToggleCelebratesAndPraises(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "Buy milk", false)
	svc.PraiseText = "お見事です！"
	m := started(t, svc)

	m = send(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.focus != focusList {
		t.Fatalf("expected list focus")
	}
	m = send(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	if !svc.Tasks()[0].Completed {
		t.Fatalf("expected task completed in backend")
	}
	if m.confetti == 0 {
		t.Fatalf("expected confetti")
	}
	if m.State().Praise != "お見事です！" {
		t.Fatalf("expected praise, got %q", m.State().Praise)
	}
}

func TestTabCyclesFilter(t *testing.T) {
	svc := testutil.NewFakeService()
	m := started(t, svc)

	want := []tasklist.Filter{tasklist.FilterActive, tasklist.FilterCompleted, tasklist.FilterAll}
	for _, f := range want {
		m = send(m, tea.KeyMsg{Type: tea.KeyTab})
		if m.State().Filter != f {
			t.Fatalf("expected filter %q, got %q", f, m.State().Filter)
		}
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	if !strings.Contains(m.View(), "no completed tasks") {
		t.Fatalf("expected empty message in view")
	}
}

func TestEditReplacesText(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "Buy milk", false)
	m := started(t, svc)

	m = send(m, tea.KeyMsg{Type: tea.KeyDown})
	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	if m.editing != "a" || m.input.Value() != "Buy milk" {
		t.Fatalf("expected edit mode with current text, got %q %q", m.editing, m.input.Value())
	}
	m.input.SetValue("Buy oat milk")
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := svc.Tasks()[0].Text; got != "Buy oat milk" {
		t.Fatalf("expected edited text, got %q", got)
	}
	if got := m.State().Tasks[0].Text; got != "Buy oat milk" {
		t.Fatalf("expected edited text in model, got %q", got)
	}
}

func TestDeleteRemovesTask(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", "Buy milk", false)
	m := started(t, svc)

	m = send(m, tea.KeyMsg{Type: tea.KeyDown})
	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})

	if len(svc.Tasks()) != 0 || len(m.State().Tasks) != 0 {
		t.Fatalf("expected task deleted")
	}
	if m.focus != focusInput {
		t.Fatalf("expected focus back on input when list is empty")
	}
}

func TestRemoteChangeRearmsFeed(t *testing.T) {
	svc := testutil.NewFakeService()
	m := started(t, svc)
	if m.feed == nil {
		t.Fatalf("expected feed to be open")
	}

	rec := service.Task{ID: "x", Text: "elsewhere", CreatedAt: time.Now()}
	next, cmd := m.Update(tasklist.RemoteChange{Event: service.ChangeEvent{Type: service.ChangeInsert, Record: &rec}})
	m = next.(Model)
	if len(m.State().Tasks) != 1 {
		t.Fatalf("expected remote insert applied")
	}
	if cmd == nil {
		t.Fatalf("expected a command waiting for the next event")
	}
}

func TestWaitForEventClosedFeed(t *testing.T) {
	ch := make(chan service.ChangeEvent)
	close(ch)
	msg := waitForEvent(ch)()
	lost, ok := msg.(tasklist.FeedLost)
	if !ok || !errors.Is(lost.Err, errFeedClosed) {
		t.Fatalf("expected FeedLost, got %#v", msg)
	}
	if waitForEvent(nil) != nil {
		t.Fatalf("expected nil command for nil feed")
	}
}

func TestNoFeedIsSilent(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SubscribeErr = service.ErrNoFeed
	m := started(t, svc)
	if m.toast != "" {
		t.Fatalf("expected no toast, got %q", m.toast)
	}
	if m.State().Watching {
		t.Fatalf("expected watching off")
	}
}
