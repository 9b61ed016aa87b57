package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mytodo/internal/app"
	"mytodo/internal/service"
	"mytodo/internal/tasklist"
)

var errFeedClosed = errors.New("connection closed")

// run executes one effect. Local effects change m; remote ones become
// commands whose result message re-enters Update.
func (m Model) run(eff tasklist.Effect) (Model, tea.Cmd) {
	switch e := eff.(type) {
	case tasklist.ClearInput:
		m.input.SetValue("")
		return m, nil

	case tasklist.Notify:
		return m.showToast(e.Message, e.Kind == tasklist.NoticeError)

	case tasklist.Celebrate:
		m.confetti = confettiFrames
		m.celebrated = e.TaskText
		m.state.Praise = ""
		text := fmt.Sprintf("🎉 「%s」完了！", e.TaskText)
		if e.LeveledUp {
			text = fmt.Sprintf("⭐ レベルアップ！ Lv.%d %s", e.Status.Level, e.Status.Title)
		}
		m, cmd := m.showToast(text, false)
		return m, tea.Batch(cmd, confettiCmd())

	case tasklist.WatchChanges:
		return m, m.subscribe()

	case tasklist.StopWatching:
		if m.stopFeed != nil {
			m.stopFeed()
			m.stopFeed = nil
		}
		m.feed = nil
		return m, nil
	}

	ctx, svc := m.ctx, m.svc
	return m, func() tea.Msg {
		return app.Execute(ctx, svc, eff)
	}
}

func (m Model) whoami() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		s, err := svc.Whoami(ctx)
		return sessionMsg{session: s, err: err}
	}
}

func (m Model) subscribe() tea.Cmd {
	parent, svc := m.ctx, m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		events, err := svc.Subscribe(ctx)
		if err != nil {
			cancel()
			return feedOpenedMsg{err: err}
		}
		return feedOpenedMsg{events: events, cancel: cancel}
	}
}

// waitForEvent blocks on the next feed event.
func waitForEvent(events <-chan service.ChangeEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return tasklist.FeedLost{Err: errFeedClosed}
		}
		return tasklist.RemoteChange{Event: ev}
	}
}

// feedError hides the absence of a feed, which is normal for the local backend.
func feedError(err error) error {
	if errors.Is(err, service.ErrNoFeed) {
		return nil
	}
	return err
}

func (m Model) showToast(text string, isErr bool) (Model, tea.Cmd) {
	m.toast = text
	m.toastErr = isErr
	m.toastSeq++
	seq := m.toastSeq
	return m, tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

func confettiCmd() tea.Cmd {
	return tea.Tick(confettiTick, func(time.Time) tea.Msg { return confettiMsg{} })
}
