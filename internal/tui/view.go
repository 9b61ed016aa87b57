package tui

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mytodo/internal/output"
	"mytodo/internal/tasklist"
)

var (
	colorAccent = lipgloss.Color("#7C3AED")
	colorMuted  = lipgloss.Color("#6B7280")
	colorError  = lipgloss.Color("#EF4444")
	colorOK     = lipgloss.Color("#10B981")

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted)
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(colorAccent)
	cursorStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	doneStyle      = lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true)
	toastStyle     = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
	toastErrStyle  = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	praiseStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1)
	levelStyle     = lipgloss.NewStyle().Bold(true)
)

var confettiPieces = []string{"🎉", "✨", "🎊", "⭐", "💫", "🌟"}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.state.SignedIn() {
		return mutedStyle.Render("connecting...") + "\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("mytodo"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s  (q: 終了)", m.state.Session.Login)))
	b.WriteString("\n\n")

	if m.confetti > 0 {
		b.WriteString(confettiLine(m.width))
		b.WriteString("\n")
	}

	b.WriteString(m.levelView())
	b.WriteString("\n\n")

	b.WriteString(m.inputView())
	b.WriteString("\n\n")

	b.WriteString(m.tabsView())
	b.WriteString("\n\n")

	b.WriteString(m.listView())

	if m.toast != "" {
		style := toastStyle
		if m.toastErr {
			style = toastErrStyle
		}
		b.WriteString("\n")
		b.WriteString(style.Render(m.toast))
		b.WriteString("\n")
	}
	if m.state.Praise != "" {
		b.WriteString("\n")
		b.WriteString(praiseStyle.Render("🤵 " + m.state.Praise))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("enter 追加 • tab 絞り込み • ↑/↓ 移動 • space 完了 • e 編集 • d 削除 • r 再読込"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) levelView() string {
	st := m.state.Level()
	head := levelStyle.Render(fmt.Sprintf("Lv.%d %s", st.Level, st.Title))
	return fmt.Sprintf("%s  %s %d%%  %s", head, m.bar.ViewAs(float64(st.Progress)/100), st.Progress,
		mutedStyle.Render(fmt.Sprintf("完了 %d", st.Completed)))
}

func (m Model) inputView() string {
	switch {
	case m.state.Adding:
		return mutedStyle.Render("送信中...")
	case m.editing != "":
		return "編集: " + m.input.View()
	}
	return m.input.View()
}

func (m Model) tabsView() string {
	tabs := make([]string, 0, len(tasklist.Filters))
	for _, f := range tasklist.Filters {
		style := tabStyle
		if f == m.state.Filter {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(f.Label()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) listView() string {
	if m.state.Loading && len(m.state.Tasks) == 0 {
		return mutedStyle.Render("loading...") + "\n"
	}
	visible := m.state.Visible()
	if len(visible) == 0 {
		return mutedStyle.Render(m.state.Filter.EmptyMessage()) + "\n"
	}

	var b strings.Builder
	for i, t := range visible {
		pointer := "  "
		if m.focus == focusList && i == m.cursor {
			pointer = cursorStyle.Render("▸ ")
		}
		box := "[ ]"
		text := t.Text
		if t.Completed {
			box = "[x]"
			text = doneStyle.Render(text)
		}
		fmt.Fprintf(&b, "%s%s %s  %s\n", pointer, box, text, mutedStyle.Render(output.FormatTime(t.CreatedAt)))
	}
	return b.String()
}

func confettiLine(width int) string {
	n := width / 3
	if n <= 0 || n > 24 {
		n = 24
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		if rand.IntN(3) == 0 {
			b.WriteString("  ")
			continue
		}
		b.WriteString(confettiPieces[rand.IntN(len(confettiPieces))])
	}
	return b.String()
}
