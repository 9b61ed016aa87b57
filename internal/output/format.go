// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"mytodo/internal/level"
	"mytodo/internal/service"
)

// TimeLayout is the display format for created-at timestamps.
const TimeLayout = "2006/01/02 15:04"

// Location is the zone timestamps are shown in.
var Location = time.Local

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TEXT}  {CREATED}\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	mark := "[ ]"
	if task.Completed {
		mark = "[x]"
	}
	fmt.Fprintf(w, "%4d  %s %s  %s\n", num, mark, normalizeText(task.Text), FormatTime(task.CreatedAt))
}

// FormatTime renders t with TimeLayout in Location.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(Location).Format(TimeLayout)
}

// LevelBar renders progress as five cells.
func LevelBar(progress int) string {
	filled := progress / 20
	if filled < 0 {
		filled = 0
	}
	if filled > 5 {
		filled = 5
	}
	return strings.Repeat("■", filled) + strings.Repeat("□", 5-filled)
}

// FormatLevel writes the one-line level summary.
func FormatLevel(w io.Writer, st level.Status) {
	fmt.Fprintf(w, "Lv.%d %s  %s %d%%  (%d completed)\n", st.Level, st.Title, LevelBar(st.Progress), st.Progress, st.Completed)
}

// FormatCelebration writes the completion banner, with a level-up line when
// the level changed.
func FormatCelebration(w io.Writer, taskText string, st level.Status, leveledUp bool) {
	fmt.Fprintf(w, "🎉 完了: %s\n", normalizeText(taskText))
	if leveledUp {
		fmt.Fprintf(w, "⭐ レベルアップ！ Lv.%d %s\n", st.Level, st.Title)
	}
}

// normalizeText normalizes task text for display.
// - Empty or whitespace-only text becomes "(untitled)"
// - Newlines are replaced with spaces
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
