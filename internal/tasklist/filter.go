package tasklist

import (
	"fmt"
	"strings"

	"mytodo/internal/service"
)

// Filter selects which tasks are visible.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists every filter in tab order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

var labels = map[Filter]string{
	FilterAll:       "すべて",
	FilterActive:    "未完了",
	FilterCompleted: "完了",
}

// EmptyMessages is shown when a filter matches nothing.
var EmptyMessages = map[Filter]string{
	FilterAll:       "no tasks",
	FilterActive:    "no active tasks",
	FilterCompleted: "no completed tasks",
}

// ParseFilter parses a filter name. Empty input means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("invalid filter: %s (want all, active or completed)", s)
	}
}

// Label returns the tab label for the filter.
func (f Filter) Label() string {
	if l, ok := labels[f]; ok {
		return l
	}
	return string(f)
}

// EmptyMessage returns the empty-state message for the filter.
func (f Filter) EmptyMessage() string {
	if m, ok := EmptyMessages[f]; ok {
		return m
	}
	return EmptyMessages[FilterAll]
}

// Next returns the filter after f in tab order, wrapping around.
func (f Filter) Next() Filter {
	for i, c := range Filters {
		if c == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

// Match reports whether a task passes the filter.
func (f Filter) Match(t service.Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Visible projects tasks through the filter, preserving order.
func Visible(tasks []service.Task, f Filter) []service.Task {
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// CompletedCount returns the number of completed tasks.
func CompletedCount(tasks []service.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Completed {
			n++
		}
	}
	return n
}
