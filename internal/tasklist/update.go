// Package tasklist holds the client-side task store: an application-state
// Model and a pure Update function that turns messages into a new Model
// plus effect intents. Shells (CLI runner, terminal UI, MCP server) execute
// the effects and feed results back as messages.
package tasklist

import (
	"fmt"
	"sort"
	"strings"

	"mytodo/internal/level"
	"mytodo/internal/service"
)

// Model is the application state of one client session.
type Model struct {
	Session *service.Session
	Tasks   []service.Task
	Filter  Filter

	// Adding is set while an insert is outstanding; further adds are refused.
	Adding   bool
	Loading  bool
	Watching bool

	Notice string
	Praise string
}

// New returns a signed-out model showing all tasks.
func New() Model {
	return Model{Filter: FilterAll}
}

// SignedIn reports whether a session is present.
func (m Model) SignedIn() bool { return m.Session != nil }

// Visible returns the tasks passing the current filter.
func (m Model) Visible() []service.Task { return Visible(m.Tasks, m.Filter) }

// Level returns the gamification status for the current collection.
func (m Model) Level() level.Status { return level.Compute(CompletedCount(m.Tasks)) }

// Find returns the task with the given id.
func (m Model) Find(id string) (service.Task, bool) {
	if i := m.indexOf(id); i >= 0 {
		return m.Tasks[i], true
	}
	return service.Task{}, false
}

func (m Model) indexOf(id string) int {
	for i, t := range m.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Update applies msg to m. It never mutates the caller's slices.
func Update(m Model, msg Msg) (Model, []Effect) {
	if s, ok := msg.(SessionChanged); ok {
		return sessionChanged(m, s)
	}
	if !m.SignedIn() {
		return m, nil
	}

	switch msg := msg.(type) {
	case Reload:
		m.Loading = true
		return m, []Effect{LoadTasks{}}

	case Loaded:
		m.Loading = false
		m.Tasks = sortedByCreated(msg.Tasks)
		return m, nil

	case LoadFailed:
		m.Loading = false
		return notify(m, NoticeError, "failed to load tasks: %v", msg.Err)

	case Add:
		if m.Adding || msg.ID == "" {
			return m, nil
		}
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			return m, nil
		}
		m.Adding = true
		return m, []Effect{InsertTask{ID: msg.ID, Text: text}}

	case AddSucceeded:
		m.Adding = false
		m.Tasks = upsert(m.Tasks, msg.Task)
		return m, []Effect{ClearInput{}}

	case AddFailed:
		m.Adding = false
		return notify(m, NoticeError, "failed to add task: %v", msg.Err)

	case Remove:
		if m.indexOf(msg.ID) < 0 {
			return m, nil
		}
		return m, []Effect{DeleteTask{ID: msg.ID}}

	case RemoveSucceeded:
		m.Tasks = without(m.Tasks, msg.ID)
		return m, nil

	case RemoveFailed:
		return notify(m, NoticeError, "failed to delete task: %v", msg.Err)

	case Toggle:
		t, ok := m.Find(msg.ID)
		if !ok {
			return m, nil
		}
		return m, []Effect{SetCompleted{ID: t.ID, Completed: !t.Completed}}

	case ToggleSucceeded:
		return toggled(m, msg)

	case ToggleFailed:
		return notify(m, NoticeError, "failed to update task: %v", msg.Err)

	case Edit:
		if m.indexOf(msg.ID) < 0 {
			return m, nil
		}
		return m, []Effect{SetText{ID: msg.ID, Text: msg.Text}}

	case EditSucceeded:
		m.Tasks = replace(m.Tasks, msg.Task)
		return m, nil

	case EditFailed:
		return notify(m, NoticeError, "failed to edit task: %v", msg.Err)

	case RemoteChange:
		m.Tasks = applyChange(m.Tasks, msg.Event)
		return m, nil

	case FeedLost:
		m.Watching = false
		if msg.Err == nil {
			return m, nil
		}
		return notify(m, NoticeError, "change feed lost: %v", msg.Err)

	case SetFilter:
		if f, err := ParseFilter(string(msg.Filter)); err == nil {
			m.Filter = f
		}
		return m, nil

	case PraiseReceived:
		m.Praise = msg.Text
		return m, nil
	}
	return m, nil
}

func sessionChanged(m Model, msg SessionChanged) (Model, []Effect) {
	if msg.Session == nil {
		wasWatching := m.Watching
		m = Model{Filter: m.Filter}
		if wasWatching {
			return m, []Effect{StopWatching{}}
		}
		return m, nil
	}
	m.Session = msg.Session
	m.Loading = true
	m.Watching = true
	return m, []Effect{LoadTasks{}, WatchChanges{}}
}

// toggled applies a confirmed completion change. Celebration only follows
// this session's own toggles that land on completed. The count before the
// toggle is derived from msg.WasCompleted, not from the collection, which
// a feed echo may have updated first.
func toggled(m Model, msg ToggleSucceeded) (Model, []Effect) {
	t := msg.Task
	m.Tasks = replace(m.Tasks, t)
	if !t.Completed || msg.WasCompleted {
		return m, nil
	}
	after := CompletedCount(m.Tasks)
	before := after - 1
	st := level.Compute(after)
	return m, []Effect{
		Celebrate{TaskText: t.Text, Status: st, LeveledUp: level.LeveledUp(before, after)},
		RequestPraise{TaskText: t.Text, LevelTitle: st.Title},
	}
}

func notify(m Model, kind NoticeKind, format string, args ...any) (Model, []Effect) {
	m.Notice = fmt.Sprintf(format, args...)
	return m, []Effect{Notify{Kind: kind, Message: m.Notice}}
}

func applyChange(tasks []service.Task, ev service.ChangeEvent) []service.Task {
	switch ev.Type {
	case service.ChangeInsert:
		if ev.Record != nil {
			return upsert(tasks, *ev.Record)
		}
	case service.ChangeUpdate:
		if ev.Record != nil {
			return replace(tasks, *ev.Record)
		}
	case service.ChangeDelete:
		return without(tasks, ev.TaskID())
	}
	return tasks
}

// upsert replaces the record with t.ID in place, or appends t.
func upsert(tasks []service.Task, t service.Task) []service.Task {
	for i := range tasks {
		if tasks[i].ID == t.ID {
			return replace(tasks, t)
		}
	}
	out := make([]service.Task, len(tasks), len(tasks)+1)
	copy(out, tasks)
	return append(out, t)
}

// replace swaps the record with t.ID; absent ids leave tasks unchanged.
func replace(tasks []service.Task, t service.Task) []service.Task {
	for i := range tasks {
		if tasks[i].ID == t.ID {
			out := make([]service.Task, len(tasks))
			copy(out, tasks)
			out[i] = t
			return out
		}
	}
	return tasks
}

func without(tasks []service.Task, id string) []service.Task {
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func sortedByCreated(tasks []service.Task) []service.Task {
	out := make([]service.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
