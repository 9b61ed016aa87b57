package service

import "time"

// Task represents a single task item.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// Session identifies the signed-in user.
type Session struct {
	Login string `json:"login"`
}

// ChangeKind is the type of a change-feed event.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeEvent is one server-pushed mutation of the task collection.
// Record carries the new value for inserts and updates; OldID the
// identifier of a deleted task.
type ChangeEvent struct {
	Type   ChangeKind `json:"type"`
	Record *Task      `json:"record,omitempty"`
	OldID  string     `json:"old_id,omitempty"`
}

// TaskID returns the id the event refers to regardless of kind.
func (e ChangeEvent) TaskID() string {
	if e.Record != nil {
		return e.Record.ID
	}
	return e.OldID
}
