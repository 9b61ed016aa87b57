package tasklist

import "mytodo/internal/level"

// Effect is an intent returned by Update for the shell to execute.
// Remote effects report back with the matching *Succeeded / *Failed Msg.
type Effect interface{ isEffect() }

type LoadTasks struct{}

type InsertTask struct {
	ID   string
	Text string
}

type DeleteTask struct{ ID string }

type SetCompleted struct {
	ID        string
	Completed bool
}

type SetText struct {
	ID   string
	Text string
}

// WatchChanges starts the change feed; StopWatching ends it.
type WatchChanges struct{}
type StopWatching struct{}

// ClearInput empties the add input after a successful add.
type ClearInput struct{}

// NoticeKind classifies a notification.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeError
)

type Notify struct {
	Kind    NoticeKind
	Message string
}

// Celebrate is emitted when this session completes a task.
type Celebrate struct {
	TaskText  string
	Status    level.Status
	LeveledUp bool
}

type RequestPraise struct {
	TaskText   string
	LevelTitle string
}

func (LoadTasks) isEffect()     {}
func (InsertTask) isEffect()    {}
func (DeleteTask) isEffect()    {}
func (SetCompleted) isEffect()  {}
func (SetText) isEffect()       {}
func (WatchChanges) isEffect()  {}
func (StopWatching) isEffect()  {}
func (ClearInput) isEffect()    {}
func (Notify) isEffect()        {}
func (Celebrate) isEffect()     {}
func (RequestPraise) isEffect() {}
