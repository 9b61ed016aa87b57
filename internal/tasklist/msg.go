package tasklist

import (
	"github.com/google/uuid"

	"mytodo/internal/service"
)

// Msg is an input to Update: a user intent, a remote result, or a feed event.
type Msg interface{ isMsg() }

// SessionChanged switches between signed-out (nil) and signed-in.
type SessionChanged struct{ Session *service.Session }

// Reload re-fetches the whole collection.
type Reload struct{}

type Loaded struct{ Tasks []service.Task }
type LoadFailed struct{ Err error }

// Add creates a task. ID is chosen by the client; see AddText.
type Add struct {
	ID   string
	Text string
}

// AddText returns an Add with a fresh client id.
func AddText(text string) Add {
	return Add{ID: uuid.NewString(), Text: text}
}

type AddSucceeded struct{ Task service.Task }
type AddFailed struct {
	ID  string
	Err error
}

type Remove struct{ ID string }
type RemoveSucceeded struct{ ID string }
type RemoveFailed struct {
	ID  string
	Err error
}

type Toggle struct{ ID string }
// ToggleSucceeded carries the confirmed record and the completion state the
// toggle started from, since a feed echo may already have replaced it.
type ToggleSucceeded struct {
	Task         service.Task
	WasCompleted bool
}
type ToggleFailed struct {
	ID  string
	Err error
}

type Edit struct {
	ID   string
	Text string
}
type EditSucceeded struct{ Task service.Task }
type EditFailed struct {
	ID  string
	Err error
}

// RemoteChange carries one change-feed event.
type RemoteChange struct{ Event service.ChangeEvent }

// FeedLost reports that the change feed closed or failed.
type FeedLost struct{ Err error }

type SetFilter struct{ Filter Filter }

// PraiseReceived carries the praise text, already replaced by the fallback on failure.
type PraiseReceived struct{ Text string }

func (SessionChanged) isMsg()  {}
func (Reload) isMsg()          {}
func (Loaded) isMsg()          {}
func (LoadFailed) isMsg()      {}
func (Add) isMsg()             {}
func (AddSucceeded) isMsg()    {}
func (AddFailed) isMsg()       {}
func (Remove) isMsg()          {}
func (RemoveSucceeded) isMsg() {}
func (RemoveFailed) isMsg()    {}
func (Toggle) isMsg()          {}
func (ToggleSucceeded) isMsg() {}
func (ToggleFailed) isMsg()    {}
func (Edit) isMsg()            {}
func (EditSucceeded) isMsg()   {}
func (EditFailed) isMsg()      {}
func (RemoteChange) isMsg()    {}
func (FeedLost) isMsg()        {}
func (SetFilter) isMsg()       {}
func (PraiseReceived) isMsg()  {}
