// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"errors"
)

// Sentinel errors shared by every backend.
var (
	// ErrNotFound is returned when a task id does not exist for the session.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the session is missing, expired or revoked.
	ErrUnauthorized = errors.New("session expired or revoked (run: mytodo login)")

	// ErrInvalidInput is returned when a write is rejected before it reaches storage.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoFeed is returned by backends that have no change feed.
	ErrNoFeed = errors.New("change feed not supported")
)

// Service defines the interface for task backend operations.
// The remote backend talks to `mytodo serve`; the local backend keeps a JSON file.
// Commands never talk HTTP or touch files directly.
type Service interface {
	// Whoami returns the session owner. Local backends return a fixed identity.
	Whoami(ctx context.Context) (Session, error)

	// List returns all tasks ordered by CreatedAt ascending.
	List(ctx context.Context) ([]Task, error)

	// Insert creates a task with a client-chosen id and returns the stored record.
	Insert(ctx context.Context, id, text string) (Task, error)

	// SetCompleted sets the completion flag and returns the stored record.
	SetCompleted(ctx context.Context, id string, completed bool) (Task, error)

	// SetText replaces the text and returns the stored record.
	SetText(ctx context.Context, id, text string) (Task, error)

	// Delete removes a task.
	Delete(ctx context.Context, id string) error

	// Subscribe opens the change feed. The channel is closed when ctx is
	// cancelled or the feed drops. Returns ErrNoFeed if unsupported.
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)

	// Praise asks for a one-sentence congratulation for a completed task.
	Praise(ctx context.Context, taskText, levelTitle string) (string, error)
}
