// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"mytodo/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int
	clock  time.Time
	feed   chan service.ChangeEvent

	// Login is returned by Whoami.
	Login string

	// PraiseText is returned by Praise when PraiseErr is nil.
	PraiseText string

	// Error injection for testing
	WhoamiErr       error
	ListErr         error
	InsertErr       error
	SetCompletedErr error
	SetTextErr      error
	DeleteErr       error
	SubscribeErr    error
	PraiseErr       error
}

// NewFakeService creates an empty FakeService signed in as "octocat".
func NewFakeService() *FakeService {
	return &FakeService{
		Login:      "octocat",
		PraiseText: "よくできました！",
		clock:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		feed:       make(chan service.ChangeEvent, 16),
	}
}

func (f *FakeService) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

// AddTask adds a task directly, bypassing error injection.
func (f *FakeService) AddTask(id, text string, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{ID: id, Text: text, Completed: completed, CreatedAt: f.tick()}
	f.tasks = append(f.tasks, t)
	return t
}

// Tasks returns a snapshot of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Task(nil), f.tasks...)
}

// Emit pushes a change event to subscribers.
func (f *FakeService) Emit(ev service.ChangeEvent) {
	f.feed <- ev
}

// CloseFeed ends the change feed.
func (f *FakeService) CloseFeed() {
	close(f.feed)
}

// Whoami implements service.Service.
func (f *FakeService) Whoami(ctx context.Context) (service.Session, error) {
	if f.WhoamiErr != nil {
		return service.Session{}, f.WhoamiErr
	}
	return service.Session{Login: f.Login}, nil
}

// List implements service.Service.
func (f *FakeService) List(ctx context.Context) ([]service.Task, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Tasks(), nil
}

// Insert implements service.Service.
func (f *FakeService) Insert(ctx context.Context, id, text string) (service.Task, error) {
	if f.InsertErr != nil {
		return service.Task{}, f.InsertErr
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return service.Task{}, fmt.Errorf("empty text: %w", service.ErrInvalidInput)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == "" {
		f.nextID++
		id = fmt.Sprintf("t%d", f.nextID)
	}
	t := service.Task{ID: id, Text: text, CreatedAt: f.tick()}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// SetCompleted implements service.Service.
func (f *FakeService) SetCompleted(ctx context.Context, id string, completed bool) (service.Task, error) {
	if f.SetCompletedErr != nil {
		return service.Task{}, f.SetCompletedErr
	}
	return f.modify(id, func(t *service.Task) { t.Completed = completed })
}

// SetText implements service.Service.
func (f *FakeService) SetText(ctx context.Context, id, text string) (service.Task, error) {
	if f.SetTextErr != nil {
		return service.Task{}, f.SetTextErr
	}
	return f.modify(id, func(t *service.Task) { t.Text = text })
}

// Delete implements service.Service.
func (f *FakeService) Delete(ctx context.Context, id string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

// Subscribe implements service.Service. Events come from Emit.
func (f *FakeService) Subscribe(ctx context.Context) (<-chan service.ChangeEvent, error) {
	if f.SubscribeErr != nil {
		return nil, f.SubscribeErr
	}
	return f.feed, nil
}

// Praise implements service.Service.
func (f *FakeService) Praise(ctx context.Context, taskText, levelTitle string) (string, error) {
	if f.PraiseErr != nil {
		return "", f.PraiseErr
	}
	return f.PraiseText, nil
}

func (f *FakeService) modify(id string, fn func(*service.Task)) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			fn(&f.tasks[i])
			return f.tasks[i], nil
		}
	}
	return service.Task{}, service.ErrNotFound
}
