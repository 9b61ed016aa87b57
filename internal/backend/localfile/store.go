// Package localfile implements service.Service on a JSON file, for use
// without a server. It has no change feed.
package localfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mytodo/internal/service"
)

// LocalLogin is the identity reported by Whoami.
const LocalLogin = "local"

// Praiser generates praise. *praise.Client satisfies it.
type Praiser interface {
	Praise(ctx context.Context, taskText, levelTitle string) (string, error)
}

type fileState struct {
	Todos []service.Task `json:"todos"`
}

// Store keeps the collection in memory and rewrites the file on each change.
type Store struct {
	mu     sync.Mutex
	path   string
	tasks  []service.Task
	praise Praiser
	now    func() time.Time
}

// Open loads the collection at path. A missing or empty file is an empty collection.
func Open(path string, p Praiser) (*Store, error) {
	s := &Store{path: path, praise: p, now: time.Now}

	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(raw))) > 0 {
		var st fileState
		if err := json.Unmarshal(raw, &st); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		s.tasks = st.Todos
	}
	return s, nil
}

// Whoami implements service.Service.
func (s *Store) Whoami(ctx context.Context) (service.Session, error) {
	return service.Session{Login: LocalLogin}, nil
}

// List implements service.Service.
func (s *Store) List(ctx context.Context) ([]service.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]service.Task(nil), s.tasks...), nil
}

// Insert implements service.Service.
func (s *Store) Insert(ctx context.Context, id, text string) (service.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return service.Task{}, fmt.Errorf("task text must not be empty: %w", service.ErrInvalidInput)
	}
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) >= 0 {
		return service.Task{}, fmt.Errorf("id %s already exists: %w", id, service.ErrInvalidInput)
	}
	t := service.Task{ID: id, Text: text, CreatedAt: s.now().UTC()}
	next := append(append([]service.Task(nil), s.tasks...), t)
	if err := s.persist(next); err != nil {
		return service.Task{}, err
	}
	return t, nil
}

// SetCompleted implements service.Service.
func (s *Store) SetCompleted(ctx context.Context, id string, completed bool) (service.Task, error) {
	return s.modify(id, func(t *service.Task) error {
		t.Completed = completed
		return nil
	})
}

// SetText implements service.Service.
func (s *Store) SetText(ctx context.Context, id, text string) (service.Task, error) {
	return s.modify(id, func(t *service.Task) error {
		text = strings.TrimSpace(text)
		if text == "" {
			return fmt.Errorf("task text must not be empty: %w", service.ErrInvalidInput)
		}
		t.Text = text
		return nil
	})
}

// Delete implements service.Service.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return service.ErrNotFound
	}
	next := append(append([]service.Task(nil), s.tasks[:i]...), s.tasks[i+1:]...)
	return s.persist(next)
}

// Subscribe implements service.Service. There is no feed for a local file.
func (s *Store) Subscribe(ctx context.Context) (<-chan service.ChangeEvent, error) {
	return nil, service.ErrNoFeed
}

// Praise implements service.Service.
func (s *Store) Praise(ctx context.Context, taskText, levelTitle string) (string, error) {
	if s.praise == nil {
		return "", fmt.Errorf("praise unavailable without gemini.api_key")
	}
	return s.praise.Praise(ctx, taskText, levelTitle)
}

func (s *Store) modify(id string, fn func(*service.Task) error) (service.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return service.Task{}, service.ErrNotFound
	}
	next := append([]service.Task(nil), s.tasks...)
	if err := fn(&next[i]); err != nil {
		return service.Task{}, err
	}
	if err := s.persist(next); err != nil {
		return service.Task{}, err
	}
	return next[i], nil
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// persist writes tasks atomically and adopts them on success. Caller holds mu.
func (s *Store) persist(tasks []service.Task) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	payload, err := json.MarshalIndent(fileState{Todos: tasks}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	s.tasks = tasks
	return nil
}
