package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mytodo/internal/service"
)

type taskRow struct {
	ID        string `db:"id"`
	Text      string `db:"text"`
	Completed bool   `db:"completed"`
	CreatedAt string `db:"created_at"`
}

func (r taskRow) toTask() (service.Task, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return service.Task{}, fmt.Errorf("parsing created_at of task %s: %w", r.ID, err)
	}
	return service.Task{ID: r.ID, Text: r.Text, Completed: r.Completed, CreatedAt: created}, nil
}

// TaskPatch lists the fields to change; nil fields are left alone.
type TaskPatch struct {
	Completed *bool
	Text      *string
}

// ListTasks returns the user's tasks ordered by created_at ascending.
func (s *DB) ListTasks(ctx context.Context, userID string) ([]service.Task, error) {
	var rows []taskRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, text, completed, created_at FROM tasks
		WHERE user_id = ?
		ORDER BY created_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	tasks := make([]service.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.toTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// GetTask returns one of the user's tasks.
func (s *DB) GetTask(ctx context.Context, userID, id string) (service.Task, error) {
	var r taskRow
	err := s.db.GetContext(ctx, &r,
		"SELECT id, text, completed, created_at FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return service.Task{}, ErrNotFound
	}
	if err != nil {
		return service.Task{}, fmt.Errorf("getting task %s: %w", id, err)
	}
	return r.toTask()
}

// InsertTask creates a task for the user. A UUID is generated if id is empty.
func (s *DB) InsertTask(ctx context.Context, userID, id, text string) (service.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return service.Task{}, fmt.Errorf("task text must not be empty: %w", ErrInvalidInput)
	}
	if id == "" {
		id = uuid.NewString()
	}

	t := service.Task{ID: id, Text: text, CreatedAt: s.now().UTC()}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks (id, user_id, text, completed, created_at) VALUES (?, ?, ?, 0, ?)",
		t.ID, userID, t.Text, formatTime(t.CreatedAt))
	if isUniqueViolation(err) {
		return service.Task{}, ErrConflict
	}
	if err != nil {
		return service.Task{}, fmt.Errorf("creating task: %w", err)
	}
	return s.GetTask(ctx, userID, t.ID)
}

// UpdateTask applies a patch to one of the user's tasks and returns the result.
func (s *DB) UpdateTask(ctx context.Context, userID, id string, p TaskPatch) (service.Task, error) {
	var sets []string
	var args []any
	if p.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, *p.Completed)
	}
	if p.Text != nil {
		text := strings.TrimSpace(*p.Text)
		if text == "" {
			return service.Task{}, fmt.Errorf("task text must not be empty: %w", ErrInvalidInput)
		}
		sets = append(sets, "text = ?")
		args = append(args, text)
	}
	if len(sets) == 0 {
		return s.GetTask(ctx, userID, id)
	}

	args = append(args, id, userID)
	res, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?", args...)
	if err != nil {
		return service.Task{}, fmt.Errorf("updating task %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return service.Task{}, ErrNotFound
	}
	return s.GetTask(ctx, userID, id)
}

// DeleteTask removes one of the user's tasks.
func (s *DB) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
