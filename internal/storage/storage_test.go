package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func stepClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

func TestUpsertUser_Idempotent(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	u1, err := db.UpsertUser(ctx, "octocat")
	require.NoError(t, err)
	u2, err := db.UpsertUser(ctx, "octocat")
	require.NoError(t, err)
	require.Equal(t, u1, u2)

	_, err = db.UpsertUser(ctx, "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSessions(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	u, err := db.UpsertUser(ctx, "octocat")
	require.NoError(t, err)

	token, err := db.CreateSession(ctx, u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := db.SessionUser(ctx, token)
	require.NoError(t, err)
	require.Equal(t, u, got)

	_, err = db.SessionUser(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.DeleteSession(ctx, token))
	_, err = db.SessionUser(ctx, token)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, db.DeleteSession(ctx, token), ErrNotFound)
}

func TestTasks_CRUDScopedByUser(t *testing.T) {
	db := NewTestDB(t)
	db.SetClock(stepClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	alice, err := db.UpsertUser(ctx, "alice")
	require.NoError(t, err)
	bob, err := db.UpsertUser(ctx, "bob")
	require.NoError(t, err)

	first, err := db.InsertTask(ctx, alice.ID, "id-1", " Buy milk ")
	require.NoError(t, err)
	require.Equal(t, "Buy milk", first.Text)
	require.False(t, first.Completed)

	second, err := db.InsertTask(ctx, alice.ID, "", "Walk dog")
	require.NoError(t, err)
	require.NotEmpty(t, second.ID)

	_, err = db.InsertTask(ctx, bob.ID, "", "Bob's task")
	require.NoError(t, err)

	list, err := db.ListTasks(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "id-1", list[0].ID)
	require.True(t, list[0].CreatedAt.Before(list[1].CreatedAt))

	done := true
	updated, err := db.UpdateTask(ctx, alice.ID, "id-1", TaskPatch{Completed: &done})
	require.NoError(t, err)
	require.True(t, updated.Completed)
	require.Equal(t, "Buy milk", updated.Text)

	text := "Buy oat milk"
	updated, err = db.UpdateTask(ctx, alice.ID, "id-1", TaskPatch{Text: &text})
	require.NoError(t, err)
	require.Equal(t, "Buy oat milk", updated.Text)
	require.True(t, updated.Completed)

	// bob cannot see or touch alice's rows
	_, err = db.UpdateTask(ctx, bob.ID, "id-1", TaskPatch{Completed: &done})
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, db.DeleteTask(ctx, bob.ID, "id-1"), ErrNotFound)

	require.NoError(t, db.DeleteTask(ctx, alice.ID, "id-1"))
	list, err = db.ListTasks(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestInsertTask_Validation(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	u, err := db.UpsertUser(ctx, "octocat")
	require.NoError(t, err)

	_, err = db.InsertTask(ctx, u.ID, "", "   ")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = db.InsertTask(ctx, u.ID, "dup", "one")
	require.NoError(t, err)
	_, err = db.InsertTask(ctx, u.ID, "dup", "two")
	require.ErrorIs(t, err, ErrConflict)

	empty := ""
	_, err = db.UpdateTask(ctx, u.ID, "dup", TaskPatch{Text: &empty})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mytodo.db")
	ctx := context.Background()

	db, err := Open(path)
	require.NoError(t, err)
	u, err := db.UpsertUser(ctx, "octocat")
	require.NoError(t, err)
	_, err = db.InsertTask(ctx, u.ID, "", "persisted")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	list, err := db.ListTasks(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "persisted", list[0].Text)
}

func TestInsertTask_SameIDForDifferentUsers(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	alice, err := db.UpsertUser(ctx, "alice")
	require.NoError(t, err)
	bob, err := db.UpsertUser(ctx, "bob")
	require.NoError(t, err)

	_, err = db.InsertTask(ctx, alice.ID, "shared", "alice's")
	require.NoError(t, err)
	bobs, err := db.InsertTask(ctx, bob.ID, "shared", "bob's")
	require.NoError(t, err)
	require.Equal(t, "bob's", bobs.Text)

	require.NoError(t, db.DeleteTask(ctx, bob.ID, "shared"))
	got, err := db.GetTask(ctx, alice.ID, "shared")
	require.NoError(t, err)
	require.Equal(t, "alice's", got.Text)
}

func TestOpen_MigratesV1TasksToPerUserIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mytodo.db")
	raw, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(migrations[0].sql)
	require.NoError(t, err)
	_, err = raw.Exec("INSERT INTO users (id, login, created_at) VALUES ('u1', 'alice', '2026-01-01T00:00:00Z'), ('u2', 'bob', '2026-01-01T00:00:00Z')")
	require.NoError(t, err)
	_, err = raw.Exec("INSERT INTO tasks (id, user_id, text, completed, created_at) VALUES ('t1', 'u1', 'Buy milk', 1, '2026-01-01T00:00:01Z')")
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	list, err := db.ListTasks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Buy milk", list[0].Text)
	require.True(t, list[0].Completed)

	_, err = db.InsertTask(ctx, "u2", "t1", "Walk dog")
	require.NoError(t, err)
}
