package localfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mytodo/internal/service"
)

var _ service.Service = (*Store)(nil)

type stubPraiser struct{ text string }

func (p stubPraiser) Praise(context.Context, string, string) (string, error) { return p.text, nil }

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.json")
	ctx := context.Background()

	s, err := Open(path, nil)
	require.NoError(t, err)

	a, err := s.Insert(ctx, "a", "Buy milk")
	require.NoError(t, err)
	_, err = s.Insert(ctx, "", "Walk dog")
	require.NoError(t, err)
	_, err = s.SetCompleted(ctx, a.ID, true)
	require.NoError(t, err)
	_, err = s.SetText(ctx, a.ID, "Buy oat milk")
	require.NoError(t, err)

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	list, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Buy oat milk", list[0].Text)
	require.True(t, list[0].Completed)

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err), "temp file must be renamed away")
}

func TestStore_Errors(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "tasks.json"), nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Insert(ctx, "", "  ")
	require.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = s.Insert(ctx, "a", "one")
	require.NoError(t, err)
	_, err = s.Insert(ctx, "a", "dup")
	require.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = s.SetCompleted(ctx, "missing", true)
	require.ErrorIs(t, err, service.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, "missing"), service.ErrNotFound)

	_, err = s.SetText(ctx, "a", "")
	require.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = s.Subscribe(ctx)
	require.True(t, errors.Is(err, service.ErrNoFeed))

	_, err = s.Praise(ctx, "one", "見習い")
	require.Error(t, err)
}

func TestStore_Delete(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "tasks.json"), stubPraiser{text: "えらい"})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Insert(ctx, "a", "one")
	require.NoError(t, err)
	_, err = s.Insert(ctx, "b", "two")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "a"))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "b", list[0].ID)

	msg, err := s.Praise(ctx, "two", "見習い")
	require.NoError(t, err)
	require.Equal(t, "えらい", msg)
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0600))
	_, err := Open(path, nil)
	require.Error(t, err)
}
