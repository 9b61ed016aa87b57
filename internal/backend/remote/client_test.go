package remote

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mytodo/internal/praise"
	"mytodo/internal/server"
	"mytodo/internal/service"
	"mytodo/internal/storage"
)

var _ service.Service = (*Client)(nil)

type fixedGenerator struct {
	text string
	err  error
}

func (g fixedGenerator) GenerateText(context.Context, string) (string, error) { return g.text, g.err }

func newServer(t *testing.T, gen praise.Generator) (*httptest.Server, string) {
	t.Helper()
	db := storage.NewTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(server.New(server.Config{
		Store:     db,
		Praise:    praise.New(gen, time.Second, logger),
		Keepalive: 20 * time.Millisecond,
		Logger:    logger,
	}))
	t.Cleanup(srv.Close)

	u, err := db.UpsertUser(context.Background(), "octocat")
	require.NoError(t, err)
	tok, err := db.CreateSession(context.Background(), u.ID)
	require.NoError(t, err)
	return srv, tok
}

func TestClient_CRUD(t *testing.T) {
	srv, tok := newServer(t, nil)
	c := New(srv.URL+"/", tok)
	ctx := context.Background()

	who, err := c.Whoami(ctx)
	require.NoError(t, err)
	require.Equal(t, "octocat", who.Login)

	created, err := c.Insert(ctx, "id-1", "Buy milk")
	require.NoError(t, err)
	require.Equal(t, "id-1", created.ID)

	done, err := c.SetCompleted(ctx, "id-1", true)
	require.NoError(t, err)
	require.True(t, done.Completed)

	edited, err := c.SetText(ctx, "id-1", "Buy oat milk")
	require.NoError(t, err)
	require.Equal(t, "Buy oat milk", edited.Text)

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, c.Delete(ctx, "id-1"))
	require.ErrorIs(t, c.Delete(ctx, "id-1"), service.ErrNotFound)

	_, err = c.Insert(ctx, "id-2", "  ")
	require.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestClient_Unauthorized(t *testing.T) {
	srv, _ := newServer(t, nil)
	c := New(srv.URL, "revoked")

	_, err := c.List(context.Background())
	require.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = c.Subscribe(context.Background())
	require.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestClient_Logout(t *testing.T) {
	srv, tok := newServer(t, nil)
	c := New(srv.URL, tok)
	require.NoError(t, c.Logout(context.Background()))

	_, err := c.Whoami(context.Background())
	require.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestClient_Praise(t *testing.T) {
	srv, tok := newServer(t, fixedGenerator{text: "天才！"})
	msg, err := New(srv.URL, tok).Praise(context.Background(), "Buy milk", "見習い")
	require.NoError(t, err)
	require.Equal(t, "天才！", msg)

	srv, tok = newServer(t, fixedGenerator{err: errors.New("down")})
	msg, err = New(srv.URL, tok).Praise(context.Background(), "Buy milk", "見習い")
	require.Error(t, err)
	require.Equal(t, praise.Fallback, msg)
}

func TestClient_Subscribe(t *testing.T) {
	srv, tok := newServer(t, nil)
	c := New(srv.URL, tok)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := c.Subscribe(ctx)
	require.NoError(t, err)

	// the subscription is registered before the 200 is written
	_, err = c.Insert(context.Background(), "id-1", "Buy milk")
	require.NoError(t, err)
	require.NoError(t, c.Delete(context.Background(), "id-1"))

	ev := <-events
	require.Equal(t, service.ChangeInsert, ev.Type)
	require.Equal(t, "id-1", ev.Record.ID)
	ev = <-events
	require.Equal(t, service.ChangeDelete, ev.Type)
	require.Equal(t, "id-1", ev.OldID)

	cancel()
	for range events {
	}
}

func TestClient_Unreachable(t *testing.T) {
	c := NewWithHTTPClient("http://127.0.0.1:1", "tok", &http.Client{Timeout: time.Second})
	_, err := c.List(context.Background())
	require.ErrorContains(t, err, "cannot reach server")
}

func TestReadEvents(t *testing.T) {
	stream := strings.Join([]string{
		": connected",
		"",
		"event: change",
		`data: {"type":"insert","record":{"id":"a","text":"x","completed":false,"created_at":"2026-01-01T00:00:00Z"}}`,
		"",
		": ping",
		"",
		"event: other",
		`data: {"type":"delete","old_id":"ignored"}`,
		"",
		"event: change",
		"data: not json",
		"",
		"event: change",
		`data: {"type":"delete","old_id":"a"}`,
		"",
	}, "\n")

	out := make(chan service.ChangeEvent, 8)
	readEvents(context.Background(), bufio.NewScanner(strings.NewReader(stream)), out)
	close(out)

	var got []service.ChangeEvent
	for ev := range out {
		got = append(got, ev)
	}
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].Record.ID)
	require.Equal(t, "a", got[1].OldID)
}

func TestLoginURL(t *testing.T) {
	require.Equal(t,
		"http://localhost:8080/auth/github/login?redirect=http%3A%2F%2Flocalhost%3A8085%2Fcallback",
		LoginURL("http://localhost:8080/", "http://localhost:8085/callback"))
}
