package commands

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mytodo/internal/config"
)

func testStack(t *testing.T) *serveStack {
	t.Helper()
	cfg := &config.Config{
		Dir:    t.TempDir(),
		DBPath: filepath.Join(t.TempDir(), "nested", "mytodo.db"),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	stack, err := newServeStack(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("newServeStack: %v", err)
	}
	t.Cleanup(func() { stack.db.Close() })
	return stack
}

func TestNewServeStack(t *testing.T) {
	stack := testStack(t)

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/tasks", http.StatusUnauthorized},
		{http.MethodGet, "/api/session", http.StatusUnauthorized},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		stack.handler.ServeHTTP(rec, httptest.NewRequest(c.method, c.path, nil))
		if rec.Code != c.want {
			t.Errorf("%s %s: expected %d, got %d", c.method, c.path, c.want, rec.Code)
		}
	}
}

func TestServeShutdownEndsEventStreams(t *testing.T) {
	stack := testStack(t)
	ctx := context.Background()

	user, err := stack.db.UpsertUser(ctx, "octocat")
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	token, err := stack.db.CreateSession(ctx, user.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	ts := httptest.NewUnstartedServer(nil)
	ts.Config = newHTTPServer("", stack)
	ts.Start()
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/tasks/events", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("opening event stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil || !strings.HasPrefix(line, ": connected") {
		t.Fatalf("expected connected comment, got %q (%v)", line, err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	start := time.Now()
	if err := ts.Config.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown with an open stream: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("shutdown took %v", elapsed)
	}
}
