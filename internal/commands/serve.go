package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"mytodo/internal/auth"
	"mytodo/internal/config"
	"mytodo/internal/exitcode"
	"mytodo/internal/feed"
	"mytodo/internal/praise"
	"mytodo/internal/server"
	"mytodo/internal/service"
	"mytodo/internal/storage"
)

const serveShutdownTimeout = 5 * time.Second

func init() {
	Register(&ServeCmd{})
}

// ServeCmd runs the hosted side: task API, change feed, sign-in and praise.
type ServeCmd struct {
	addr string
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Run the task server" }
func (c *ServeCmd) Usage() string     { return "mytodo serve [--addr <host:port>]" }
func (c *ServeCmd) NeedsAuth() bool   { return false }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	logger := slog.Default()

	stack, err := newServeStack(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	defer stack.db.Close()

	addr := c.addr
	if addr == "" {
		addr = cfg.ServerAddr
	}
	srv := newHTTPServer(addr, stack)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", "error", err)
		}
	}
	return exitcode.Success
}

// newHTTPServer wraps the stack's handler. Shutdown does not cancel request
// contexts, so closing the broker is what lets open event streams return.
func newHTTPServer(addr string, stack *serveStack) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           stack.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(stack.broker.Close)
	return srv
}

// serveStack is the wired server with the resources Run must release.
type serveStack struct {
	handler http.Handler
	broker  *feed.Broker
	db      *storage.DB
}

// newServeStack opens the database and wires the server's collaborators.
func newServeStack(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*serveStack, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	var gen praise.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := praise.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			db.Close()
			return nil, err
		}
		gen = g
	} else {
		logger.Warn("gemini.api_key not set; praise will use the fallback message")
	}

	var provider auth.Provider
	gh, err := auth.NewGitHub(auth.GitHubConfig{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  cfg.GitHubRedirectURL,
	})
	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		logger.Warn("github.client_id not set; sign-in disabled")
	case err != nil:
		db.Close()
		return nil, err
	default:
		provider = gh
	}

	broker := feed.NewBroker(feed.DefaultBuffer, logger)
	handler := server.New(server.Config{
		Store:     db,
		Broker:    broker,
		Praise:    praise.New(gen, cfg.PraiseTimeout, logger),
		Provider:  provider,
		States:    auth.NewStateStore(),
		Keepalive: cfg.FeedKeepalive,
		Logger:    logger,
	})
	return &serveStack{handler: handler, broker: broker, db: db}, nil
}
