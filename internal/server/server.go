// Package server is the hosted side of mytodo: the per-user task API, its
// change feed, GitHub sign-in and the praise endpoint.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mytodo/internal/auth"
	"mytodo/internal/feed"
	"mytodo/internal/praise"
	"mytodo/internal/service"
	"mytodo/internal/storage"
)

// DefaultKeepalive is the interval between change-feed ping comments.
const DefaultKeepalive = 25 * time.Second

// Store is the persistence the server needs.
type Store interface {
	UserResolver
	UpsertUser(ctx context.Context, login string) (storage.User, error)
	CreateSession(ctx context.Context, userID string) (string, error)
	DeleteSession(ctx context.Context, token string) error
	ListTasks(ctx context.Context, userID string) ([]service.Task, error)
	InsertTask(ctx context.Context, userID, id, text string) (service.Task, error)
	UpdateTask(ctx context.Context, userID, id string, p storage.TaskPatch) (service.Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
}

// Config wires the server's collaborators.
type Config struct {
	Store  Store
	Broker *feed.Broker
	Praise *praise.Client

	// Provider is nil when GitHub sign-in is not configured.
	Provider auth.Provider
	States   *auth.StateStore

	Keepalive time.Duration
	Logger    *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	store     Store
	broker    *feed.Broker
	praise    *praise.Client
	provider  auth.Provider
	states    *auth.StateStore
	keepalive time.Duration
	logger    *slog.Logger
}

// New creates the HTTP router.
func New(cfg Config) *chi.Mux {
	s := &Server{
		store:     cfg.Store,
		broker:    cfg.Broker,
		praise:    cfg.Praise,
		provider:  cfg.Provider,
		states:    cfg.States,
		keepalive: cfg.Keepalive,
		logger:    cfg.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.broker == nil {
		s.broker = feed.NewBroker(0, s.logger)
	}
	if s.states == nil {
		s.states = auth.NewStateStore()
	}
	if s.praise == nil {
		s.praise = praise.New(nil, 0, s.logger)
	}
	if s.keepalive <= 0 {
		s.keepalive = DefaultKeepalive
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/health", s.handleHealth)
	r.Post("/api/praise", s.handlePraise)

	r.Get("/auth/github/login", s.handleLogin)
	r.Get("/auth/github/callback", s.handleCallback)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.store))

		r.Get("/api/session", s.handleSession)
		r.Delete("/api/session", s.handleLogout)

		r.Get("/api/tasks", s.handleListTasks)
		r.Post("/api/tasks", s.handleCreateTask)
		r.Get("/api/tasks/events", s.handleEvents)
		r.Patch("/api/tasks/{id}", s.handleUpdateTask)
		r.Delete("/api/tasks/{id}", s.handleDeleteTask)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start))
		})
	}
}
