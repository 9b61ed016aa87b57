// Package backend opens the service.Service selected by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"mytodo/internal/backend/localfile"
	"mytodo/internal/backend/remote"
	"mytodo/internal/config"
	"mytodo/internal/credential"
	"mytodo/internal/praise"
	"mytodo/internal/service"
)

// Open returns the remote backend authenticated with the stored session
// token, or the local JSON file backend when cfg.Backend is "local".
func Open(ctx context.Context, cfg *config.Config) (service.Service, error) {
	if cfg.Backend == config.BackendLocal {
		return localfile.Open(cfg.LocalTasksPath(), Praiser(ctx, cfg))
	}

	token, err := cfg.Credentials().Token()
	if errors.Is(err, credential.ErrNotFound) {
		return nil, fmt.Errorf("not logged in: %w", service.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("reading session token: %w", err)
	}

	// The oauth2 transport attaches "Authorization: Bearer <token>" to every request.
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return remote.NewWithHTTPClient(cfg.ServerURL, "", oauth2.NewClient(ctx, src)), nil
}

// Praiser returns a praise client that calls Gemini directly. Without
// gemini.api_key every call fails and callers fall back.
func Praiser(ctx context.Context, cfg *config.Config) *praise.Client {
	var gen praise.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := praise.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("gemini client unavailable", "error", err)
		} else {
			gen = g
		}
	}
	return praise.New(gen, cfg.PraiseTimeout, slog.Default())
}
