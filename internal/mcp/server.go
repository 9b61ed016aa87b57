// Package mcp exposes the task collection as Model Context Protocol tools.
package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"mytodo/internal/app"
)

const serverInstructions = `Tools for a personal task list.
Use list_tasks first to see ids. toggle_task flips completion; completing a
task returns the new level and a short praise message.`

// Config contains server configuration.
type Config struct {
	Runner  *app.Runner
	Version string
	Logger  *slog.Logger
}

// NewServer creates an MCP server whose tools drive runner.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "mytodo",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger))
	registerTools(server, cfg.Runner)
	return server
}

// ServeStdio runs the server on stdin/stdout until ctx is cancelled or the
// client disconnects.
func ServeStdio(ctx context.Context, server *sdkmcp.Server) error {
	return server.Run(ctx, &sdkmcp.StdioTransport{})
}
