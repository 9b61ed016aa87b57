package commands

import (
	"context"
	"flag"
	"io"
	"log/slog"

	"mytodo/internal/app"
	"mytodo/internal/config"
	"mytodo/internal/exitcode"
	"mytodo/internal/mcp"
	"mytodo/internal/service"
)

func init() {
	Register(&MCPCmd{})
}

// MCPCmd serves the task tools over MCP on stdin/stdout. Logs go to stderr
// so they never mix with protocol frames.
type MCPCmd struct{}

func (c *MCPCmd) Name() string      { return "mcp" }
func (c *MCPCmd) Aliases() []string { return nil }
func (c *MCPCmd) Synopsis() string  { return "Serve task tools over MCP (stdio)" }
func (c *MCPCmd) Usage() string     { return "mytodo mcp" }
func (c *MCPCmd) NeedsAuth() bool   { return true }

func (c *MCPCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MCPCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	runner := app.NewRunner(svc, slog.Default())
	runner.Follow = true
	if err := runner.Start(ctx); err != nil {
		return fail(errOut, err)
	}
	defer runner.Close()

	server := mcp.NewServer(mcp.Config{Runner: runner, Version: Version, Logger: slog.Default()})
	if err := mcp.ServeStdio(ctx, server); err != nil && ctx.Err() == nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}
