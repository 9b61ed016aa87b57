package commands

import (
	"context"
	"flag"
	"io"

	"mytodo/internal/config"
	"mytodo/internal/exitcode"
	"mytodo/internal/output"
	"mytodo/internal/service"
)

func init() {
	Register(&LevelCmd{})
}

// LevelCmd prints the gamification status.
type LevelCmd struct{}

func (c *LevelCmd) Name() string      { return "level" }
func (c *LevelCmd) Aliases() []string { return nil }
func (c *LevelCmd) Synopsis() string  { return "Show level, title and progress" }
func (c *LevelCmd) Usage() string     { return "mytodo level" }
func (c *LevelCmd) NeedsAuth() bool   { return true }

func (c *LevelCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LevelCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	r, code := startRunner(ctx, svc, errOut)
	if r == nil {
		return code
	}
	output.FormatLevel(out, r.Model().Level())
	return exitcode.Success
}
