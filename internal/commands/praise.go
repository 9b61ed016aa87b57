package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"mytodo/internal/backend"
	"mytodo/internal/backend/remote"
	"mytodo/internal/config"
	"mytodo/internal/exitcode"
	"mytodo/internal/level"
	"mytodo/internal/praise"
	"mytodo/internal/service"
)

func init() {
	Register(&PraiseCmd{})
}

// PraiseCmd asks for a congratulation without touching the task collection.
type PraiseCmd struct {
	title string
}

func (c *PraiseCmd) Name() string      { return "praise" }
func (c *PraiseCmd) Aliases() []string { return nil }
func (c *PraiseCmd) Synopsis() string  { return "Ask for praise for a finished task" }
func (c *PraiseCmd) Usage() string     { return "mytodo praise [--title <title>] <text...>" }
func (c *PraiseCmd) NeedsAuth() bool   { return false }

func (c *PraiseCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.title, "title", level.DefaultTitle, "")
}

func (c *PraiseCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		fmt.Fprintln(errOut, "error: text required")
		return exitcode.UserError
	}
	title := c.title
	if strings.TrimSpace(title) == "" {
		title = level.DefaultTitle
	}

	// The praise endpoint is public, so the remote backend needs no token here.
	var p interface {
		Praise(ctx context.Context, taskText, levelTitle string) (string, error)
	}
	if cfg.Backend == config.BackendLocal {
		p = backend.Praiser(ctx, cfg)
	} else {
		p = remote.New(cfg.ServerURL, "")
	}

	msg, err := p.Praise(ctx, text, title)
	if err != nil || msg == "" {
		slog.Debug("praise failed, using fallback", "error", err)
		msg = praise.Fallback
	}
	fmt.Fprintln(out, msg)
	return exitcode.Success
}
