package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"mytodo/internal/backend/remote"
	"mytodo/internal/config"
	"mytodo/internal/exitcode"
	"mytodo/internal/service"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Revoke and remove the stored session" }
func (c *LogoutCmd) Usage() string     { return "mytodo logout [common flags]" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	creds := cfg.Credentials()
	token, err := creds.Token()
	if err != nil {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	// Revocation is best effort; the local copy goes either way.
	if err := remote.New(cfg.ServerURL, token).Logout(ctx); err != nil {
		slog.Debug("server-side logout failed", "error", err)
	}

	if err := creds.RemoveToken(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove session: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
