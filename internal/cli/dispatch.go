package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"mytodo/internal/commands"
	"mytodo/internal/config"
	"mytodo/internal/exitcode"
	"mytodo/internal/service"
)

// ServiceFactory opens the backend selected by cfg. Tests inject fakes here.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// Dispatcher parses the common flags and routes to registered commands.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher returns a Dispatcher over registry.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run resolves the command named by args[0] and runs it, returning the
// process exit code. No arguments means "list".
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	// Flags come after the command name.
	cmdName := args[0]
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

// globalFlags are accepted by every command.
type globalFlags struct {
	configDir string
	quiet     bool
	debug     bool
}

func (g *globalFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&g.configDir, "config", "", "")
	fs.BoolVar(&g.quiet, "quiet", false, "")
	fs.BoolVar(&g.debug, "debug", false, "")
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var global globalFlags
	global.register(fs)
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	// Only "--" lets a dash through parsing; numbers go on to ParseTaskRef.
	rest := fs.Args()
	if len(rest) > 0 && strings.HasPrefix(rest[0], "-") && !isNumber(rest[0]) {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", rest[0])
		return exitcode.UserError
	}

	cfg, err := config.New(global.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = global.quiet
	cfg.Debug = global.debug
	SetupLogging(cfg, errOut)

	var svc service.Service
	if cmd.NeedsAuth() {
		if svc, err = d.openService(ctx, cfg); err != nil {
			return reportOpenError(errOut, err)
		}
	}
	return cmd.Run(ctx, cfg, svc, rest, out, errOut)
}

// openService builds the backend for commands that touch the collection.
func (d *Dispatcher) openService(ctx context.Context, cfg *config.Config) (service.Service, error) {
	if cfg.NeedsLogin() && !cfg.HasToken() {
		return nil, errNotLoggedIn
	}
	if d.factory == nil {
		return nil, errNoBackend
	}
	return d.factory(ctx, cfg)
}

var (
	errNotLoggedIn = fmt.Errorf("not logged in (run: %s login): %w", config.AppName, service.ErrUnauthorized)
	errNoBackend   = errors.New("no backend configured")
)

func reportOpenError(errOut io.Writer, err error) int {
	code := exitcode.FromError(err)
	switch {
	case errors.Is(err, errNotLoggedIn):
		fmt.Fprintf(errOut, "error: not logged in (run: %s login)\n", config.AppName)
	case code == exitcode.BackendError:
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
	default:
		fmt.Fprintf(errOut, "error: %s\n", err)
	}
	return code
}

// flagError rewrites flag package errors into the CLI's wording.
func flagError(err error) string {
	errStr := err.Error()
	switch {
	case strings.HasPrefix(errStr, "flag needs an argument:"):
		return "flag needs an argument: " + strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
	case strings.HasPrefix(errStr, "flag provided but not defined:"):
		return "unknown flag: " + strings.TrimSpace(strings.TrimPrefix(errStr, "flag provided but not defined:"))
	}
	return errStr
}

// isNumber reports whether s is a (possibly negative) integer, which is a
// task number rather than a flag.
func isNumber(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
