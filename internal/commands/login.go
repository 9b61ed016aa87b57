package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"mytodo/internal/backend/remote"
	"mytodo/internal/config"
	"mytodo/internal/exitcode"
	"mytodo/internal/service"
)

const (
	// Sign-in callback timeout
	loginCallbackTimeout = 5 * time.Minute

	// Starting port for the loopback callback server
	loginStartPort = 8085

	// Max port attempts
	loginMaxPortAttempts = 5
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct{}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in with GitHub" }
func (c *LoginCmd) Usage() string     { return "mytodo login [common flags]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.NeedsLogin() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "local backend: no login needed")
		}
		return exitcode.Success
	}

	creds := cfg.Credentials()

	// Check if already logged in (token exists and the server accepts it)
	if tok, err := creds.Token(); err == nil {
		if _, err := remote.New(cfg.ServerURL, tok).Whoami(ctx); err == nil {
			if !cfg.Quiet {
				fmt.Fprintln(out, "already logged in")
			}
			return exitcode.Success
		}
	}

	port, listener, err := findAvailablePort()
	if err != nil {
		fmt.Fprintln(errOut, "error: could not bind to local port for sign-in callback")
		return exitcode.AuthError
	}
	defer listener.Close()

	redirectURL := fmt.Sprintf("http://localhost:%d/callback", port)
	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, remote.LoginURL(cfg.ServerURL, redirectURL))

	tokenCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if msg := q.Get("error"); msg != "" {
			http.Error(w, "Sign-in failed: "+msg, http.StatusBadRequest)
			errCh <- fmt.Errorf("sign-in failed: %s", msg)
			return
		}
		token := q.Get("token")
		if token == "" {
			http.Error(w, "No token in callback", http.StatusBadRequest)
			errCh <- errors.New("no token in callback")
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Signed in</h1><p>You may close this window.</p></body></html>")
		tokenCh <- token
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	var token string
	select {
	case token = <-tokenCh:
	case err := <-errCh:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	case <-time.After(loginCallbackTimeout):
		fmt.Fprintln(errOut, "error: sign-in callback timed out")
		return exitcode.AuthError
	case <-ctx.Done():
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.AuthError
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(shutdownCtx)

	sess, err := remote.New(cfg.ServerURL, token).Whoami(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: server rejected the new session: %v\n", err)
		return exitcode.AuthError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := creds.SetToken(token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save session: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok (signed in as %s)\n", sess.Login)
	}
	return exitcode.Success
}

// findAvailablePort tries to find an available port starting from loginStartPort.
func findAvailablePort() (int, net.Listener, error) {
	for i := 0; i < loginMaxPortAttempts; i++ {
		port := loginStartPort + i
		addr := fmt.Sprintf("localhost:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, fmt.Errorf("no available port found")
}
