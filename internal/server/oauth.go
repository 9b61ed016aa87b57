package server

import (
	"net"
	"net/http"
	"net/url"
)

// handleLogin starts GitHub sign-in for a CLI waiting on a loopback redirect.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.provider == nil {
		writeError(w, http.StatusServiceUnavailable, "github sign-in not configured")
		return
	}
	redirect := r.URL.Query().Get("redirect")
	if !isLoopbackURL(redirect) {
		writeError(w, http.StatusBadRequest, "redirect must be a loopback http url")
		return
	}

	state, verifier := s.states.Begin(redirect)
	http.Redirect(w, r, s.provider.AuthCodeURL(state, verifier), http.StatusFound)
}

// handleCallback completes sign-in, issues a session token and hands it to the CLI.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if s.provider == nil {
		writeError(w, http.StatusServiceUnavailable, "github sign-in not configured")
		return
	}
	q := r.URL.Query()
	pending, ok := s.states.Take(q.Get("state"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown or expired state")
		return
	}
	if e := q.Get("error"); e != "" {
		redirectWith(w, r, pending.Redirect, "error", e)
		return
	}
	code := q.Get("code")
	if code == "" {
		redirectWith(w, r, pending.Redirect, "error", "no code in callback")
		return
	}

	tok, err := s.provider.Exchange(r.Context(), code, pending.Verifier)
	if err != nil {
		s.logger.Warn("github exchange failed", "error", err)
		redirectWith(w, r, pending.Redirect, "error", "token exchange failed")
		return
	}
	login, err := s.provider.FetchLogin(r.Context(), tok)
	if err != nil {
		s.logger.Warn("github user lookup failed", "error", err)
		redirectWith(w, r, pending.Redirect, "error", "user lookup failed")
		return
	}

	user, err := s.store.UpsertUser(r.Context(), login)
	if err != nil {
		s.storeError(w, err)
		return
	}
	token, err := s.store.CreateSession(r.Context(), user.ID)
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.logger.Info("user signed in", "login", login)
	redirectWith(w, r, pending.Redirect, "token", token)
}

func redirectWith(w http.ResponseWriter, r *http.Request, target, key, value string) {
	u, err := url.Parse(target)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid redirect")
		return
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

func isLoopbackURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "http" {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
