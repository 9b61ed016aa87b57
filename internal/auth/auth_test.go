package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" || r.Form.Get("code_verifier") == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "bad_verification_code"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"access_token": "gho_abc", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gho_abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"login": "octocat", "id": 1})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(t *testing.T, srv *httptest.Server) *GitHub {
	t.Helper()
	g, err := NewGitHub(GitHubConfig{
		ClientID:     "cid",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/github/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:  srv.URL + "/login/oauth/authorize",
			TokenURL: srv.URL + "/login/oauth/access_token",
		},
		APIURL: srv.URL,
	})
	require.NoError(t, err)
	return g
}

func TestNewGitHub_RequiresClientID(t *testing.T) {
	_, err := NewGitHub(GitHubConfig{})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestGitHub_AuthCodeURL(t *testing.T) {
	g := newTestProvider(t, fakeGitHub(t))
	u, err := url.Parse(g.AuthCodeURL("st", oauth2.GenerateVerifier()))
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "st", q.Get("state"))
	require.Equal(t, "cid", q.Get("client_id"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))
	require.NotEmpty(t, q.Get("code_challenge"))
}

func TestGitHub_ExchangeAndFetchLogin(t *testing.T) {
	g := newTestProvider(t, fakeGitHub(t))
	ctx := context.Background()

	tok, err := g.Exchange(ctx, "good-code", oauth2.GenerateVerifier())
	require.NoError(t, err)

	login, err := g.FetchLogin(ctx, tok)
	require.NoError(t, err)
	require.Equal(t, "octocat", login)

	_, err = g.Exchange(ctx, "bad-code", oauth2.GenerateVerifier())
	require.Error(t, err)

	_, err = g.FetchLogin(ctx, &oauth2.Token{AccessToken: "wrong", TokenType: "bearer"})
	require.ErrorContains(t, err, "401")
}

func TestStateStore(t *testing.T) {
	s := NewStateStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	state, verifier := s.Begin("http://localhost:8085/callback")
	require.NotEmpty(t, state)
	require.NotEmpty(t, verifier)

	p, ok := s.Take(state)
	require.True(t, ok)
	require.Equal(t, "http://localhost:8085/callback", p.Redirect)
	require.Equal(t, verifier, p.Verifier)

	_, ok = s.Take(state)
	require.False(t, ok, "state is single use")

	state, _ = s.Begin("http://localhost:8085/callback")
	now = now.Add(StateTTL + time.Second)
	_, ok = s.Take(state)
	require.False(t, ok, "expired state")
}
