// Package auth implements the server side of GitHub sign-in.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	// DefaultAPIURL is the GitHub REST API root.
	DefaultAPIURL = "https://api.github.com"

	// Token exchange and profile fetch timeout
	exchangeTimeout = 30 * time.Second
)

// ErrNotConfigured is returned when no GitHub client id is set.
var ErrNotConfigured = errors.New("github oauth client not configured")

// Provider is the OAuth identity provider used by the server.
type Provider interface {
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error)
	FetchLogin(ctx context.Context, tok *oauth2.Token) (string, error)
}

// GitHubConfig configures the GitHub provider.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint and APIURL default to github.com.
	Endpoint oauth2.Endpoint
	APIURL   string
}

// GitHub implements Provider.
type GitHub struct {
	oauth  *oauth2.Config
	apiURL string
}

// NewGitHub creates a GitHub provider.
func NewGitHub(cfg GitHubConfig) (*GitHub, error) {
	if cfg.ClientID == "" {
		return nil, ErrNotConfigured
	}
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = github.Endpoint
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &GitHub{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"read:user"},
		},
		apiURL: strings.TrimRight(apiURL, "/"),
	}, nil
}

// AuthCodeURL returns the GitHub consent URL with a PKCE challenge.
func (g *GitHub) AuthCodeURL(state, verifier string) string {
	return g.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades an authorization code for a token.
func (g *GitHub) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	tok, err := g.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return tok, nil
}

// FetchLogin returns the GitHub login of the token's owner.
func (g *GitHub) FetchLogin(ctx context.Context, tok *oauth2.Token) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+"/user", nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching github user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("fetching github user: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("decoding github user: %w", err)
	}
	if user.Login == "" {
		return "", errors.New("github user has no login")
	}
	return user.Login, nil
}
