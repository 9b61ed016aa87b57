// Package config handles the XDG configuration directory and the optional
// config.yaml inside it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"mytodo/internal/credential"
)

const (
	// AppName is the application directory name.
	AppName = "mytodo"

	// ConfigFile is the optional settings file inside Dir.
	ConfigFile = "config.yaml"

	// LocalTasksFile holds the collection for the local backend.
	LocalTasksFile = "tasks.json"

	// EnvPrefix prefixes environment overrides, e.g. MYTODO_SERVER_URL.
	EnvPrefix = "MYTODO"
)

// Backends.
const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Backend    string
	ServerURL  string
	ServerAddr string
	DBPath     string
	LogLevel   string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubRedirectURL  string

	GeminiAPIKey  string
	GeminiModel   string
	PraiseTimeout time.Duration

	FeedKeepalive time.Duration

	CredentialsBackend  string
	CredentialsPassword string
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("backend", BackendRemote)
	v.SetDefault("server.url", "http://localhost:8080")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("db.path", filepath.Join(dir, "mytodo.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("github.client_id", "")
	v.SetDefault("github.client_secret", "")
	v.SetDefault("github.redirect_url", "http://localhost:8080/auth/github/callback")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("praise.timeout", "15s")
	v.SetDefault("feed.keepalive", "25s")
	v.SetDefault("credentials.backend", "")
	v.SetDefault("credentials.password", "")
}

// New creates a Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/mytodo or $HOME/.config/mytodo.
// Settings come from defaults, then Dir/config.yaml, then MYTODO_* env vars.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	v := viper.New()
	setDefaults(v, dir)
	v.SetConfigFile(filepath.Join(dir, ConfigFile))
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	cfg := &Config{
		Dir:                 dir,
		Backend:             strings.ToLower(v.GetString("backend")),
		ServerURL:           strings.TrimRight(v.GetString("server.url"), "/"),
		ServerAddr:          v.GetString("server.addr"),
		DBPath:              v.GetString("db.path"),
		LogLevel:            v.GetString("log.level"),
		GitHubClientID:      v.GetString("github.client_id"),
		GitHubClientSecret:  v.GetString("github.client_secret"),
		GitHubRedirectURL:   v.GetString("github.redirect_url"),
		GeminiAPIKey:        v.GetString("gemini.api_key"),
		GeminiModel:         v.GetString("gemini.model"),
		PraiseTimeout:       v.GetDuration("praise.timeout"),
		FeedKeepalive:       v.GetDuration("feed.keepalive"),
		CredentialsBackend:  v.GetString("credentials.backend"),
		CredentialsPassword: v.GetString("credentials.password"),
	}

	switch cfg.Backend {
	case BackendRemote, BackendLocal:
	default:
		return nil, fmt.Errorf("invalid backend %q in config (want remote or local)", cfg.Backend)
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// LocalTasksPath returns the path of the local backend's JSON file.
func (c *Config) LocalTasksPath() string {
	return filepath.Join(c.Dir, LocalTasksFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// Credentials returns the session token store for this config.
func (c *Config) Credentials() *credential.Store {
	return credential.New(credential.Options{
		Dir:          c.Dir,
		Backend:      c.CredentialsBackend,
		FilePassword: c.CredentialsPassword,
	})
}

// HasToken checks if a session token is stored.
func (c *Config) HasToken() bool {
	return c.Credentials().HasToken()
}

// RemoveToken deletes the stored session token.
func (c *Config) RemoveToken() error {
	return c.Credentials().RemoveToken()
}

// NeedsLogin reports whether commands must be signed in before they run.
// The local backend has no sign-in.
func (c *Config) NeedsLogin() bool {
	return c.Backend != BackendLocal
}
