// Package credential stores the session token issued at sign-in.
package credential

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/99designs/keyring"
)

const (
	serviceName = "mytodo"

	// SessionKey is the keyring item holding the session token.
	SessionKey = "session"

	// BackendFile restricts storage to the encrypted file backend.
	BackendFile = "file"
)

// ErrNotFound is returned when no token is stored.
var ErrNotFound = errors.New("no stored session")

// Options configures where tokens live.
type Options struct {
	// Dir holds the encrypted file backend ("<Dir>/credentials").
	Dir string

	// Backend is "" for the system keyring with file fallback, or "file".
	Backend string

	// FilePassword encrypts the file backend.
	FilePassword string
}

// Store reads and writes the session token.
type Store struct {
	opts Options
}

// New returns a store for opts.
func New(opts Options) *Store {
	if opts.FilePassword == "" {
		opts.FilePassword = serviceName + "-file-key"
	}
	return &Store{opts: opts}
}

func (s *Store) open() (keyring.Keyring, error) {
	backends := []keyring.BackendType{
		keyring.KeychainBackend,
		keyring.SecretServiceBackend,
		keyring.WinCredBackend,
		keyring.PassBackend,
		keyring.FileBackend,
	}
	if s.opts.Backend == BackendFile {
		backends = []keyring.BackendType{keyring.FileBackend}
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:              serviceName,
		AllowedBackends:          backends,
		FileDir:                  filepath.Join(s.opts.Dir, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt(s.opts.FilePassword),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Token returns the stored session token.
func (s *Store) Token() (string, error) {
	ring, err := s.open()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(SessionKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", SessionKey, err)
	}
	if len(item.Data) == 0 {
		return "", ErrNotFound
	}
	return string(item.Data), nil
}

// HasToken reports whether a token is stored.
func (s *Store) HasToken() bool {
	tok, err := s.Token()
	return err == nil && tok != ""
}

// SetToken stores the session token.
func (s *Store) SetToken(token string) error {
	ring, err := s.open()
	if err != nil {
		return err
	}
	if err := ring.Set(keyring.Item{Key: SessionKey, Data: []byte(token), Label: "mytodo session"}); err != nil {
		return fmt.Errorf("setting credential %q: %w", SessionKey, err)
	}
	return nil
}

// RemoveToken deletes the stored token. Missing tokens return ErrNotFound.
func (s *Store) RemoveToken() error {
	ring, err := s.open()
	if err != nil {
		return err
	}
	err = ring.Remove(SessionKey)
	if errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", SessionKey, err)
	}
	return nil
}
