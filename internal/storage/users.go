package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// User is a signed-in GitHub identity.
type User struct {
	ID    string `db:"id"`
	Login string `db:"login"`
}

// UpsertUser returns the user with the given login, creating it on first sign-in.
func (s *DB) UpsertUser(ctx context.Context, login string) (User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return User{}, fmt.Errorf("login must not be empty: %w", ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, login, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(login) DO NOTHING`,
		uuid.NewString(), login, formatTime(s.now()))
	if err != nil {
		return User{}, fmt.Errorf("upserting user: %w", err)
	}

	var u User
	if err := s.db.GetContext(ctx, &u, "SELECT id, login FROM users WHERE login = ?", login); err != nil {
		return User{}, fmt.Errorf("reading user: %w", err)
	}
	return u, nil
}

// CreateSession issues a new opaque session token for the user.
// Only the token's hash is stored.
func (s *DB) CreateSession(ctx context.Context, userID string) (string, error) {
	token := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (token_hash, user_id, created_at) VALUES (?, ?, ?)",
		hashToken(token), userID, formatTime(s.now()))
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return token, nil
}

// SessionUser resolves a session token to its user.
func (s *DB) SessionUser(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrNotFound
	}
	var u User
	err := s.db.GetContext(ctx, &u, `
		SELECT u.id, u.login FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = ?`, hashToken(token))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("resolving session: %w", err)
	}
	return u, nil
}

// DeleteSession revokes a session token.
func (s *DB) DeleteSession(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash = ?", hashToken(token))
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
