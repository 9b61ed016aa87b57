// Package remote implements the service.Service interface against the
// `mytodo serve` HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mytodo/internal/service"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// PraiseTimeout covers the server's call to the model.
	PraiseTimeout = 20 * time.Second
)

// Client implements service.Service over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the server at baseURL using a session token.
func New(baseURL, token string) *Client {
	return NewWithHTTPClient(baseURL, token, http.DefaultClient)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL, token string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// LoginURL returns the server URL that starts GitHub sign-in and returns to redirect.
func LoginURL(baseURL, redirect string) string {
	return strings.TrimRight(baseURL, "/") + "/auth/github/login?redirect=" + url.QueryEscape(redirect)
}

// Whoami returns the session owner.
func (c *Client) Whoami(ctx context.Context) (service.Session, error) {
	var s service.Session
	err := c.call(ctx, APITimeout, http.MethodGet, "/api/session", nil, &s)
	return s, err
}

// Logout revokes the session token on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, APITimeout, http.MethodDelete, "/api/session", nil, nil)
}

// List returns all tasks ordered by creation time.
func (c *Client) List(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.call(ctx, APITimeout, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Insert creates a task with a client-chosen id.
func (c *Client) Insert(ctx context.Context, id, text string) (service.Task, error) {
	var t service.Task
	body := map[string]string{"id": id, "text": text}
	err := c.call(ctx, APITimeout, http.MethodPost, "/api/tasks", body, &t)
	return t, err
}

// SetCompleted sets the completion flag.
func (c *Client) SetCompleted(ctx context.Context, id string, completed bool) (service.Task, error) {
	var t service.Task
	body := map[string]bool{"completed": completed}
	err := c.call(ctx, APITimeout, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), body, &t)
	return t, err
}

// SetText replaces the task text.
func (c *Client) SetText(ctx context.Context, id, text string) (service.Task, error) {
	var t service.Task
	body := map[string]string{"text": text}
	err := c.call(ctx, APITimeout, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), body, &t)
	return t, err
}

// Delete removes a task.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.call(ctx, APITimeout, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

// Praise posts to /api/praise. On failure the server still answers with the
// fallback text, which is returned together with the error.
func (c *Client) Praise(ctx context.Context, taskText, levelTitle string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	body := map[string]string{"taskText": taskText, "levelTitle": levelTitle}
	err := c.call(ctx, PraiseTimeout, http.MethodPost, "/api/praise", body, &resp)
	return resp.Message, err
}

// call performs one JSON request. result may be nil.
func (c *Client) call(ctx context.Context, timeout time.Duration, method, path string, body, result any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapError(fmt.Errorf("reading response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// the praise endpoint carries a usable message even on failure
		if result != nil {
			_ = json.Unmarshal(respBody, result)
		}
		return statusError(method, path, resp.StatusCode, respBody)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// statusError maps HTTP statuses onto the service sentinels.
func statusError(method, path string, status int, body []byte) error {
	var e struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		msg = e.Error
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return service.ErrUnauthorized
	case http.StatusNotFound:
		return service.ErrNotFound
	case http.StatusBadRequest, http.StatusConflict:
		return fmt.Errorf("%s: %w", msg, service.ErrInvalidInput)
	}
	return fmt.Errorf("unexpected status %d on %s %s: %s", status, method, path, msg)
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot reach server: %w", err)
}
