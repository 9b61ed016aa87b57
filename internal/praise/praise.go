// Package praise asks a generative-language model for a one-line
// congratulation when a task is completed.
package praise

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Fallback is returned whenever the model cannot be reached or answers badly.
const Fallback = "タスク完了お疲れ様です！素晴らしいですね 🎉"

// DefaultTimeout bounds one generation call.
const DefaultTimeout = 15 * time.Second

// ErrNotConfigured is returned when no generator is available.
var ErrNotConfigured = errors.New("praise generator not configured")

// Generator produces text for a prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Client builds praise prompts and sends them to a Generator.
type Client struct {
	gen     Generator
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Client. gen may be nil, in which case every call fails
// with ErrNotConfigured and Generate returns the fallback.
func New(gen Generator, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{gen: gen, timeout: timeout, logger: logger}
}

// Prompt returns the model prompt for a completed task.
func Prompt(taskText, levelTitle string) string {
	var b strings.Builder
	b.WriteString("あなたはユーザーをサポートする、親しみやすいAI執事です。\n")
	b.WriteString("ユーザーが以下のタスクを完了しました。\n\n")
	fmt.Fprintf(&b, "タスク名: 「%s」\n", taskText)
	fmt.Fprintf(&b, "現在の称号: 「%s」\n\n", levelTitle)
	b.WriteString("このユーザーを、1文だけ（長くても30文字程度）で、シンプルに短く褒めてください。\n")
	b.WriteString("長文は絶対に避け、サクッとテンポ良くテンションが上がる一言をお願いします！\n")
	return b.String()
}

// Praise returns the model's raw answer.
func (c *Client) Praise(ctx context.Context, taskText, levelTitle string) (string, error) {
	if c.gen == nil {
		return "", ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.gen.GenerateText(ctx, Prompt(taskText, levelTitle))
	if err != nil {
		return "", fmt.Errorf("generating praise: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("generating praise: empty response")
	}
	return text, nil
}

// Generate is Praise with the failure absorbed: on any error it logs and
// returns Fallback with ok=false.
func (c *Client) Generate(ctx context.Context, taskText, levelTitle string) (msg string, ok bool) {
	text, err := c.Praise(ctx, taskText, levelTitle)
	if err != nil {
		c.logger.Warn("praise failed, using fallback", "error", err)
		return Fallback, false
	}
	return text, true
}
