package cli

import (
	"io"
	"log/slog"
	"strings"

	"mytodo/internal/config"
)

// SetupLogging installs the default slog logger: text on errOut at
// log.level, or debug with --debug.
func SetupLogging(cfg *config.Config, errOut io.Writer) {
	level := parseLogLevel(cfg.LogLevel)
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level})))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
