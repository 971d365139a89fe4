// Package logging configures colored structured logging with tint for the wallet service.
//
// Usage:
//
//	logging.Setup("")       // level from LOG_LEVEL env, INFO by default
//	logging.Setup("debug")  // explicit level
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures colored logging at the given level. An empty level falls back to the LOG_LEVEL env var.
func Setup(level string) {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}

	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      Level(level),
			TimeFormat: time.DateTime,
			AddSource:  true,
		}),
	))
}

// Level parses debug, info, warn or error (case insensitive). Anything else is INFO.
func Level(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
