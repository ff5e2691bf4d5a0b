// Package logging configures the module's slog output. Grounded on
// DMRHub's cmd/root.go setupLogger: a level-switched tint handler
// installed as the slog default, replacing the teacher's plain
// log.Printf calls throughout the rest of the module.
package logging

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// Level names accepted by New/Setup, matching the CLI's --log-level flag.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// New builds a tint-backed logger at the given level, writing to stdout
// for debug/info and stderr for warn/error. Unrecognized levels fall back
// to info rather than panicking on a nil logger.
func New(level string) *slog.Logger {
	switch level {
	case LevelDebug:
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	case LevelInfo:
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	case LevelWarn:
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	case LevelError:
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelError}))
	default:
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	}
}

// Setup builds a logger at level and installs it as slog's package-wide
// default, for the demo CLI's process-global logging.
func Setup(level string) *slog.Logger {
	logger := New(level)
	slog.SetDefault(logger)
	return logger
}
