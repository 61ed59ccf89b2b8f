package cmd

import (
	"fmt"
	"io"
	"log/slog"
)

// setupLogging installs the default logger according to the global flags.
func setupLogging(w io.Writer) error {
	logger, err := newLogger(w, logFormat, logLevel())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

func logLevel() slog.Level {
	switch {
	case verbose:
		return slog.LevelDebug
	case quiet:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(w io.Writer, format string, level slog.Level) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}
}
