// Package logging builds the structured logger for a run.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"

	"bookprog/internal/config"
	"bookprog/internal/util"
)

// NullLogger discards everything.
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a level name to slog.Level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
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

// Setup returns a logger tagged with a fresh run id.
//
// With cfg.File set, records go to that file with size based rotation.
// Otherwise they go to console, or nowhere when console is nil, which is
// what a full-screen UI owning the terminal wants. The returned closer
// must be closed when the run ends.
func Setup(cfg config.LogConfig, console io.Writer) (*slog.Logger, io.Closer, error) {
	var (
		w      io.Writer
		closer io.Closer = nopCloser{}
	)
	switch {
	case cfg.File != "":
		path, err := expandHome(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		if err := util.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.MaxSize,    // MB
			MaxBackups: cfg.MaxBackups, // number of old files
			MaxAge:     cfg.MaxAge,     // days
			Compress:   cfg.Compress,
		}
		w, closer = lj, lj
	case console != nil:
		w = console
	default:
		return NullLogger(), closer, nil
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)})
	return slog.New(h).With("run", uuid.NewString()), closer, nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
