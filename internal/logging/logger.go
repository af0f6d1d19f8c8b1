package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"slasher/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Writer receives console or JSON output. Defaults to stderr so stdout
	// stays free for tables.
	Writer io.Writer
	// FilePath, when set, additionally appends JSON records to this file.
	FilePath string
	// RunID is attached to every record when non-empty.
	RunID       string
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = newJSONHandler(writer, levelVar, addSource)
	case "console":
		handler = newPrettyHandler(writer, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if path := strings.TrimSpace(opts.FilePath); path != "" {
		file, err := openLogFile(path)
		if err != nil {
			return nil, err
		}
		handler = newFanoutHandler(handler, newJSONHandler(file, levelVar, addSource))
	}

	if opts.RunID != "" {
		handler = newRunIDHandler(handler, opts.RunID)
	}

	return slog.New(handler), nil
}

// NewFromConfig creates a logger using application config defaults. A nil
// writer means stderr.
func NewFromConfig(cfg *config.Config, runID string, w io.Writer) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Writer: w, RunID: runID})
	}

	opts := Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: w,
		RunID:  runID,
	}
	if cfg.Logging.File {
		opts.FilePath = cfg.LogFilePath()
	}
	return New(opts)
}

func parseLevel(level string) slog.Level {
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

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
