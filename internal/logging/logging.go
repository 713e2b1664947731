// Package logging provides the structured logger used across the driver.
//
// Adapted from the teacher's pkg/logging: a thin wrapper around log/slog
// that tags every record with a component name and lets context-scoped IDs
// (action name, run index) ride along without every call site having to
// repeat them.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type contextKey string

const (
	actionNameKey contextKey = "action_name"
	runnerIDKey   contextKey = "runner_id"
)

// Logger wraps *slog.Logger with a fixed component tag.
type Logger struct {
	*slog.Logger
	component string
}

// Config controls how a Logger is constructed.
type Config struct {
	Level     string // debug, info, warn, error
	Format    string // json or text
	Output    string // stdout, stderr, or a file path
	Component string
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var output io.Writer
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			output = os.Stdout
		} else {
			output = f
		}
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: level == slog.LevelDebug}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{Logger: slog.New(handler), component: cfg.Component}
}

// Default builds a Logger reading level/format from the environment, the
// way Console.getInstance() is the one process-wide sink in the source
// driver — injected explicitly here rather than kept as a singleton.
func Default(component string) *Logger {
	return New(Config{
		Level:     os.Getenv("LOG_LEVEL"),
		Format:    os.Getenv("LOG_FORMAT"),
		Output:    "stdout",
		Component: component,
	})
}

// WithContext attaches any trace-scoped attributes found on ctx.
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	attrs := []any{slog.String("component", l.component)}
	if name, ok := ctx.Value(actionNameKey).(string); ok {
		attrs = append(attrs, slog.String("action", name))
	}
	if id, ok := ctx.Value(runnerIDKey).(int); ok {
		attrs = append(attrs, slog.Int("runner_id", id))
	}
	return l.Logger.With(attrs...)
}

// WithAction returns a context carrying the action name for later log
// attribution.
func WithAction(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, actionNameKey, name)
}

// WithRunnerID returns a context carrying the runner thread index.
func WithRunnerID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, runnerIDKey, id)
}
