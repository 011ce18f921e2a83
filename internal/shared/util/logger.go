package util

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LevelOK sits between INFO and WARN so successful operations can be
// filtered on their own.
const LevelOK = slog.Level(2)

type Logger struct {
	std *slog.Logger
}

func New() *Logger {
	return NewWithOptions(os.Stdout, "info", "text")
}

func NewWithOptions(w io.Writer, level, format string) *Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelOK {
					a.Value = slog.StringValue("OK")
				}
			}
			return a
		},
	}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &Logger{std: slog.New(h)}
}

// With returns a logger that adds args to every record, e.g. service name.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{std: l.std.With(args...)}
}

func (l *Logger) Info(instance, message string, args ...any) {
	l.log(slog.LevelInfo, instance, message, args...)
}

func (l *Logger) Warn(instance, message string, args ...any) {
	l.log(slog.LevelWarn, instance, message, args...)
}

func (l *Logger) Error(instance, message string, err error, args ...any) {
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	l.log(slog.LevelError, instance, message, args...)
}

func (l *Logger) Fatal(instance, message string, err error) {
	l.Error(instance, message, err)
	os.Exit(1)
}

func (l *Logger) OK(instance, message string, args ...any) {
	l.log(LevelOK, instance, message, args...)
}

func (l *Logger) HTTP(status int, elapsed time.Duration, host, method, path string, args ...any) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	args = append(args,
		slog.Int("status", status),
		slog.Int64("elapsed_ms", elapsed.Milliseconds()),
		slog.String("host", host),
		slog.String("method", method),
		slog.String("path", path),
	)
	l.std.Log(context.Background(), level, "http request", args...)
}

func (l *Logger) log(level slog.Level, instance, message string, args ...any) {
	l.std.Log(context.Background(), level, message, append([]any{slog.String("instance", instance)}, args...)...)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
