package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// Init installs the process-wide slog default. Production emits JSON, everything else text.
func Init(env string) *slog.Logger {
	return InitWriter(env, os.Stdout)
}

func InitWriter(env string, w io.Writer) *slog.Logger {
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// With returns a context carrying a logger enriched with fields.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, loggerKey, From(ctx).With(fields...))
}

// From returns the logger stored in ctx, or the default logger.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}
