package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/activity-directory/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// requestScopedLogger returns the logger RequestLogger stored in ctx, or fallback.
func requestScopedLogger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return defaultLogger(fallback)
}

// handlerLogger narrows the request logger to one handler operation. The
// request attributes come from RequestLogger; when a handler is mounted
// without it, method and path are attached here instead.
func handlerLogger(r *http.Request, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	pairs := make([]any, 0, 8+len(attrs))
	logger := logging.FromContext(r.Context())
	if logger == nil {
		logger = defaultLogger(fallback)
		pairs = append(pairs, "method", r.Method, "path", r.URL.Path)
	}
	pairs = append(pairs, "handler", handlerName)
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	return logger.With(append(pairs, attrs...)...)
}
