package handler

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey int

const loggerContextKey contextKey = 0

// requestLogger returns the logger carried on ctx, falling back to the
// handler's base logger enriched with the request's method and path. This
// mirrors tusd's httpContext.log, minus the machinery for delayed
// cancellation, which this package's narrower scope does not need.
func (h *Handler) requestLogger(ctx context.Context, r *http.Request) *slog.Logger {
	if log, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return log
	}
	return h.logger.With("method", r.Method, "path", r.URL.Path)
}

func withLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, log)
}
