package middleware

import (
	"log/slog"
	"net/http"

	"github.com/pvasek/taskhub/internal/api/shared"
	"github.com/pvasek/taskhub/internal/platform/logger"
)

// NewTraceMiddleware returns middleware that attaches a trace ID to the
// request context and installs a request-scoped logger carrying it.
// This middleware should be applied early in the middleware chain to ensure
// that all subsequent handlers have access to the trace ID.
func NewTraceMiddleware(baseLogger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Add a trace ID to the context
			ctx := shared.SetTraceID(r.Context())

			// Get the trace ID for logging
			traceID := shared.GetTraceID(ctx)

			// Add trace ID to the logger context
			log := baseLogger.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			// Log the incoming request with trace ID
			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			// Continue with the updated context
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
