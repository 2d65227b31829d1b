package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/zwehtet-dev/talent2income-rating/pkg/logger"
)

// UserIDHeader is set by the gateway to the authenticated caller's id.
const UserIDHeader = "X-User-ID"

// RequestLogger stores a per-request logger in the context. It carries the
// correlation, caller and trace ids known at this point, so it must run after
// RequestLogging and Tracing. Handlers read it back with logger.FromContext.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Anything that is not a UUID did not come from the gateway.
			if raw := r.Header.Get(UserIDHeader); raw != "" {
				if id, err := uuid.Parse(raw); err == nil {
					ctx = logger.WithUserID(ctx, id.String())
				}
			}

			reqLogger := logger.WithContext(ctx, base).With(slog.String("client_ip", ClientIP(r)))
			next.ServeHTTP(w, r.WithContext(logger.NewContext(ctx, reqLogger)))
		})
	}
}
