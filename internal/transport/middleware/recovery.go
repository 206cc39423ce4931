package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/pkg/logger"
)

// RecoveryMiddleware turns a handler panic into the standard error envelope.
// The panic value is logged, never returned to the caller.
func RecoveryMiddleware(lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.FromOr(r.Context(), lg).Error("panic recovered",
						"error", rec,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(internal.Response{
						Success: false,
						Error:   "internal server error",
						Code:    internal.ErrCodeInternal,
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
