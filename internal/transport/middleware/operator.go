package middleware

import (
	"net/http"
	"strings"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/pkg/logger"
)

const OperatorHeader = "X-Operator-ID"

// OperatorContext records which back-office operator issued the request.
// It is an audit field only; nothing is authorized on it.
func OperatorContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operatorID := strings.TrimSpace(r.Header.Get(OperatorHeader))
		if operatorID == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := internal.ContextWithOperatorID(r.Context(), operatorID)
		ctx = logger.With(ctx, "operator_id", operatorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
