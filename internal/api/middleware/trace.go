package middleware

import (
	"net/http"

	"github.com/mhutchins/tasknest/internal/api/shared"
)

// TraceID attaches a fresh trace ID to every request's context so logs and
// error responses can be correlated.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
