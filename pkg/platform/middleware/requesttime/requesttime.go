// Package requesttime pins one "now" per request so every timestamp written
// while serving it (created_at, updated_at, token issue time) agrees.
package requesttime

import (
	"net/http"
	"time"

	"inkwell/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
