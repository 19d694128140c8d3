// Package requesttime gives every operation within one HTTP request the same
// "now", so audit timestamps and evaluation timestamps agree.
package requesttime

import (
	"net/http"
	"time"

	"screening/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
