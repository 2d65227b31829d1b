package middleware

import (
	"fmt"
	"net/http"
	"time"
)

// CacheControl marks successful GET responses as publicly cacheable for maxAge.
// Non-GET requests pass through untouched. A non-positive maxAge disables
// caching with no-store.
func CacheControl(maxAge time.Duration) func(http.Handler) http.Handler {
	value := "no-store"
	if secs := int(maxAge / time.Second); secs > 0 {
		value = fmt.Sprintf("public, max-age=%d", secs)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
