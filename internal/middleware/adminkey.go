package middleware

import (
	"crypto/subtle"
	"net/http"

	"emote-pack-service/pkg/apierror"
	"emote-pack-service/pkg/response"
)

// NewAdminKeyMiddleware guards operator endpoints with a shared key passed
// in the X-Admin-Key header. An empty configured key disables the endpoints
// entirely rather than leaving them open.
func NewAdminKeyMiddleware(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				response.Error(w, apierror.ServiceUnavailable("admin endpoints are disabled"))
				return
			}

			provided := r.Header.Get("X-Admin-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				response.Error(w, apierror.Unauthorized("invalid admin key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
