/**
 * @description
 * Authentication middleware for the assistant-service. Every caller is an
 * internal system (the messaging gateway or the aggregator's webhook relay),
 * so requests authenticate with the shared internal API key header.
 */
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// InternalKeyMiddleware rejects requests that don't carry the configured
// internal API key in the X-Internal-Api-Key header.
func InternalKeyMiddleware(expectedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := strings.TrimSpace(r.Header.Get("X-Internal-Api-Key"))
			if expectedKey == "" || provided == "" ||
				subtle.ConstantTimeCompare([]byte(provided), []byte(expectedKey)) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
