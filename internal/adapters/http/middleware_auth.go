package httpadapter

import (
	"net/http"
	"strings"
)

// authMiddleware gates the relaxation endpoints behind a static bearer
// token. An empty key disables the check entirely. Health and metrics
// stay open so probes and scrapers do not need credentials.
func authMiddleware(next http.Handler, apiKey string) http.Handler {
	if apiKey == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isUnauthenticatedPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if isAuthorizedBearerHeader(r.Header.Get("Authorization"), apiKey) {
			next.ServeHTTP(w, r)
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	})
}

func isUnauthenticatedPath(path string) bool {
	switch path {
	case "/healthz", "/metrics":
		return true
	default:
		return false
	}
}

func isAuthorizedBearerHeader(headerValue, expectedToken string) bool {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "" || expectedToken == "" {
		return false
	}
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(headerValue, bearerPrefix))
	return token == expectedToken
}
