package auth

import (
	"net/http"
	"strings"
)

func ExtractAccessToken(r *http.Request) string {
	// Cookie first, Authorization header as fallback.
	if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
