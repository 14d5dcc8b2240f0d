package middleware

import (
	"net/http"

	"storefront-api/internal/auth"
	"storefront-api/internal/user"
	"storefront-api/internal/utils"
)

// AuthMiddleware resolves the bearer token (if any) into user context.
// Unauthenticated requests pass through; handlers that require a user
// check the context themselves.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := auth.ExtractAccessToken(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := user.ParseJWT(tokenStr)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Username, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
