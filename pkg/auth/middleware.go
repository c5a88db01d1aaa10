package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/mkostin/shardstore/pkg/utils"
)

type ContextKey string

const UserIDKey ContextKey = "userID"

const bearerPrefix = "Bearer "

// AuthMiddleware guards the /api/user group. The IPN endpoint stays
// outside it: the payment provider cannot carry our tokens.
func AuthMiddleware(next http.Handler) http.Handler {
	jwtService := &JWTService{}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimPrefix(authHeader, bearerPrefix))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
