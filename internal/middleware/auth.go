package middleware

import (
	"net/http"
	"strings"

	"hoalan-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware extracts the current user from the bearer token, if any.
// Requests without a valid token continue anonymously; handlers decide
// whether authentication is required.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				return key, nil
			})
			if err != nil || !token.Valid {
				next.ServeHTTP(w, r)
				return
			}

			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				uid, _ := claims["user_id"].(float64)
				email, _ := claims["email"].(string)
				role, _ := claims["role"].(string)
				if uid > 0 {
					ctx := utils.SetUserContext(r.Context(), uint(uid), email, role)
					r = r.WithContext(ctx)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
