package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hoalan-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthMiddleware(t *testing.T) {
	var (
		gotUserID uint
		gotOK     bool
		gotRole   string
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, gotOK = utils.GetUserIDFromContext(r.Context())
		gotRole = utils.GetUserRoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(testSecret)(next)

	t.Run("ValidToken", func(t *testing.T) {
		token := signedToken(t, testSecret, jwt.MapClaims{
			"user_id": 7,
			"email":   "lan@example.com",
			"role":    "ADMIN",
		})

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, gotOK)
		assert.Equal(t, uint(7), gotUserID)
		assert.Equal(t, "ADMIN", gotRole)
	})

	t.Run("NoHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.False(t, gotOK)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token := signedToken(t, "another-secret", jwt.MapClaims{"user_id": 7})

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		handler.ServeHTTP(httptest.NewRecorder(), req)

		// Invalid tokens degrade to an anonymous request.
		assert.False(t, gotOK)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")

		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.False(t, gotOK)
	})
}
