package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultix/vaultix/internal/config"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(config.Envs.JWTSecret))
	require.NoError(t, err)
	return token
}

func protectedProbe(gotUser *uuid.UUID, called *bool) http.Handler {
	return AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if id, ok := UserID(r); ok {
			*gotUser = id
		}
	}))
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	userID := uuid.New()
	tokenStr := signToken(t, jwt.MapClaims{
		"userId": userID.String(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	var gotUser uuid.UUID
	var called bool

	r := httptest.NewRequest(http.MethodGet, "/files/", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: tokenStr})
	rec := httptest.NewRecorder()

	protectedProbe(&gotUser, &called).ServeHTTP(rec, r)

	assert.True(t, called)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{
			name: "missing cookie",
		},
		{
			name:   "garbage token",
			cookie: &http.Cookie{Name: "token", Value: "not-a-jwt"},
		},
		{
			name: "expired token",
			cookie: &http.Cookie{Name: "token", Value: func() string {
				token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
					"userId": uuid.NewString(),
					"exp":    time.Now().Add(-time.Hour).Unix(),
				}).SignedString([]byte(config.Envs.JWTSecret))
				return token
			}()},
		},
		{
			name: "wrong signing key",
			cookie: &http.Cookie{Name: "token", Value: func() string {
				token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
					"userId": uuid.NewString(),
					"exp":    time.Now().Add(time.Hour).Unix(),
				}).SignedString([]byte("some-other-secret"))
				return token
			}()},
		},
		{
			name: "missing user claim",
			cookie: &http.Cookie{Name: "token", Value: func() string {
				token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
					"exp": time.Now().Add(time.Hour).Unix(),
				}).SignedString([]byte(config.Envs.JWTSecret))
				return token
			}()},
		},
		{
			name: "malformed user id",
			cookie: &http.Cookie{Name: "token", Value: func() string {
				token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
					"userId": "not-a-uuid",
					"exp":    time.Now().Add(time.Hour).Unix(),
				}).SignedString([]byte(config.Envs.JWTSecret))
				return token
			}()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser uuid.UUID
			var called bool

			r := httptest.NewRequest(http.MethodGet, "/files/", nil)
			if tt.cookie != nil {
				r.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()

			protectedProbe(&gotUser, &called).ServeHTTP(rec, r)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
