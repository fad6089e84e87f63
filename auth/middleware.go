// Package auth, guard middleware. This is the authentication stage of the
// request pipeline: it resolves the caller's identity from the bearer token
// and refuses the request before any protected handler runs when the
// credential is missing, malformed or expired (fail-closed).
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/mealplanner-go/apperror"
	"github.com/user/mealplanner-go/config"
)

// Guard creates the JWT authentication middleware. It verifies the token from
// the Authorization header and attaches the resolved Identity to the request
// context. The returned value conforms to the standard
// `func(next http.Handler) http.Handler` middleware shape.
func Guard(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("Authorization header is missing", nil))
				return
			}

			// The Authorization header must be in the form "Bearer {token}".
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				WriteError(w, r, apperror.NewAuthError("Authorization header format must be Bearer {token}", nil))
				return
			}

			tokenString := parts[1]
			claims := &CustomClaims{}

			// Parse and verify. The key function supplies the HMAC secret and
			// rejects tokens signed with any other method.
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil {
				// Expiry, bad signature and malformed tokens all land here; the
				// client only learns that the credential was rejected.
				WriteError(w, r, apperror.NewAuthError("invalid or expired token", err))
				return
			}
			if !token.Valid {
				WriteError(w, r, apperror.NewAuthError("invalid token", nil))
				return
			}

			// Refresh tokens must never open protected routes.
			if claims.TokenType != tokenTypeAccess {
				WriteError(w, r, apperror.NewAuthError("token is not an access token", nil))
				return
			}
			if claims.UserID == 0 {
				WriteError(w, r, apperror.NewAuthError("invalid token: user_id claim is missing", nil))
				return
			}

			ctx := NewContextWithIdentity(r.Context(), Identity{UserID: claims.UserID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
