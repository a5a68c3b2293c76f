package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nafia007/afd-submissions-sub001/internal/core/domain"
)

type contextKey string

// UserIDKey holds the authenticated domain.Actor in the request context.
const UserIDKey contextKey = "user"

const accessTokenCookie = "access_token"

// Authenticate verifies the HS256 access token issued by the identity
// provider. The token is read from the access_token cookie or a Bearer
// Authorization header. Claims: sub is the user id; admin (bool) or
// role == "admin" marks an administrator.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				writeUnauthenticated(w, "missing access token")
				return
			}

			actor, err := parseActor(raw, secret)
			if err != nil {
				writeUnauthenticated(w, "invalid access token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func parseActor(raw string, secret []byte) (domain.Actor, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return domain.Actor{}, err
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return domain.Actor{}, err
	}
	if sub == "" {
		return domain.Actor{}, errors.New("token has no subject")
	}

	actor := domain.Actor{UserID: sub}
	if admin, ok := claims["admin"].(bool); ok && admin {
		actor.IsAdmin = true
	}
	if role, ok := claims["role"].(string); ok && role == domain.RoleAdmin {
		actor.IsAdmin = true
	}
	return actor, nil
}

func actorFrom(r *http.Request) (domain.Actor, bool) {
	actor, ok := r.Context().Value(UserIDKey).(domain.Actor)
	return actor, ok && actor.UserID != ""
}

// IssueToken signs an access token for userID. The identity provider owns
// token issuance in production; this exists for tooling and tests.
func IssueToken(secret []byte, userID string, admin bool, claims jwt.MapClaims) (string, error) {
	all := jwt.MapClaims{"sub": userID, "admin": admin}
	for k, v := range claims {
		all[k] = v
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, all)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
