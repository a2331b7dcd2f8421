package middlewares

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ray-remotestate/menuboard/apperr"
	"github.com/ray-remotestate/menuboard/config"
	"github.com/ray-remotestate/menuboard/models"
	"github.com/ray-remotestate/menuboard/response"
)

type Claims struct {
	UserID   uuid.UUID   `json:"user_id"`
	Username string      `json:"username"`
	RoleID   uuid.UUID   `json:"role_id"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session is the authenticated caller of a request. Handlers read it with
// SessionFromContext instead of sharing any global login state.
type Session struct {
	UserID   uuid.UUID   `json:"user_id"`
	Username string      `json:"username"`
	RoleID   uuid.UUID   `json:"role_id"`
	Role     models.Role `json:"role"`
}

type ContextKey string

const (
	sessionContextKey ContextKey = "session"
)

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, err := extractBearerToken(r)
		if err != nil {
			response.Error(w, r, apperr.Unauthorized(err.Error()))
			return
		}

		claims, err := ParseAccessToken(tokenStr)
		if err != nil {
			response.Error(w, r, apperr.Unauthorized("invalid or expired token"))
			return
		}

		session := &Session{
			UserID:   claims.UserID,
			Username: claims.Username,
			RoleID:   claims.RoleID,
			Role:     claims.Role,
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// ParseAccessToken validates an HS256 access token signed with the
// configured secret.
func ParseAccessToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return config.SecretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

func SessionFromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(sessionContextKey).(*Session)
	if !ok || s == nil {
		return nil, errors.New("no session in context")
	}
	return s, nil
}

func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", errors.New("invalid authorization format")
	}
	return parts[1], nil
}

func RoleBasedMiddleware(allowedRoles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool)
	for _, role := range allowedRoles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := SessionFromContext(r.Context())
			if err != nil {
				response.Error(w, r, apperr.Unauthorized("unauthorized"))
				return
			}

			if !allowed[models.Role(strings.ToLower(string(session.Role)))] {
				response.Error(w, r, apperr.Forbidden("insufficient role").WithDetail("role", session.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
