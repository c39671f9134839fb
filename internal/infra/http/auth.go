package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"creatora-api/internal/domain"
	"creatora-api/internal/infra/auth"
)

// CookieName задаёт имя cookie с access-токеном.
const CookieName = "access_token"

// TokenParser проверяет токен и возвращает claims.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// UserLoader загружает пользователя по id.
type UserLoader interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

// RevocationChecker проверяет отзыв токена.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Session описывает аутентифицированный запрос.
type Session struct {
	Principal domain.Principal
	TokenID   string
	ExpiresAt time.Time
}

type sessionKey struct{}

// WithSession кладёт сессию в контекст.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom достаёт сессию из контекста.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// BearerToken извлекает токен из cookie или заголовка Authorization.
func BearerToken(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// AuthMiddleware проверяет JWT, отзыв токена и активность пользователя.
func AuthMiddleware(tokens TokenParser, revoked RevocationChecker, users UserLoader, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			if raw == "" {
				WriteError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			if revoked != nil {
				isRevoked, err := revoked.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					logger.Error().Err(err).Msg("auth: проверка отзыва токена")
					WriteError(w, http.StatusInternalServerError, "Internal server error")
					return
				}
				if isRevoked {
					WriteError(w, http.StatusUnauthorized, "Token has been revoked")
					return
				}
			}
			user, err := users.GetUserByID(r.Context(), claims.Subject)
			if err != nil || !user.IsActive {
				WriteError(w, http.StatusUnauthorized, "User not found or inactive")
				return
			}
			session := Session{
				Principal: domain.Principal{UserID: user.ID, Email: user.Email, Plan: user.Plan},
				TokenID:   claims.ID,
			}
			if claims.ExpiresAt != nil {
				session.ExpiresAt = claims.ExpiresAt.Time
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}
