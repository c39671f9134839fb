package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"creatora-api/internal/domain"
)

var (
	ErrInvalidJWT = errors.New("invalid JWT token")
	ErrExpiredJWT = errors.New("JWT token expired")
)

// Claims описывает утверждения access-токена.
type Claims struct {
	Email string `json:"email"`
	Plan  string `json:"plan"`
	jwt.RegisteredClaims
}

// Principal переводит claims в доменного принципала.
func (c *Claims) Principal() domain.Principal {
	return domain.Principal{UserID: c.Subject, Email: c.Email, Plan: domain.Plan(c.Plan)}
}

// Issuer выпускает и проверяет HS256 токены.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer создаёт Issuer.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL возвращает срок жизни токена.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue создаёт токен для пользователя.
func (i *Issuer) Issue(user domain.User) (string, *Claims, error) {
	if len(i.secret) == 0 {
		return "", nil, errors.New("jwt secret is empty")
	}
	now := i.now()
	claims := &Claims{
		Email: user.Email,
		Plan:  string(user.Plan),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign jwt: %w", err)
	}
	return token, claims, nil
}

// Parse проверяет подпись и срок действия токена.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredJWT
		}
		return nil, ErrInvalidJWT
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidJWT
	}
	return claims, nil
}
