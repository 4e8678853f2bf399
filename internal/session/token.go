package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims поля access токена, которые выпускает сервис пользователей.
// Подпись на клиенте не проверяется: ключа у клиента нет, это делает API.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64    `json:"userId,omitempty"`
	Role   string   `json:"role,omitempty"`
	Roles  []string `json:"roles,omitempty"`
}

// parseClaims разбирает токен без проверки подписи. ok=false, если это не JWT.
func parseClaims(token string) (*Claims, bool) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// expired true, если токен является JWT с exp в прошлом.
// Непрозрачные токены считаются действующими до первого 401.
func expired(token string, now time.Time) bool {
	claims, ok := parseClaims(token)
	if !ok || claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
