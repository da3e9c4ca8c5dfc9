// Package jwt реализует выдачу и проверку токенов сессии.
//
// Токен несёт идентификатор пользователя, роль и jti. По jti сервис сессий
// находит запись в Redis, поэтому отзыв сессии не требует списка отозванных токенов.
package jwt

import (
	"time"
)

// Maker описывает выдачу и разбор токенов сессии.
type Maker interface {
	// GenerateToken возвращает подписанный токен и его jti.
	GenerateToken(userID, role string) (token string, jti string, err error)
	// ParseToken проверяет подпись и срок действия и возвращает claims.
	ParseToken(tokenStr string) (*Claims, error)
}

// MakerImpl подписывает токены HS256 общим секретом.
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// TTL возвращает время жизни выдаваемых токенов.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
