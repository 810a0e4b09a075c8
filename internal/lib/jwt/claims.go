// Package jwt реализует генерацию и парсинг сессионных JWT токенов.
//
// Maker определяет интерфейс для выпуска и проверки токенов, привязанных
// к username; MakerImpl — конкретная реализация с секретным ключом и TTL.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для выпуска и парсинга сессионных токенов.
//
// GenerateToken выпускает токен для username и возвращает также
// идентификатор сессии, под которым токен учитывается в хранилище сессий.
type Maker interface {
	GenerateToken(username string) (token, sessionID string, err error)
	ParseToken(tokenStr string) (*SessionClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// TokenTTL возвращает время жизни выпускаемых токенов.
func (j *MakerImpl) TokenTTL() time.Duration {
	return j.tokenTTL
}
