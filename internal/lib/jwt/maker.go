package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims описывает данные сессии, хранящиеся в JWT.
// Username — принципал сессии; идентификатор сессии лежит в стандартном
// поле ID (jti) и используется для отзыва при logout.
type SessionClaims struct {
	Username             string `json:"username"` // Имя пользователя
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ID, ExpiresAt, IssuedAt и пр.)
}

// GenerateToken создает сессионный JWT для username, подписывая его секретным ключом.
//
// Идентификатор сессии (jti) генерируется как UUID и возвращается отдельно,
// чтобы вызывающая сторона могла зарегистрировать сессию в хранилище.
func (j *MakerImpl) GenerateToken(username string) (string, string, error) {
	const op = "jwt.GenerateToken"
	sessionID := uuid.NewString()
	claims := SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, sessionID, nil
}

// ParseToken парсит JWT токен, проверяет его подпись и срок действия,
// возвращает SessionClaims с данными, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*SessionClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
