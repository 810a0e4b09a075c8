// Package middlewarectx содержит HTTP middleware для проверки сессионных токенов.
//
// SessionMiddleware проверяет наличие и валидность токена в заголовке
// Authorization, сверяет сессию с реестром активных сессий через сервис
// аутентификации и в случае успеха добавляет в контекст имя пользователя
// для дальнейшего использования в обработчиках.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/account-gatekeeper/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User — ключ для имени пользователя в контексте.
const User Key = "username"

// SessionValidator описывает интерфейс сервиса для проверки сессионного токена.
type SessionValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

// SessionMiddleware возвращает HTTP middleware, который проверяет сессионный
// токен в заголовке Authorization.
//
// Если токен валиден и сессия активна, добавляет имя пользователя в контекст
// запроса, иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func SessionMiddleware(authService SessionValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			username, err := authService.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Error("invalid or revoked session", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired session"))
				return
			}
			ctx := context.WithValue(r.Context(), User, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
