// Package me реализует HTTP-обработчик личного кабинета:
// возвращает данные аккаунта текущего принципала сессии.
package me

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/account-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/account-gatekeeper/internal/models"
)

// Service описывает интерфейс чтения аккаунта.
type Service interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
}

// Handler обрабатывает HTTP-запросы личного кабинета.
type Handler struct {
	log         *slog.Logger
	authService Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
	}
}

// ServeHTTP возвращает данные аккаунта пользователя из контекста сессии.
// Хэш пароля и состояние блокировки наружу не отдаются.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	user, err := h.authService.GetUser(r.Context(), username)
	if err != nil {
		log.Error("failed to get user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	data := map[string]any{
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastLogin != nil {
		data["last_login"] = user.LastLogin.Format(time.RFC3339)
	}
	render.JSON(w, r, response.OKWithData(data))
}
