// Package userscount реализует HTTP-обработчик подсчёта зарегистрированных аккаунтов.
package userscount

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/account-gatekeeper/internal/lib/sl"
)

// Service описывает интерфейс подсчёта аккаунтов.
type Service interface {
	CountUsers(ctx context.Context) (int, error)
}

// Handler обрабатывает запросы количества пользователей.
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

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stats.userscount"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	count, err := h.authService.CountUsers(r.Context())
	if err != nil {
		log.Error("failed to count users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("database error"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"user_count": count,
	}))
}
