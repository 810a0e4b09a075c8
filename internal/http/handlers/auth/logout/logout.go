// Package logout реализует HTTP-обработчик завершения сессии.
package logout

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

// Service описывает интерфейс отзыва сессии.
type Service interface {
	Logout(ctx context.Context, token string) error
}

// Handler обрабатывает HTTP-запросы завершения сессии.
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

// ServeHTTP отзывает сессию из заголовка Authorization.
// Маршрут защищён SessionMiddleware, поэтому токен здесь всегда валиден.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.authService.Logout(r.Context(), token); err != nil {
		log.Error("logout failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("logout failed"))
		return
	}

	log.Info("session revoked")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "you have been logged out successfully",
	}))
}
