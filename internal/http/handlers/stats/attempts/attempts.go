// Package attempts реализует HTTP-обработчик чтения журнала попыток входа
// для мониторинга безопасности.
package attempts

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/account-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/account-gatekeeper/internal/models"
)

// defaultLimit — количество последних попыток, отдаваемых за один запрос.
const defaultLimit = 10

// Service описывает интерфейс чтения журнала попыток входа.
type Service interface {
	ListLoginAttempts(ctx context.Context, username string, limit int) ([]models.LoginAttempt, error)
}

// Handler обрабатывает запросы журнала попыток входа.
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

// attemptView — представление записи журнала в JSON-ответе.
type attemptView struct {
	Username  string `json:"username"`
	IPAddress string `json:"ip_address"`
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.stats.attempts"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username := chi.URLParam(r, "username")
	if username == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("username is required"))
		return
	}

	list, err := h.authService.ListLoginAttempts(r.Context(), username, defaultLimit)
	if err != nil {
		log.Error("failed to list login attempts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("database error"))
		return
	}

	views := make([]attemptView, 0, len(list))
	for _, a := range list {
		views = append(views, attemptView{
			Username:  a.Username,
			IPAddress: a.IPAddress,
			Success:   a.Success,
			Reason:    a.Reason,
			Timestamp: a.CreatedAt.Format(time.RFC3339),
		})
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"username": username,
		"attempts": views,
	}))
}
