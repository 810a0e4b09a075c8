// Package health реализует HTTP-обработчик проверки работоспособности сервиса.
package health

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-gatekeeper/internal/http/response"
)

// Handler обрабатывает запросы проверки работоспособности.
type Handler struct {
	log     *slog.Logger
	version string
}

// New создает новый экземпляр Handler с версией сервиса.
func New(log *slog.Logger, version string) *Handler {
	return &Handler{
		log:     log,
		version: version,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
	}))
}
