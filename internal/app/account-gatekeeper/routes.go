// Package accountgatekeeper предоставляет маршруты сервиса аутентификации.
package accountgatekeeper

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/account-gatekeeper/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/account-gatekeeper/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/account-gatekeeper/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/account-gatekeeper/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/account-gatekeeper/internal/http/handlers/health"
	"github.com/magabrotheeeer/account-gatekeeper/internal/http/handlers/stats/attempts"
	"github.com/magabrotheeeer/account-gatekeeper/internal/http/handlers/stats/userscount"
	"github.com/magabrotheeeer/account-gatekeeper/internal/http/middlewarectx"
	services "github.com/magabrotheeeer/account-gatekeeper/internal/services/auth"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *services.AuthService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.With(middlewarectx.RateLimitMiddleware(logger)).
			Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/health", health.New(logger, Version).ServeHTTP)
		r.Get("/users/count", userscount.New(logger, authService).ServeHTTP)

		// Группа с проверкой сессии
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(authService, logger))
			r.Get("/me", me.New(logger, authService).ServeHTTP)
			r.Post("/logout", logout.New(logger, authService).ServeHTTP)
			r.Get("/login-attempts/{username}", attempts.New(logger, authService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
