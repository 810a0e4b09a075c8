// Package accountgatekeeper собирает сервис аутентификации: хранилище,
// реестр сессий, публикацию событий безопасности, политику и HTTP-сервер.
package accountgatekeeper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/account-gatekeeper/internal/config"
	"github.com/magabrotheeeer/account-gatekeeper/internal/lib/clock"
	"github.com/magabrotheeeer/account-gatekeeper/internal/lib/jwt"
	"github.com/magabrotheeeer/account-gatekeeper/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/account-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/account-gatekeeper/internal/migrations"
	services "github.com/magabrotheeeer/account-gatekeeper/internal/services/auth"
	"github.com/magabrotheeeer/account-gatekeeper/internal/sessions"
	"github.com/magabrotheeeer/account-gatekeeper/internal/storage/repository"
)

// Version сервиса, отдается в /health.
const Version = "1.0.0"

// App инкапсулирует запущенные компоненты сервиса.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	rabbitConn *amqp.Connection
}

// New создает приложение: подключает PostgreSQL и Redis, применяет миграции,
// настраивает публикацию событий безопасности и маршруты HTTP.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	sessionStore, err := sessions.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// Публикация событий безопасности опциональна: без RabbitMQ сервис
	// работает, события остаются только в журнале попыток входа.
	var events services.EventPublisher
	var rabbitConn *amqp.Connection
	if cfg.RabbitConnectionString != "" {
		rabbitConn, err = rabbitmq.Connect(cfg.RabbitConnectionString, 5, 2*time.Second)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetSecurityQueues())
		if err != nil {
			return nil, err
		}
		events = rabbitmq.NewPublisher(ch)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService, err := services.NewAuthService(logger, db, db, sessionStore,
		jwtMaker, events, clock.System{}, cfg.AuthPolicy, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		rabbitConn: rabbitConn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Error("failed to close database", sl.Err(cerr))
		}
		if a.rabbitConn != nil {
			if cerr := a.rabbitConn.Close(); cerr != nil {
				a.logger.Error("failed to close rabbitmq connection", sl.Err(cerr))
			}
		}
		return err
	}
}
