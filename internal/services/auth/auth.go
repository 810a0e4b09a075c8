// Package services содержит политику аутентификации: валидацию регистрации,
// проверку учетных данных, выпуск сессий и защиту от перебора пароля
// через временную блокировку аккаунта.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/account-gatekeeper/internal/config"
	"github.com/magabrotheeeer/account-gatekeeper/internal/lib/clock"
	"github.com/magabrotheeeer/account-gatekeeper/internal/lib/jwt"
	"github.com/magabrotheeeer/account-gatekeeper/internal/lib/metrics"
	"github.com/magabrotheeeer/account-gatekeeper/internal/lib/password"
	"github.com/magabrotheeeer/account-gatekeeper/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/account-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/account-gatekeeper/internal/models"
	"github.com/magabrotheeeer/account-gatekeeper/internal/storage/repository"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его ID.
	// Проверка уникальности username и вставка атомарны.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает пользователя по имени или
	// repository.ErrUserNotFound, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// RecordLoginFailure атомарно увеличивает счётчик неудачных входов и
	// выставляет блокировку при достижении порога; возвращает новый счётчик.
	RecordLoginFailure(ctx context.Context, username string, lockThreshold int, lockUntil time.Time) (int, error)

	// ResetLoginFailures сбрасывает счётчик и блокировку после успешного входа.
	ResetLoginFailures(ctx context.Context, username string, lastLogin time.Time) error

	// CountUsers возвращает общее количество аккаунтов.
	CountUsers(ctx context.Context) (int, error)
}

// AttemptRepository описывает журнал попыток входа.
type AttemptRepository interface {
	InsertLoginAttempt(ctx context.Context, attempt models.LoginAttempt) error
	ListLoginAttempts(ctx context.Context, username string, limit int) ([]models.LoginAttempt, error)
}

// SessionStore описывает реестр активных сессий.
type SessionStore interface {
	Save(ctx context.Context, sessionID, username string, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (string, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// EventPublisher публикует события безопасности во внешний мониторинг.
type EventPublisher interface {
	Publish(routingKey string, event any) error
}

// RegisterRequest — входные данные регистрации.
type RegisterRequest struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// AuthService отвечает за регистрацию, вход, блокировку при переборе
// и жизненный цикл сессий.
type AuthService struct {
	log      *slog.Logger
	users    UserRepository
	attempts AttemptRepository
	sessions SessionStore
	jwtMaker jwt.Maker
	events   EventPublisher // nil — публикация событий выключена
	clk      clock.Clock
	policy   config.AuthPolicy
	tokenTTL time.Duration

	rules []registrationRule

	// Хэш несуществующего пароля: сравнение с ним выравнивает время ответа
	// для неизвестного username с веткой неверного пароля.
	dummyHash string
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(log *slog.Logger, users UserRepository, attempts AttemptRepository,
	sessions SessionStore, jwtMaker jwt.Maker, events EventPublisher,
	clk clock.Clock, policy config.AuthPolicy, tokenTTL time.Duration) (*AuthService, error) {
	dummyHash, err := password.GetHash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	s := &AuthService{
		log:       log,
		users:     users,
		attempts:  attempts,
		sessions:  sessions,
		jwtMaker:  jwtMaker,
		events:    events,
		clk:       clk,
		policy:    policy,
		tokenTTL:  tokenTTL,
		dummyHash: dummyHash,
	}
	s.rules = s.registrationRules()
	return s, nil
}

// Register проверяет данные регистрации по упорядоченной цепочке правил
// и создает аккаунт с нулевым счётчиком неудачных входов и без блокировки.
// Возвращается первая нарушенная ошибка таксономии регистрации.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	for _, rule := range s.rules {
		if err := rule.check(ctx, req); err != nil {
			return nil, err
		}
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		// Гонка конкурентной регистрации того же имени: уникальность
		// гарантирует хранилище, здесь она переводится в доменную ошибку.
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	user.UUID = uid
	user.CreatedAt = s.clk.Now()

	metrics.RegistrationsTotal.Inc()
	s.publish(rabbitmq.RoutingKeyRegistration, SecurityEvent{
		Username:  user.Username,
		Success:   true,
		Timestamp: user.CreatedAt,
	})
	return &user, nil
}

// Login выполняет линейную последовательность решений по попытке входа:
// поиск аккаунта, проверка блокировки, проверка пароля, учёт неудачи или
// сброс счётчика и выпуск сессии. Каждая попытка записывается в журнал.
func (s *AuthService) Login(ctx context.Context, username, rawPassword, ip string) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Ответ для неизвестного username неотличим от неверного
			// пароля ни текстом, ни временем.
			_ = password.CompareHash(s.dummyHash, rawPassword)
			s.recordAttempt(ctx, username, ip, false, reasonInvalidCredentials)
			metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultInvalidCredentials).Inc()
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	now := s.clk.Now()
	if user.Locked(now) {
		s.recordAttempt(ctx, username, ip, false, reasonAccountLocked)
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultLocked).Inc()
		return "", ErrAccountLocked
	}

	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		count, ferr := s.users.RecordLoginFailure(ctx, username,
			s.policy.MaxLoginAttempts, now.Add(s.policy.LockoutDuration))
		if ferr != nil {
			return "", ferr
		}
		s.recordAttempt(ctx, username, ip, false, reasonInvalidCredentials)
		if count >= s.policy.MaxLoginAttempts {
			metrics.LockoutsTotal.Inc()
			metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultLocked).Inc()
			s.publish(rabbitmq.RoutingKeyLockout, SecurityEvent{
				Username:  username,
				IPAddress: ip,
				Reason:    reasonAccountLocked,
				Timestamp: now,
			})
			return "", ErrAccountLocked
		}
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultInvalidCredentials).Inc()
		return "", ErrInvalidCredentials
	}

	if err := s.users.ResetLoginFailures(ctx, username, now); err != nil {
		return "", err
	}
	token, sessionID, err := s.jwtMaker.GenerateToken(username)
	if err != nil {
		return "", err
	}
	if err := s.sessions.Save(ctx, sessionID, username, s.tokenTTL); err != nil {
		return "", err
	}

	s.recordAttempt(ctx, username, ip, true, "")
	metrics.LoginAttemptsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	return token, nil
}

// Logout отзывает сессию, зашитую в токен. Повторный logout не ошибка.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return ErrInvalidSession
	}
	return s.sessions.Delete(ctx, claims.ID)
}

// ValidateToken проверяет подпись токена и наличие живой сессии,
// возвращает username — принципала сессии.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (string, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return "", ErrInvalidSession
	}
	username, ok, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidSession
	}
	return username, nil
}

// GetUser возвращает аккаунт по имени для отображения в кабинете.
func (s *AuthService) GetUser(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetUserByUsername(ctx, username)
}

// CountUsers возвращает общее количество зарегистрированных аккаунтов.
func (s *AuthService) CountUsers(ctx context.Context) (int, error) {
	return s.users.CountUsers(ctx)
}

// ListLoginAttempts возвращает последние попытки входа для username.
func (s *AuthService) ListLoginAttempts(ctx context.Context, username string, limit int) ([]models.LoginAttempt, error) {
	return s.attempts.ListLoginAttempts(ctx, username, limit)
}

// recordAttempt пишет попытку входа в журнал и публикует событие.
// Отказ журнала не меняет решение по аутентификации, только логируется.
func (s *AuthService) recordAttempt(ctx context.Context, username, ip string, success bool, reason string) {
	attempt := models.LoginAttempt{
		Username:  username,
		IPAddress: ip,
		Success:   success,
		Reason:    reason,
		CreatedAt: s.clk.Now(),
	}
	if err := s.attempts.InsertLoginAttempt(ctx, attempt); err != nil {
		s.log.Error("failed to record login attempt", sl.Err(err))
	}
	s.publish(rabbitmq.RoutingKeyLoginAttempt, SecurityEvent{
		Username:  username,
		IPAddress: ip,
		Success:   success,
		Reason:    reason,
		Timestamp: attempt.CreatedAt,
	})
}

func (s *AuthService) publish(routingKey string, event SecurityEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(routingKey, event); err != nil {
		s.log.Error("failed to publish security event", sl.Err(err))
	}
}
