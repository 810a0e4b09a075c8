// Package sessions реализует реестр активных сессий поверх Redis.
// Сессия появляется при успешном входе, живёт не дольше TTL токена
// и удаляется при logout; middleware проверяет её наличие на каждый запрос.
package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/account-gatekeeper/internal/config"
)

const keyPrefix = "session:"

// Store хранит активные сессии в Redis.
type Store struct {
	Db *redis.Client
}

// InitServer подключается к Redis и возвращает Store.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Store, error) {
	const op = "sessions.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{Db: db}, nil
}

// Save регистрирует сессию sessionID для username со сроком жизни ttl.
func (s *Store) Save(ctx context.Context, sessionID, username string, ttl time.Duration) error {
	const op = "sessions.Save"
	if err := s.Db.Set(ctx, keyPrefix+sessionID, username, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Exists проверяет, активна ли сессия sessionID, и возвращает её принципала.
func (s *Store) Exists(ctx context.Context, sessionID string) (string, bool, error) {
	const op = "sessions.Exists"
	username, err := s.Db.Get(ctx, keyPrefix+sessionID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return username, true, nil
}

// Delete завершает сессию sessionID. Удаление несуществующей сессии не ошибка.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	const op = "sessions.Delete"
	if err := s.Db.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
