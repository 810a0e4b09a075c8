package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/account-gatekeeper/internal/models"
)

// RegisterUser сохраняет нового пользователя и возвращает его ID.
// Проверка уникальности username и вставка выполняются одним запросом:
// конкурентная регистрация того же имени получает ErrUsernameTaken.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (username, email, password_hash)
			  VALUES ($1, $2, $3)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash).Scan(&newID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", fmt.Errorf("%s: %w", op, ErrUsernameTaken)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, password_hash, failed_login_count,
			      lockout_until, created_at, last_login
			  FROM users
			  WHERE username = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, username)

	var lockoutUntil, lastLogin sql.NullTime
	if err := row.Scan(&u.UUID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FailedLoginCount, &lockoutUntil, &u.CreatedAt, &lastLogin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if lockoutUntil.Valid {
		u.LockoutUntil = &lockoutUntil.Time
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return u, nil
}

// RecordLoginFailure увеличивает счётчик неудачных входов и, если новый
// счётчик достиг порога lockThreshold, выставляет lockout_until = lockUntil.
// Инкремент, сравнение с порогом и выставление блокировки выполняются
// одним UPDATE: два конкурентных отказа не могут оба прочитать старый
// счётчик и пропустить переход в блокировку. Возвращает новое значение счётчика.
func (s *Storage) RecordLoginFailure(ctx context.Context, username string, lockThreshold int, lockUntil time.Time) (int, error) {
	const op = "storage.RecordLoginFailure"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET failed_login_count = failed_login_count + 1,
			      lockout_until = CASE
			          WHEN failed_login_count + 1 >= $2 THEN $3
			          ELSE lockout_until
			      END
			  WHERE username = $1
			  RETURNING failed_login_count;`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, username, lockThreshold, lockUntil).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ResetLoginFailures сбрасывает счётчик неудачных входов, снимает блокировку
// и фиксирует время последнего успешного входа.
func (s *Storage) ResetLoginFailures(ctx context.Context, username string, lastLogin time.Time) error {
	const op = "storage.ResetLoginFailures"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET failed_login_count = 0,
			      lockout_until = NULL,
			      last_login = $2
			  WHERE username = $1`
	res, err := s.DB.ExecContext(ctx, query, username, lastLogin)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// CountUsers возвращает общее количество зарегистрированных пользователей.
func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	const op = "storage.CountUsers"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
