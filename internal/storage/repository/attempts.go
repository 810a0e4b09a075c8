package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/account-gatekeeper/internal/models"
)

// InsertLoginAttempt записывает попытку входа в журнал безопасности.
func (s *Storage) InsertLoginAttempt(ctx context.Context, attempt models.LoginAttempt) error {
	const op = "storage.InsertLoginAttempt"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO login_attempts (username, ip_address, success, reason)
			  VALUES ($1, $2, $3, $4);`
	if _, err := s.DB.ExecContext(ctx, query,
		attempt.Username, attempt.IPAddress, attempt.Success, attempt.Reason); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListLoginAttempts возвращает последние попытки входа для username,
// новые записи первыми.
func (s *Storage) ListLoginAttempts(ctx context.Context, username string, limit int) ([]models.LoginAttempt, error) {
	const op = "storage.ListLoginAttempts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, ip_address, success, reason, created_at
			  FROM login_attempts
			  WHERE username = $1
			  ORDER BY created_at DESC
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.LoginAttempt
	for rows.Next() {
		var a models.LoginAttempt
		if err = rows.Scan(&a.ID, &a.Username, &a.IPAddress, &a.Success,
			&a.Reason, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
