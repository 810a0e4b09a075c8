package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/magabrotheeeer/account-gatekeeper/internal/storage/repository"
)

// Формат имени пользователя и базовая форма email (local@domain.tld).
var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Спецсимволы, засчитываемые политикой сложности пароля.
const passwordSpecialChars = `!@#$%^&*(),.?":{}|<>`

// registrationRule — одно именованное правило валидации регистрации.
// Правила применяются строго по порядку, возвращается первая нарушенная.
type registrationRule struct {
	name  string
	check func(ctx context.Context, req RegisterRequest) error
}

// registrationRules строит упорядоченную цепочку правил регистрации.
// Порядок фиксирован: имя пользователя, уникальность, email, сложность
// пароля, подтверждение пароля.
func (s *AuthService) registrationRules() []registrationRule {
	return []registrationRule{
		{
			name: "username-shape",
			check: func(_ context.Context, req RegisterRequest) error {
				if len(req.Username) < s.policy.UsernameMinLen || len(req.Username) > s.policy.UsernameMaxLen {
					return fmt.Errorf("%w: length must be between %d and %d",
						ErrInvalidUsername, s.policy.UsernameMinLen, s.policy.UsernameMaxLen)
				}
				if !usernameRe.MatchString(req.Username) {
					return fmt.Errorf("%w: only letters, numbers and underscores are allowed", ErrInvalidUsername)
				}
				return nil
			},
		},
		{
			name: "username-unique",
			check: func(ctx context.Context, req RegisterRequest) error {
				_, err := s.users.GetUserByUsername(ctx, req.Username)
				if err == nil {
					return ErrDuplicateUsername
				}
				if errors.Is(err, repository.ErrUserNotFound) {
					return nil
				}
				return err
			},
		},
		{
			name: "email-shape",
			check: func(_ context.Context, req RegisterRequest) error {
				if !emailRe.MatchString(req.Email) {
					return ErrInvalidEmail
				}
				return nil
			},
		},
		{
			name: "password-strength",
			check: func(_ context.Context, req RegisterRequest) error {
				return s.checkPasswordStrength(req.Password)
			},
		},
		{
			name: "password-confirmation",
			check: func(_ context.Context, req RegisterRequest) error {
				if req.Password != req.ConfirmPassword {
					return ErrPasswordMismatch
				}
				return nil
			},
		},
	}
}

// checkPasswordStrength проверяет минимальную длину и наличие строчной
// и заглавной буквы, цифры и спецсимвола.
func (s *AuthService) checkPasswordStrength(pw string) error {
	if len(pw) < s.policy.PasswordMinLen {
		return fmt.Errorf("%w: must be at least %d characters long", ErrWeakPassword, s.policy.PasswordMinLen)
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	switch {
	case !hasUpper:
		return fmt.Errorf("%w: must contain at least one uppercase letter", ErrWeakPassword)
	case !hasLower:
		return fmt.Errorf("%w: must contain at least one lowercase letter", ErrWeakPassword)
	case !hasDigit:
		return fmt.Errorf("%w: must contain at least one digit", ErrWeakPassword)
	case !strings.ContainsAny(pw, passwordSpecialChars):
		return fmt.Errorf("%w: must contain at least one special character", ErrWeakPassword)
	}
	return nil
}
