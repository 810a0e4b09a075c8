package services

import "errors"

// Ошибки политики аутентификации. Все они — ожидаемые пользовательские
// исходы, а не сбои: ошибки инфраструктуры (БД, Redis, RabbitMQ)
// возвращаются отдельно и под эту таксономию не маскируются.
var (
	// Ошибки регистрации.
	ErrInvalidUsername   = errors.New("invalid username")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrWeakPassword      = errors.New("weak password")
	ErrPasswordMismatch  = errors.New("passwords do not match")

	// Ошибки входа. ErrInvalidCredentials намеренно не различает
	// "нет такого пользователя" и "неверный пароль".
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")

	// ErrInvalidSession — токен не прошел проверку или сессия отозвана.
	ErrInvalidSession = errors.New("invalid or revoked session")
)

// Причины отказа в журнале попыток входа.
const (
	reasonInvalidCredentials = "invalid_credentials"
	reasonAccountLocked      = "account_locked"
)
