package repository

import "errors"

// Ошибки хранилища, различимые бизнес-логикой.
var (
	// ErrUserNotFound — пользователь с таким username не существует.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken — имя пользователя уже занято другим аккаунтом.
	ErrUsernameTaken = errors.New("username already taken")
)
