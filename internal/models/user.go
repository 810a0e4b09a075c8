// Package models содержит доменную модель учётной записи пользователя,
// включающую данные аккаунта, хэш пароля и состояние защиты от перебора.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID             string     // Уникальный идентификатор пользователя
	Username         string     // Имя пользователя (уникальное, неизменяемое)
	Email            string     // Электронная почта
	PasswordHash     string     // Хэш пароля пользователя, никогда не пустой
	FailedLoginCount int        // Счётчик неудачных попыток входа подряд
	LockoutUntil     *time.Time // Время, до которого аккаунт заблокирован; nil — блокировки нет
	CreatedAt        time.Time  // Дата регистрации
	LastLogin        *time.Time // Время последнего успешного входа
}

// Locked сообщает, действует ли блокировка аккаунта на момент now.
func (u *User) Locked(now time.Time) bool {
	return u.LockoutUntil != nil && now.Before(*u.LockoutUntil)
}
