// Package clock определяет абстракцию текущего времени.
// Политика блокировки аккаунтов зависит от "сейчас", поэтому время
// передаётся как зависимость, а не читается напрямую из time.Now —
// тесты истечения блокировки становятся детерминированными.
package clock

import "time"

// Clock возвращает текущее время.
type Clock interface {
	Now() time.Time
}

// System — реализация Clock поверх системных часов.
type System struct{}

// Now возвращает текущее системное время в UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}
