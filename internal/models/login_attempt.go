package models

import "time"

// LoginAttempt представляет одну попытку входа, записываемую в журнал
// безопасности независимо от её исхода.
type LoginAttempt struct {
	ID        int64     // Идентификатор записи
	Username  string    // Имя пользователя, указанное в попытке
	IPAddress string    // IP-адрес клиента
	Success   bool      // Признак успешного входа
	Reason    string    // Причина отказа: invalid_credentials, account_locked; пусто при успехе
	CreatedAt time.Time // Время попытки
}
