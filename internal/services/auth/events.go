package services

import "time"

// SecurityEvent — событие безопасности, публикуемое во внешний мониторинг.
type SecurityEvent struct {
	Username  string    `json:"username"`
	IPAddress string    `json:"ip_address,omitempty"`
	Success   bool      `json:"success"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
