// Package metrics содержит счётчики Prometheus для операций аутентификации.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Значения метки result для LoginAttemptsTotal.
const (
	ResultSuccess            = "success"
	ResultInvalidCredentials = "invalid_credentials"
	ResultLocked             = "locked"
)

var (
	// RegistrationsTotal — количество успешных регистраций.
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gatekeeper_registrations_total",
		Help: "Total number of successfully registered accounts.",
	})

	// LoginAttemptsTotal — количество попыток входа по исходам.
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekeeper_login_attempts_total",
		Help: "Total number of login attempts by result.",
	}, []string{"result"})

	// LockoutsTotal — количество срабатываний блокировки аккаунта.
	LockoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gatekeeper_lockouts_total",
		Help: "Total number of account lockout transitions.",
	})
)
