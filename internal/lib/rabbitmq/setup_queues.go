package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// SecurityExchange — exchange, в который публикуются события безопасности.
const SecurityExchange = "security.events"

// Ключи маршрутизации событий безопасности.
const (
	RoutingKeyLoginAttempt = "login.attempt"
	RoutingKeyLockout      = "account.lockout"
	RoutingKeyRegistration = "user.registered"
)

// QueueConfig описывает очередь и ключ маршрутизации, на который она подписана.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetSecurityQueues возвращает очереди для воркеров мониторинга безопасности.
func GetSecurityQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "security.login-attempts", RoutingKey: RoutingKeyLoginAttempt},
		{QueueName: "security.lockouts", RoutingKey: RoutingKeyLockout},
		{QueueName: "security.registrations", RoutingKey: RoutingKeyRegistration},
	}
}

// SetupChannel открывает канал, объявляет exchange событий безопасности
// и привязывает к нему очереди.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	err = ch.ExchangeDeclare(
		SecurityExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.QueueName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}

		err = ch.QueueBind(
			q.QueueName,
			q.RoutingKey,
			SecurityExchange,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, q.QueueName, err)
		}
	}

	return ch, nil
}
