package rabbitmq

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// EmailExchange имя exchange почтовых заданий.
const EmailExchange = "emails"

// OutgoingRoutingKey ключ маршрутизации исходящих писем аккаунтов.
const OutgoingRoutingKey = "outgoing"

func GetEmailQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "emails.outgoing", RoutingKey: OutgoingRoutingKey},
	}
}
