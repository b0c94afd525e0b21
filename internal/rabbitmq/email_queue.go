package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/speechtospeechai/accounts-service/internal/models"
)

// EmailPublisher публикует почтовые задания в очередь emails.outgoing.
type EmailPublisher struct {
	ch *amqp.Channel
}

// NewEmailPublisher создает новый экземпляр EmailPublisher.
func NewEmailPublisher(ch *amqp.Channel) *EmailPublisher {
	return &EmailPublisher{ch: ch}
}

// Publish отправляет задание в exchange emails.
func (p *EmailPublisher) Publish(job models.EmailJob) error {
	return PublishMessage(p.ch, EmailExchange, OutgoingRoutingKey, job)
}
