package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// LeadAssignedPayload é publicado após o commit de uma atribuição.
type LeadAssignedPayload struct {
	LeadID           string    `json:"lead_id"`
	CompanyName      string    `json:"company_name"`
	ResponsavelID    string    `json:"responsavel_id"`
	ResponsavelName  string    `json:"responsavel_name"`
	ResponsavelEmail string    `json:"responsavel_email"`
	AssignedByName   string    `json:"assigned_by_name"`
	Notes            string    `json:"notes,omitempty"`
	AssignedAt       time.Time `json:"assigned_at"`
}

// Publisher é o subconjunto de *amqp.Channel usado pelo producer.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadAssigned(ctx context.Context, payload LeadAssignedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    payload.LeadID,
			Timestamp:    payload.AssignedAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}
	return nil
}
