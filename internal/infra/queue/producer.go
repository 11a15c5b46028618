package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// CommissionPayload é o evento "comissão liberada", emitido quando um lead
// vira CONFIRMED. Qualquer colaborador (ledger, UI, webhook) pode assinar.
type CommissionPayload struct {
	LeadID           string    `json:"lead_id"`
	BusinessID       string    `json:"business_id"`
	ReferrerID       string    `json:"referrer_id,omitempty"`
	GrossCents       int       `json:"gross_cents"`
	PlatformCutCents int       `json:"platform_cut_cents"`
	ConfirmedAt      time.Time `json:"confirmed_at"`
}

type QueueProducerInterface interface {
	PublishCommission(ctx context.Context, payload CommissionPayload) error
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishCommission(ctx context.Context, payload CommissionPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %v", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // Mensagem salva no disco (segurança!)
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %v", err)
	}

	return nil
}
