package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/traderefer/settlement/internal/entity"
)

// Worker consome os eventos de comissão e materializa o ledger do referrer.
// Desacoplado do resto do core: só conhece o canal e o repositório de earnings.
type Worker struct {
	Channel  *amqp.Channel
	Earnings entity.EarningRepositoryInterface
}

func NewWorker(ch *amqp.Channel, earnings entity.EarningRepositoryInterface) *Worker {
	return &Worker{
		Channel:  ch,
		Earnings: earnings,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		log.Fatalf("❌ Falha ao registrar consumidor RabbitMQ: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload CommissionPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] JSON inválido: %s", err)
				// Mensagem podre (malformada). Rejeita sem requeue para não travar a fila.
				d.Nack(false, false)
				continue
			}

			if err := w.processMessage(context.Background(), payload); err != nil {
				log.Printf("❌ [WORKER] Erro ao registrar comissão do lead %s: %s", payload.LeadID, err)
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Worker de comissões aguardando na fila '%s'", queueName)
	<-forever
}

func (w *Worker) processMessage(ctx context.Context, payload CommissionPayload) error {
	if payload.ReferrerID == "" {
		// Lead orgânico: não há comissão a lançar. Ack e segue.
		log.Printf("ℹ️ [WORKER] Lead %s confirmado sem referrer, sem lançamento", payload.LeadID)
		return nil
	}

	earning := entity.NewAvailableEarning(
		payload.ReferrerID,
		payload.LeadID,
		payload.GrossCents,
		payload.PlatformCutCents,
	)

	if err := w.Earnings.Create(ctx, earning); err != nil {
		return err
	}

	log.Printf("✅ [WORKER] Comissão de %d¢ liberada para referrer %s (lead %s)",
		payload.GrossCents, payload.ReferrerID, payload.LeadID)
	return nil
}
