package usecase

import (
	"context"

	"github.com/traderefer/settlement/internal/entity"
	"github.com/traderefer/settlement/internal/infra/queue"
)

// Outcome é o último estado conhecido de um payment intent, observado via
// gateway. O intent em si pertence ao gateway; aqui só lemos.
type Outcome string

const (
	OutcomeRequiresPayment Outcome = "requires_payment"
	OutcomeSucceeded       Outcome = "succeeded"
	OutcomeFailed          Outcome = "failed"
	OutcomeCanceled        Outcome = "canceled"

	// OutcomeMisconfigured: gateway sem credenciais. Distinto de
	// requires_payment para o caller não confundir um gateway morto com um
	// pagamento pendente de verdade.
	OutcomeMisconfigured Outcome = "misconfigured"
)

type IntentResult struct {
	IntentRef    string
	ClientSecret string
	Outcome      Outcome
}

// PaymentGateway abstrai o processador de pagamento externo. CreateOrReuseIntent
// é idempotente: a mesma idempotencyKey devolve o mesmo intent em vez de
// cobrar duas vezes: é ela que serializa chamadas que cruzam a rede.
type PaymentGateway interface {
	CreateOrReuseIntent(ctx context.Context, leadID string, amountCents int, idempotencyKey string) (*IntentResult, error)
	GetIntent(ctx context.Context, intentRef string) (*IntentResult, error)
}

type QueueProducerInterface interface {
	PublishCommission(ctx context.Context, payload queue.CommissionPayload) error
}

// EmailService dispara as notificações de settlement. Sempre best-effort,
// fora do caminho da request.
type EmailService interface {
	SendLeadUnlocked(to, businessName string, lead *entity.Lead) error
	SendOnTheWay(to, consumerName, businessName string) error
}
