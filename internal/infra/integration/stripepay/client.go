package stripepay

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"github.com/traderefer/settlement/internal/usecase"
)

// Client implementa o Payment Processor Adapter sobre PaymentIntents do
// Stripe. Sem estado local: o intent vive no Stripe, aqui só criamos e
// observamos. A idempotência fica por conta da Idempotency-Key do Stripe:
// a mesma chave devolve o mesmo intent por 24h em vez de cobrar de novo.
type Client struct {
	configured bool
	currency   string
	timeout    time.Duration
}

func NewClient(secretKey, currency string) *Client {
	if secretKey != "" {
		stripe.Key = secretKey
	}
	if currency == "" {
		currency = "aud"
	}
	return &Client{
		configured: secretKey != "",
		currency:   currency,
		timeout:    15 * time.Second,
	}
}

func (c *Client) CreateOrReuseIntent(ctx context.Context, leadID string, amountCents int, idempotencyKey string) (*usecase.IntentResult, error) {
	if !c.configured {
		// Gateway sem chave: outcome explícito, não um requires_payment falso.
		return &usecase.IntentResult{Outcome: usecase.OutcomeMisconfigured}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:   stripe.Int64(int64(amountCents)),
		Currency: stripe.String(c.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("lead_id", leadID)
	params.SetIdempotencyKey(idempotencyKey)

	pi, err := paymentintent.New(params)
	if err != nil {
		if declined(err) {
			return &usecase.IntentResult{Outcome: usecase.OutcomeFailed}, nil
		}
		// Timeout e erro de rede contam como failed para o caller: nunca fica
		// ambíguo, e repetir com a mesma chave é seguro.
		log.Printf("❌ erro Stripe ao criar intent do lead %s: %v", leadID, err)
		return nil, err
	}

	return &usecase.IntentResult{
		IntentRef:    pi.ID,
		ClientSecret: pi.ClientSecret,
		Outcome:      mapStatus(pi.Status),
	}, nil
}

func (c *Client) GetIntent(ctx context.Context, intentRef string) (*usecase.IntentResult, error) {
	if !c.configured {
		return &usecase.IntentResult{Outcome: usecase.OutcomeMisconfigured}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	pi, err := paymentintent.Get(intentRef, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, err
	}

	return &usecase.IntentResult{
		IntentRef:    pi.ID,
		ClientSecret: pi.ClientSecret,
		Outcome:      mapStatus(pi.Status),
	}, nil
}

func mapStatus(s stripe.PaymentIntentStatus) usecase.Outcome {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return usecase.OutcomeSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return usecase.OutcomeCanceled
	case stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresCapture,
		stripe.PaymentIntentStatusProcessing:
		// Cliente ainda precisa completar o passo interativo (ou o Stripe
		// ainda está processando): para o core é tudo "pagamento pendente".
		return usecase.OutcomeRequiresPayment
	default:
		return usecase.OutcomeFailed
	}
}

func declined(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.Type == stripe.ErrorTypeCard
	}
	return false
}
