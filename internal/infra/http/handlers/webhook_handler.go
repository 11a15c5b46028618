package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/traderefer/settlement/internal/usecase"
)

const maxWebhookBody = 65536

// WebhookHandler finaliza unlocks pelo caminho assíncrono: o Stripe avisa que
// o intent foi pago e convergimos para a mesma transição condicional do fluxo
// síncrono. Corrida com um Unlock em polling é inofensiva: um dos dois perde
// o UPDATE e trata como sucesso idempotente.
type WebhookHandler struct {
	UnlockUC      *usecase.UnlockLeadUseCase
	WebhookSecret string
}

func NewWebhookHandler(unlockUC *usecase.UnlockLeadUseCase, webhookSecret string) *WebhookHandler {
	if webhookSecret == "" {
		// Sem secret todo evento é aceito sem verificar, num caminho que
		// movimenta dinheiro. Aceitável só em dev.
		log.Println("⚠️ STRIPE_WEBHOOK_SECRET ausente: webhooks serão aceitos SEM verificação de assinatura")
	}
	return &WebhookHandler{
		UnlockUC:      unlockUC,
		WebhookSecret: webhookSecret,
	}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Bad payload", http.StatusBadRequest)
		return
	}

	var event stripe.Event
	if h.WebhookSecret != "" {
		event, err = webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.WebhookSecret)
		if err != nil {
			log.Printf("❌ assinatura de webhook inválida: %v", err)
			http.Error(w, "Invalid signature", http.StatusBadRequest)
			return
		}
	} else {
		// Dev sem secret configurado: aceita sem verificar.
		if err := json.Unmarshal(payload, &event); err != nil {
			http.Error(w, "Bad JSON", http.StatusBadRequest)
			return
		}
	}

	if event.Type != "payment_intent.succeeded" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		http.Error(w, "Bad event data", http.StatusBadRequest)
		return
	}

	leadID := intent.Metadata["lead_id"]
	if leadID == "" {
		// Intent de outro produto; não é nosso.
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.UnlockUC.Finalize(r.Context(), leadID, intent.ID); err != nil {
		log.Printf("❌ falha ao finalizar unlock do lead %s via webhook: %v", leadID, err)
		// 500 faz o Stripe reentregar o evento.
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Printf("💰 unlock do lead %s finalizado via webhook (intent %s)", leadID, intent.ID)
	w.WriteHeader(http.StatusOK)
}
