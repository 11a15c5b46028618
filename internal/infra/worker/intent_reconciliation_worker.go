package worker

import (
	"context"
	"log"
	"time"

	"github.com/traderefer/settlement/internal/entity"
	"github.com/traderefer/settlement/internal/usecase"
)

// IntentReconciliationWorker é a varredura de higiene: leads pré-unlock com
// um intent pendente há tempo demais são reconferidos no gateway. Intent
// cancelado ou morto tem a referência limpa, assim a próxima tentativa de
// unlock cunha um intent novo. Não afeta corretude: um unlock concorrente
// sempre ganha via UPDATE condicional.
type IntentReconciliationWorker struct {
	leads         entity.LeadRepositoryInterface
	gateway       usecase.PaymentGateway
	abandonWindow time.Duration
	tickInterval  time.Duration
}

func NewIntentReconciliationWorker(leads entity.LeadRepositoryInterface, gateway usecase.PaymentGateway) *IntentReconciliationWorker {
	return &IntentReconciliationWorker{
		leads:         leads,
		gateway:       gateway,
		abandonWindow: 4 * time.Hour,
		tickInterval:  15 * time.Minute,
	}
}

func (w *IntentReconciliationWorker) Start(ctx context.Context) {
	log.Printf("🕒 Reconciliation worker iniciado (janela de %s)", w.abandonWindow)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Reconciliation worker encerrado")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *IntentReconciliationWorker) sweep(ctx context.Context) {
	stale, err := w.leads.FindStalePendingIntents(ctx, w.abandonWindow)
	if err != nil {
		log.Printf("❌ Erro ao buscar intents pendentes: %v", err)
		return
	}

	abandoned := 0
	for _, lead := range stale {
		result, err := w.gateway.GetIntent(ctx, lead.PaymentIntentRef)
		if err != nil {
			log.Printf("⚠️ Erro ao consultar intent %s: %v", lead.PaymentIntentRef, err)
			continue
		}

		switch result.Outcome {
		case usecase.OutcomeCanceled, usecase.OutcomeFailed:
			if err := w.leads.ClearIntentRef(ctx, lead.ID); err != nil {
				// ErrConflict aqui só significa que o lead saiu do pré-unlock
				// no meio da varredura; nada a fazer.
				continue
			}
			log.Printf("⏱️ Intent abandonado: lead=%s intent=%s elapsed=%s",
				lead.ID, lead.PaymentIntentRef, time.Since(*lead.IntentStartedAt).Round(time.Minute))
			abandoned++
		}
	}

	if abandoned > 0 {
		log.Printf("✅ %d intent(s) pendente(s) marcados como abandonados", abandoned)
	}
}
