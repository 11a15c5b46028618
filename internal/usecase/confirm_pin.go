package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"regexp"
	"time"

	"github.com/traderefer/settlement/internal/entity"
	"github.com/traderefer/settlement/internal/infra/queue"
)

const (
	// Três erros seguidos travam o PIN do lead por 15 minutos.
	maxPinAttempts = 3
	pinLockWindow  = 15 * time.Minute
)

var pinFormat = regexp.MustCompile(`^[0-9]{4}$`)

type ConfirmPinUseCase struct {
	LeadRepo entity.LeadRepositoryInterface
	Queue    QueueProducerInterface
}

func NewConfirmPinUseCase(leadRepo entity.LeadRepositoryInterface, producer QueueProducerInterface) *ConfirmPinUseCase {
	return &ConfirmPinUseCase{
		LeadRepo: leadRepo,
		Queue:    producer,
	}
}

type ConfirmPinInput struct {
	LeadID     string
	BusinessID string
	PIN        string
}

// Execute valida o PIN do consumidor e, no acerto, faz ON_THE_WAY ->
// CONFIRMED e emite o evento de comissão liberada. O PIN é o que impede o
// negócio de auto-confirmar um serviço que nunca aconteceu.
func (uc *ConfirmPinUseCase) Execute(ctx context.Context, input ConfirmPinInput) (*StatusOutput, error) {
	// Pré-condição de formato, antes de tocar na máquina de estados.
	if !pinFormat.MatchString(input.PIN) {
		return nil, NewDomainError(CodeValidationError, "PIN deve ter 4 dígitos")
	}

	lead, err := uc.LeadRepo.FindByID(ctx, input.LeadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, NewDomainError(CodeNotFound, "lead não encontrado")
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	// Ordem dos guards: estado primeiro (confirmar lead não-desbloqueado ou
	// já confirmado é rejeitado, nunca aceito silenciosamente).
	if lead.Status != entity.StatusOnTheWay {
		return nil, NewDomainError(CodeWrongState, "lead não está aguardando confirmação")
	}

	if lead.BusinessID != input.BusinessID {
		return nil, NewDomainError(CodeForbidden, "lead pertence a outro negócio")
	}

	if lead.PinLocked(time.Now()) {
		return nil, NewDomainError(CodePinLocked, "muitas tentativas, PIN travado temporariamente")
	}

	// Comparação em tempo constante: o PIN guarda uma liberação financeira.
	if subtle.ConstantTimeCompare([]byte(input.PIN), []byte(lead.CompletionPIN)) != 1 {
		locked, missErr := uc.LeadRepo.RegisterPinMiss(ctx, lead.ID, maxPinAttempts, pinLockWindow)
		if missErr != nil {
			log.Printf("⚠️ falha ao registrar erro de PIN do lead %s: %v", lead.ID, missErr)
		}
		if locked {
			return nil, NewDomainError(CodePinLocked, "muitas tentativas, PIN travado temporariamente")
		}
		// Só "PIN inválido": nada sobre existência ou estado do lead.
		return nil, NewDomainError(CodeInvalidPin, "PIN inválido")
	}

	err = uc.LeadRepo.Confirm(ctx, lead.ID)
	if errors.Is(err, entity.ErrConflict) {
		// Duas confirmações concorrentes com o PIN certo: a segunda observa o
		// CONFIRMED da primeira. confirmed_at foi setado exatamente uma vez.
		current, readErr := uc.LeadRepo.FindByID(ctx, lead.ID)
		if readErr == nil && current.Status == entity.StatusConfirmed {
			return &StatusOutput{Status: entity.StatusConfirmed, Msg: "lead já confirmado"}, nil
		}
		return nil, NewDomainError(CodeWrongState, "lead mudou de estado, recarregue")
	}
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	uc.publishCommission(ctx, lead)

	gross := 0
	if lead.ReferralFeeSnapshotCents != nil {
		gross = *lead.ReferralFeeSnapshotCents
	}

	return &StatusOutput{
		Status:          entity.StatusConfirmed,
		Msg:             "serviço confirmado, comissão liberada",
		CommissionCents: gross,
	}, nil
}

func (uc *ConfirmPinUseCase) publishCommission(ctx context.Context, lead *entity.Lead) {
	if uc.Queue == nil {
		return
	}

	gross, cut := 0, 0
	if lead.ReferralFeeSnapshotCents != nil {
		gross = *lead.ReferralFeeSnapshotCents
	}
	if lead.PlatformFeeCents != nil {
		cut = *lead.PlatformFeeCents
	}

	payload := queue.CommissionPayload{
		LeadID:           lead.ID,
		BusinessID:       lead.BusinessID,
		ReferrerID:       lead.ReferrerID,
		GrossCents:       gross,
		PlatformCutCents: cut,
		ConfirmedAt:      time.Now(),
	}

	if err := uc.Queue.PublishCommission(ctx, payload); err != nil {
		// O lead já está CONFIRMED; o evento perdido fica para reprocesso
		// manual via ledger, não desfaz a confirmação.
		log.Printf("❌ falha ao publicar comissão do lead %s: %v", lead.ID, err)
	}
}
