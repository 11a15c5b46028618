package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/traderefer/settlement/internal/entity"
)

type MarkOnTheWayUseCase struct {
	LeadRepo     entity.LeadRepositoryInterface
	BusinessRepo entity.BusinessRepositoryInterface
	EmailService EmailService
}

func NewMarkOnTheWayUseCase(
	leadRepo entity.LeadRepositoryInterface,
	businessRepo entity.BusinessRepositoryInterface,
	emailService EmailService,
) *MarkOnTheWayUseCase {
	return &MarkOnTheWayUseCase{
		LeadRepo:     leadRepo,
		BusinessRepo: businessRepo,
		EmailService: emailService,
	}
}

type MarkOnTheWayInput struct {
	LeadID     string
	BusinessID string
}

type StatusOutput struct {
	Status          string `json:"status"`
	Msg             string `json:"msg,omitempty"`
	CommissionCents int    `json:"commission_cents,omitempty"`
}

// Execute faz UNLOCKED -> ON_THE_WAY. Transição pura, sem dinheiro.
func (uc *MarkOnTheWayUseCase) Execute(ctx context.Context, input MarkOnTheWayInput) (*StatusOutput, error) {
	lead, err := uc.LeadRepo.FindByID(ctx, input.LeadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, NewDomainError(CodeNotFound, "lead não encontrado")
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	if lead.BusinessID != input.BusinessID {
		return nil, NewDomainError(CodeForbidden, "lead pertence a outro negócio")
	}

	if lead.Status != entity.StatusUnlocked {
		return nil, NewDomainError(CodeWrongState, "lead precisa estar UNLOCKED para marcar a caminho")
	}

	err = uc.LeadRepo.TransitionStatus(ctx, lead.ID, entity.StatusUnlocked, entity.StatusOnTheWay)
	if errors.Is(err, entity.ErrConflict) {
		// Duplo clique: se outra chamada já marcou, é sucesso idempotente.
		current, readErr := uc.LeadRepo.FindByID(ctx, lead.ID)
		if readErr == nil && current.Status == entity.StatusOnTheWay {
			return &StatusOutput{Status: entity.StatusOnTheWay}, nil
		}
		return nil, NewDomainError(CodeWrongState, "lead mudou de estado, recarregue")
	}
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	uc.notifyConsumer(ctx, lead)

	return &StatusOutput{Status: entity.StatusOnTheWay}, nil
}

func (uc *MarkOnTheWayUseCase) notifyConsumer(ctx context.Context, lead *entity.Lead) {
	if uc.EmailService == nil || lead.ConsumerEmail == "" {
		return
	}

	business, err := uc.BusinessRepo.FindByID(ctx, lead.BusinessID)
	if err != nil {
		log.Printf("⚠️ lookup do negócio para email falhou (não-fatal): %v", err)
		return
	}

	go func() {
		if err := uc.EmailService.SendOnTheWay(lead.ConsumerEmail, lead.ConsumerName, business.Name); err != nil {
			log.Printf("⚠️ email 'a caminho' falhou (não-fatal): %v", err)
		}
	}()
}
