package usecase

import (
	"context"
	"errors"

	"github.com/traderefer/settlement/internal/entity"
)

type DisputeLeadUseCase struct {
	LeadRepo    entity.LeadRepositoryInterface
	DisputeRepo entity.DisputeRepositoryInterface
}

func NewDisputeLeadUseCase(leadRepo entity.LeadRepositoryInterface, disputeRepo entity.DisputeRepositoryInterface) *DisputeLeadUseCase {
	return &DisputeLeadUseCase{
		LeadRepo:    leadRepo,
		DisputeRepo: disputeRepo,
	}
}

type DisputeInput struct {
	LeadID     string
	BusinessID string
	Reason     string
	Notes      string
}

type DisputeOutput struct {
	DisputeID string `json:"dispute_id"`
	Status    string `json:"status"`
}

// Execute abre uma disputa sobre um lead pago. Só leads UNLOCKED ou
// ON_THE_WAY entram no ramo DISPUTED; um CONFIRMED já liberou comissão e não
// volta atrás.
func (uc *DisputeLeadUseCase) Execute(ctx context.Context, input DisputeInput) (*DisputeOutput, error) {
	if input.Reason == "" {
		return nil, NewDomainError(CodeValidationError, "motivo da disputa é obrigatório")
	}

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

	if lead.Status != entity.StatusUnlocked && lead.Status != entity.StatusOnTheWay {
		return nil, NewDomainError(CodeWrongState, "só leads desbloqueados e não confirmados podem ser disputados")
	}

	exists, err := uc.DisputeRepo.ExistsForLead(ctx, lead.ID)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}
	if exists {
		return nil, NewDomainError(CodeDisputeExists, "já existe uma disputa para esse lead")
	}

	dispute := entity.NewDispute(lead.ID, lead.BusinessID, input.Reason, input.Notes)

	// Registro da disputa primeiro; se a transição perder a corrida a
	// compensação remove o registro órfão.
	txn := NewTransaction()
	txn.AddOperation("create_dispute", func(ctx context.Context) error {
		return uc.DisputeRepo.Create(ctx, dispute)
	})
	txn.AddCompensation("delete_dispute", func(ctx context.Context) error {
		return uc.DisputeRepo.Delete(ctx, dispute.ID)
	})
	txn.AddOperation("mark_disputed", func(ctx context.Context) error {
		return uc.LeadRepo.TransitionStatus(ctx, lead.ID, lead.Status, entity.StatusDisputed)
	})

	if err := txn.Execute(ctx); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			return nil, NewDomainError(CodeWrongState, "lead mudou de estado, recarregue")
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	return &DisputeOutput{DisputeID: dispute.ID, Status: entity.StatusDisputed}, nil
}
