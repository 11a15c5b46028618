package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/traderefer/settlement/internal/entity"
)

type GetLeadUseCase struct {
	LeadRepo entity.LeadRepositoryInterface
}

func NewGetLeadUseCase(leadRepo entity.LeadRepositoryInterface) *GetLeadUseCase {
	return &GetLeadUseCase{LeadRepo: leadRepo}
}

// LeadProjection é a visão do lead para o caller. O PIN nunca aparece aqui,
// em nenhum papel.
type LeadProjection struct {
	ID                       string     `json:"id"`
	BusinessID               string     `json:"business_id"`
	TradeType                string     `json:"trade_type"`
	JobDescription           string     `json:"job_description"`
	ConsumerName             string     `json:"consumer_name"`
	ConsumerPhone            string     `json:"consumer_phone"`
	ConsumerEmail            string     `json:"consumer_email"`
	ConsumerAddress          string     `json:"consumer_address,omitempty"`
	Status                   string     `json:"status"`
	UnlockFeeCents           int        `json:"unlock_fee_cents"`
	ReferralFeeSnapshotCents *int       `json:"referral_fee_snapshot_cents,omitempty"`
	PlatformFeeCents         *int       `json:"platform_fee_cents,omitempty"`
	ConfirmedAt              *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt                time.Time  `json:"created_at"`
}

// Execute devolve a projeção apropriada ao papel: o negócio dono só vê o
// contato completo depois de pagar; todo o resto vê mascarado.
func (uc *GetLeadUseCase) Execute(ctx context.Context, leadID, requestingBusinessID string) (*LeadProjection, error) {
	lead, err := uc.LeadRepo.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, NewDomainError(CodeNotFound, "lead não encontrado")
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	p := &LeadProjection{
		ID:              lead.ID,
		BusinessID:      lead.BusinessID,
		TradeType:       lead.TradeType,
		JobDescription:  lead.JobDescription,
		ConsumerName:    lead.ConsumerName,
		ConsumerPhone:   lead.ConsumerPhone,
		ConsumerEmail:   lead.ConsumerEmail,
		ConsumerAddress: lead.ConsumerAddress,
		Status:          lead.Status,
		UnlockFeeCents:  lead.UnlockFeeCents,
		ConfirmedAt:     lead.ConfirmedAt,
		CreatedAt:       lead.CreatedAt,
	}

	revealed := requestingBusinessID == lead.BusinessID && entity.IsUnlockedOrLater(lead.Status)
	if revealed {
		p.ReferralFeeSnapshotCents = lead.ReferralFeeSnapshotCents
		p.PlatformFeeCents = lead.PlatformFeeCents
	} else {
		p.ConsumerName = entity.MaskedName(lead.ConsumerName)
		p.ConsumerPhone = entity.MaskedPhone(lead.ConsumerPhone)
		p.ConsumerEmail = entity.MaskedEmail(lead.ConsumerEmail)
		p.ConsumerAddress = ""
	}

	return p, nil
}
