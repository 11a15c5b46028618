package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const DisputeStatusOpen = "OPEN"

// Dispute registra a contestação de um lead pago. Um lead aceita no máximo
// uma disputa.
type Dispute struct {
	ID         string    `json:"id"`
	LeadID     string    `json:"lead_id"`
	BusinessID string    `json:"business_id"`
	Reason     string    `json:"reason"`
	Notes      string    `json:"notes,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type DisputeRepositoryInterface interface {
	Create(ctx context.Context, d *Dispute) error
	Delete(ctx context.Context, id string) error
	ExistsForLead(ctx context.Context, leadID string) (bool, error)
}

func NewDispute(leadID, businessID, reason, notes string) *Dispute {
	return &Dispute{
		ID:         uuid.New().String(),
		LeadID:     leadID,
		BusinessID: businessID,
		Reason:     reason,
		Notes:      notes,
		Status:     DisputeStatusOpen,
		CreatedAt:  time.Now(),
	}
}
