package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EarningStatusPending   = "PENDING"
	EarningStatusAvailable = "AVAILABLE"
)

// Earning é a entrada do ledger de comissões do referrer, criada pelo worker
// quando o evento de comissão liberada chega na fila.
type Earning struct {
	ID               string    `json:"id"`
	ReferrerID       string    `json:"referrer_id"`
	LeadID           string    `json:"lead_id"`
	GrossCents       int       `json:"gross_cents"`
	PlatformCutCents int       `json:"platform_cut_cents"`
	Status           string    `json:"status"`
	AvailableAt      time.Time `json:"available_at"`
	CreatedAt        time.Time `json:"created_at"`
}

type EarningRepositoryInterface interface {
	Create(ctx context.Context, e *Earning) error
}

func NewAvailableEarning(referrerID, leadID string, grossCents, platformCutCents int) *Earning {
	now := time.Now()
	return &Earning{
		ID:               uuid.New().String(),
		ReferrerID:       referrerID,
		LeadID:           leadID,
		GrossCents:       grossCents,
		PlatformCutCents: platformCutCents,
		Status:           EarningStatusAvailable,
		AvailableAt:      now,
		CreatedAt:        now,
	}
}
