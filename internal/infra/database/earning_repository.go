package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/traderefer/settlement/internal/entity"
)

type EarningRepository struct {
	DB *sql.DB
}

func NewEarningRepository(db *sql.DB) *EarningRepository {
	return &EarningRepository{DB: db}
}

func (r *EarningRepository) Create(ctx context.Context, e *entity.Earning) error {
	query := `
		INSERT INTO referrer_earnings (
			id, referrer_id, lead_id, gross_cents, platform_cut_cents,
			status, available_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (lead_id) DO NOTHING
	`

	// ON CONFLICT: o evento de comissão pode ser reentregue pela fila; um
	// lead lança no ledger no máximo uma vez.
	_, err := r.DB.ExecContext(
		ctx,
		query,
		e.ID,
		e.ReferrerID,
		e.LeadID,
		e.GrossCents,
		e.PlatformCutCents,
		e.Status,
		e.AvailableAt,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("falha ao lançar earning: %w", err)
	}

	return nil
}
