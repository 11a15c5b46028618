package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/traderefer/settlement/internal/entity"
)

type DisputeRepository struct {
	DB *sql.DB
}

func NewDisputeRepository(db *sql.DB) *DisputeRepository {
	return &DisputeRepository{DB: db}
}

func (r *DisputeRepository) Create(ctx context.Context, d *entity.Dispute) error {
	query := `
		INSERT INTO disputes (id, lead_id, business_id, reason, notes, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.DB.ExecContext(ctx, query,
		d.ID, d.LeadID, d.BusinessID, d.Reason, nullString(d.Notes), d.Status, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("falha ao criar disputa: %w", err)
	}

	return nil
}

func (r *DisputeRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM disputes WHERE id = $1`, id)
	return err
}

func (r *DisputeRepository) ExistsForLead(ctx context.Context, leadID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM disputes WHERE lead_id = $1)`, leadID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("falha ao checar disputa: %w", err)
	}
	return exists, nil
}
