package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/traderefer/settlement/internal/entity"
)

type BusinessRepository struct {
	DB *sql.DB
}

func NewBusinessRepository(db *sql.DB) *BusinessRepository {
	return &BusinessRepository{DB: db}
}

func (r *BusinessRepository) FindByID(ctx context.Context, id string) (*entity.Business, error) {
	query := `
		SELECT id, name, email, trade_category, referral_fee_cents,
		       wallet_balance_cents, created_at, updated_at
		FROM businesses
		WHERE id = $1
	`

	var b entity.Business
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&b.ID,
		&b.Name,
		&b.Email,
		&b.TradeCategory,
		&b.ReferralFeeCents,
		&b.WalletBalanceCents,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrBusinessNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar business: %w", err)
	}

	return &b, nil
}

// DebitWallet só debita se o saldo cobre, no mesmo UPDATE.
func (r *BusinessRepository) DebitWallet(ctx context.Context, id string, amountCents int) error {
	query := `
		UPDATE businesses
		SET wallet_balance_cents = wallet_balance_cents - $2, updated_at = NOW()
		WHERE id = $1 AND wallet_balance_cents >= $2
	`

	res, err := r.DB.ExecContext(ctx, query, id, amountCents)
	if err != nil {
		return fmt.Errorf("falha ao debitar wallet: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrInsufficientFunds
	}

	return nil
}

func (r *BusinessRepository) CreditWallet(ctx context.Context, id string, amountCents int) error {
	query := `
		UPDATE businesses
		SET wallet_balance_cents = wallet_balance_cents + $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.DB.ExecContext(ctx, query, id, amountCents)
	if err != nil {
		return fmt.Errorf("falha ao creditar wallet: %w", err)
	}

	return nil
}
