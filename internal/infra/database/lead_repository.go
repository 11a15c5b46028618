package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/traderefer/settlement/internal/entity"
)

// LeadRepository é o único escritor do registro de lead. Toda transição é um
// UPDATE condicional no status atual: zero linhas afetadas significa que
// outra chamada ganhou a corrida (entity.ErrConflict). É isso que entrega o
// "no máximo um unlock" sem segurar lock durante a ida ao gateway.
type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, business_id, referrer_id, trade_type, job_description,
	consumer_name, consumer_phone, consumer_email, consumer_address,
	status, unlock_fee_cents, referral_fee_snapshot_cents, platform_fee_cents,
	payment_intent_ref, intent_started_at,
	completion_pin, pin_attempts, pin_locked_until,
	confirmed_at, created_at, updated_at`

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, business_id, referrer_id, trade_type, job_description,
			consumer_name, consumer_phone, consumer_email, consumer_address,
			status, completion_pin, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		lead.ID,
		lead.BusinessID,
		nullString(lead.ReferrerID),
		lead.TradeType,
		lead.JobDescription,
		lead.ConsumerName,
		lead.ConsumerPhone,
		lead.ConsumerEmail,
		nullString(lead.ConsumerAddress),
		lead.Status,
		lead.CompletionPIN,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("falha ao criar lead: %w", err)
	}

	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar lead: %w", err)
	}

	return lead, nil
}

// TransitionToUnlocked grava status, snapshot de taxa e referência do
// pagamento em um único UPDATE. O snapshot só existe junto com o UNLOCKED,
// nunca um sem o outro.
func (r *LeadRepository) TransitionToUnlocked(ctx context.Context, leadID string, snap entity.FeeSnapshot, intentRef string) error {
	query := `
		UPDATE leads
		SET status = $2,
			unlock_fee_cents = $3,
			referral_fee_snapshot_cents = $4,
			platform_fee_cents = $5,
			payment_intent_ref = $6,
			updated_at = NOW()
		WHERE id = $1
		  AND status IN ($7, $8)
	`

	res, err := r.DB.ExecContext(ctx, query,
		leadID,
		entity.StatusUnlocked,
		snap.UnlockFeeCents,
		snap.ReferralFeeSnapshotCents,
		snap.PlatformFeeCents,
		intentRef,
		entity.StatusPending,
		entity.StatusVerified,
	)
	if err != nil {
		return fmt.Errorf("falha ao desbloquear lead: %w", err)
	}

	return conflictOnZeroRows(res)
}

func (r *LeadRepository) TransitionStatus(ctx context.Context, leadID, from, to string) error {
	if !entity.CanTransition(from, to) {
		return entity.ErrInvalidTransition
	}

	query := `
		UPDATE leads
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	res, err := r.DB.ExecContext(ctx, query, leadID, from, to)
	if err != nil {
		return fmt.Errorf("falha na transição %s -> %s: %w", from, to, err)
	}

	return conflictOnZeroRows(res)
}

// Confirm seta confirmed_at exatamente uma vez, junto com o status, e zera o
// estado de throttling do PIN.
func (r *LeadRepository) Confirm(ctx context.Context, leadID string) error {
	query := `
		UPDATE leads
		SET status = $2,
			confirmed_at = NOW(),
			pin_attempts = 0,
			pin_locked_until = NULL,
			updated_at = NOW()
		WHERE id = $1 AND status = $3
	`

	res, err := r.DB.ExecContext(ctx, query, leadID, entity.StatusConfirmed, entity.StatusOnTheWay)
	if err != nil {
		return fmt.Errorf("falha ao confirmar lead: %w", err)
	}

	return conflictOnZeroRows(res)
}

func (r *LeadRepository) RecordIntentRef(ctx context.Context, leadID, intentRef string) error {
	query := `
		UPDATE leads
		SET payment_intent_ref = $2, intent_started_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status IN ($3, $4)
	`

	res, err := r.DB.ExecContext(ctx, query, leadID, intentRef, entity.StatusPending, entity.StatusVerified)
	if err != nil {
		return fmt.Errorf("falha ao registrar intent: %w", err)
	}

	return conflictOnZeroRows(res)
}

func (r *LeadRepository) ClearIntentRef(ctx context.Context, leadID string) error {
	query := `
		UPDATE leads
		SET payment_intent_ref = NULL, intent_started_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status IN ($2, $3)
	`

	res, err := r.DB.ExecContext(ctx, query, leadID, entity.StatusPending, entity.StatusVerified)
	if err != nil {
		return fmt.Errorf("falha ao limpar intent: %w", err)
	}

	return conflictOnZeroRows(res)
}

func (r *LeadRepository) FindStalePendingIntents(ctx context.Context, olderThan time.Duration) ([]*entity.Lead, error) {
	query := `SELECT` + leadColumns + `
		FROM leads
		WHERE status IN ($1, $2)
		  AND payment_intent_ref IS NOT NULL
		  AND intent_started_at < NOW() - make_interval(secs => $3)
		ORDER BY intent_started_at
	`

	rows, err := r.DB.QueryContext(ctx, query, entity.StatusPending, entity.StatusVerified, olderThan.Seconds())
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar intents pendentes: %w", err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

// RegisterPinMiss incrementa o contador em um único UPDATE. Se o lock antigo
// já venceu o contador recomeça em 1; ao bater maxAttempts o lock é aplicado.
func (r *LeadRepository) RegisterPinMiss(ctx context.Context, leadID string, maxAttempts int, lockFor time.Duration) (bool, error) {
	query := `
		UPDATE leads
		SET pin_attempts = CASE
				WHEN pin_locked_until IS NOT NULL AND pin_locked_until < NOW() THEN 1
				ELSE pin_attempts + 1
			END,
			pin_locked_until = CASE
				WHEN (CASE
					WHEN pin_locked_until IS NOT NULL AND pin_locked_until < NOW() THEN 1
					ELSE pin_attempts + 1
				END) >= $2 THEN NOW() + make_interval(secs => $3)
				ELSE NULL
			END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING pin_locked_until IS NOT NULL
	`

	var locked bool
	err := r.DB.QueryRowContext(ctx, query, leadID, maxAttempts, lockFor.Seconds()).Scan(&locked)
	if err == sql.ErrNoRows {
		return false, entity.ErrLeadNotFound
	}
	if err != nil {
		return false, fmt.Errorf("falha ao registrar erro de PIN: %w", err)
	}

	return locked, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var referrerID, consumerAddress, intentRef sql.NullString
	var referralSnapshot, platformFee, unlockFee sql.NullInt64
	var intentStartedAt, pinLockedUntil, confirmedAt sql.NullTime

	err := row.Scan(
		&lead.ID,
		&lead.BusinessID,
		&referrerID,
		&lead.TradeType,
		&lead.JobDescription,
		&lead.ConsumerName,
		&lead.ConsumerPhone,
		&lead.ConsumerEmail,
		&consumerAddress,
		&lead.Status,
		&unlockFee,
		&referralSnapshot,
		&platformFee,
		&intentRef,
		&intentStartedAt,
		&lead.CompletionPIN,
		&lead.PinAttempts,
		&pinLockedUntil,
		&confirmedAt,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.ReferrerID = referrerID.String
	lead.ConsumerAddress = consumerAddress.String
	lead.PaymentIntentRef = intentRef.String
	if unlockFee.Valid {
		lead.UnlockFeeCents = int(unlockFee.Int64)
	}
	if referralSnapshot.Valid {
		v := int(referralSnapshot.Int64)
		lead.ReferralFeeSnapshotCents = &v
	}
	if platformFee.Valid {
		v := int(platformFee.Int64)
		lead.PlatformFeeCents = &v
	}
	if intentStartedAt.Valid {
		lead.IntentStartedAt = &intentStartedAt.Time
	}
	if pinLockedUntil.Valid {
		lead.PinLockedUntil = &pinLockedUntil.Time
	}
	if confirmedAt.Valid {
		lead.ConfirmedAt = &confirmedAt.Time
	}

	return &lead, nil
}

func conflictOnZeroRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrConflict
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
