package entity

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	// IMPORTANTE: NÃO adicione imports de usecase ou infra aqui!
)

// Lead é a entidade central do settlement. Os campos do consumidor são
// write-once (preenchidos pelo intake externo); o resto muda somente através
// das transições condicionais do repositório.
type Lead struct {
	ID             string `json:"id"`
	BusinessID     string `json:"business_id"`
	ReferrerID     string `json:"referrer_id,omitempty"` // vazio quando o lead é orgânico
	TradeType      string `json:"trade_type"`
	JobDescription string `json:"job_description"`

	ConsumerName    string `json:"consumer_name"`
	ConsumerPhone   string `json:"consumer_phone"`
	ConsumerEmail   string `json:"consumer_email"`
	ConsumerAddress string `json:"consumer_address,omitempty"`

	Status                   string     `json:"status"`
	UnlockFeeCents           int        `json:"unlock_fee_cents"`
	ReferralFeeSnapshotCents *int       `json:"referral_fee_snapshot_cents,omitempty"`
	PlatformFeeCents         *int       `json:"platform_fee_cents,omitempty"`
	PaymentIntentRef         string     `json:"payment_intent_ref,omitempty"`
	IntentStartedAt          *time.Time `json:"intent_started_at,omitempty"`

	// CompletionPIN nunca é serializado: só o consumidor conhece o segredo.
	CompletionPIN  string     `json:"-"`
	PinAttempts    int        `json:"-"`
	PinLockedUntil *time.Time `json:"-"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FeeSnapshot é a decomposição da taxa congelada no momento do unlock.
// Depois de persistida ela nunca mais muda para aquele lead.
type FeeSnapshot struct {
	UnlockFeeCents           int `json:"unlock_fee_cents"`
	ReferralFeeSnapshotCents int `json:"referral_fee_snapshot_cents"`
	PlatformFeeCents         int `json:"platform_fee_cents"`
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)

	// TransitionToUnlocked grava status + snapshot + referência do intent em
	// um único UPDATE condicionado ao lead ainda estar pré-unlock.
	// Retorna ErrConflict quando outra chamada ganhou a corrida.
	TransitionToUnlocked(ctx context.Context, leadID string, snap FeeSnapshot, intentRef string) error

	// TransitionStatus executa uma transição pura (sem dinheiro), condicionada
	// ao status atual. Retorna ErrInvalidTransition para pares ilegais e
	// ErrConflict quando o status já mudou por baixo.
	TransitionStatus(ctx context.Context, leadID, from, to string) error

	// Confirm faz ON_THE_WAY -> CONFIRMED e seta confirmed_at uma única vez.
	Confirm(ctx context.Context, leadID string) error

	// RecordIntentRef guarda a referência de um intent pendente enquanto o
	// lead ainda é pré-unlock (para a varredura de reconciliação).
	RecordIntentRef(ctx context.Context, leadID, intentRef string) error
	ClearIntentRef(ctx context.Context, leadID string) error
	FindStalePendingIntents(ctx context.Context, olderThan time.Duration) ([]*Lead, error)

	// RegisterPinMiss incrementa o contador de erros de PIN e aplica o
	// bloqueio quando maxAttempts é atingido. Retorna se o PIN ficou travado.
	RegisterPinMiss(ctx context.Context, leadID string, maxAttempts int, lockFor time.Duration) (bool, error)
}

// NewLead monta um lead pré-unlock com PIN recém gerado. Usado pelo intake
// (colaborador externo) e pelos seeds de teste.
func NewLead(businessID, referrerID, tradeType, jobDescription string) *Lead {
	now := time.Now()
	return &Lead{
		ID:             uuid.New().String(),
		BusinessID:     businessID,
		ReferrerID:     referrerID,
		TradeType:      tradeType,
		JobDescription: jobDescription,
		Status:         StatusPending,
		CompletionPIN:  GeneratePIN(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// GeneratePIN gera o segredo de 4 dígitos compartilhado com o consumidor.
// crypto/rand porque o PIN guarda uma liberação financeira.
func GeneratePIN() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		panic(fmt.Sprintf("pin generation: %v", err))
	}
	return fmt.Sprintf("%04d", n.Int64())
}

// PinLocked diz se o verificador de PIN está em lockout neste instante.
func (l *Lead) PinLocked(now time.Time) bool {
	return l.PinLockedUntil != nil && now.Before(*l.PinLockedUntil)
}

// MaskedPhone: "0412****89"
func MaskedPhone(phone string) string {
	if len(phone) < 7 {
		return "****"
	}
	return phone[:4] + "****" + phone[len(phone)-2:]
}

// MaskedEmail: "jo***@example.com"
func MaskedEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 2 {
		return "***"
	}
	return email[:2] + "***@" + email[at+1:]
}

// MaskedName: primeiro nome + "***"
func MaskedName(name string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(name), " ")
	if first == "" {
		return "***"
	}
	return first + " ***"
}
