package entity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrBusinessNotFound  = errors.New("business não encontrado")
	ErrInsufficientFunds = errors.New("saldo de wallet insuficiente")
)

// Business é dono da configuração de taxa. A configuração pode mudar a
// qualquer momento; só o valor vigente no instante do unlock entra no
// snapshot do lead.
type Business struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	TradeCategory      string    `json:"trade_category"`
	ReferralFeeCents   int       `json:"referral_fee_cents"`
	WalletBalanceCents int       `json:"wallet_balance_cents"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// FeeConfiguration é a entrada da política de taxas.
type FeeConfiguration struct {
	ReferralFeeCents int
}

func (b *Business) FeeConfiguration() FeeConfiguration {
	return FeeConfiguration{ReferralFeeCents: b.ReferralFeeCents}
}

type BusinessRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*Business, error)

	// DebitWallet é condicional ao saldo cobrir o valor; retorna
	// ErrInsufficientFunds quando não cobre.
	DebitWallet(ctx context.Context, id string, amountCents int) error
	CreditWallet(ctx context.Context, id string, amountCents int) error
}
