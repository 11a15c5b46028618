package usecase

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/traderefer/settlement/internal/entity"
)

type UnlockLeadUseCase struct {
	LeadRepo     entity.LeadRepositoryInterface
	BusinessRepo entity.BusinessRepositoryInterface
	Gateway      PaymentGateway
	EmailService EmailService

	// DevBypass permite unlock sem gateway (debitando a wallet), espelhando o
	// ambiente de desenvolvimento. Nunca ligar em produção.
	DevBypass bool
}

func NewUnlockLeadUseCase(
	leadRepo entity.LeadRepositoryInterface,
	businessRepo entity.BusinessRepositoryInterface,
	gateway PaymentGateway,
	emailService EmailService,
	devBypass bool,
) *UnlockLeadUseCase {
	return &UnlockLeadUseCase{
		LeadRepo:     leadRepo,
		BusinessRepo: businessRepo,
		Gateway:      gateway,
		EmailService: emailService,
		DevBypass:    devBypass,
	}
}

type UnlockInput struct {
	LeadID     string
	BusinessID string
}

type UnlockOutput struct {
	Status       string `json:"status"`
	ClientSecret string `json:"client_secret,omitempty"`
	Msg          string `json:"msg,omitempty"`
}

// Execute tenta revelar o contato de um lead para o negócio dono dele.
// Idempotente de ponta a ponta: duplo clique, retry de rede e corrida com o
// webhook sempre convergem para um único snapshot persistido.
func (uc *UnlockLeadUseCase) Execute(ctx context.Context, input UnlockInput) (*UnlockOutput, error) {
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

	// Já pago: sucesso idempotente, nada de segundo intent.
	if entity.IsUnlockedOrLater(lead.Status) {
		return &UnlockOutput{Status: entity.StatusUnlocked, Msg: "lead já desbloqueado"}, nil
	}

	business, err := uc.BusinessRepo.FindByID(ctx, lead.BusinessID)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	// Snapshot calculado fresco a cada chamada; só persiste na chamada que
	// ganhar a transição. O negócio paga a taxa vigente quando o dinheiro
	// realmente anda.
	snap := ComputeFeeSnapshot(business.FeeConfiguration())

	// Chave determinística: retries e chamadas concorrentes observam o mesmo
	// intent no gateway em vez de cunhar concorrentes.
	idempotencyKey := "lead-unlock-" + lead.ID

	result, err := uc.Gateway.CreateOrReuseIntent(ctx, lead.ID, snap.UnlockFeeCents, idempotencyKey)
	if err != nil {
		// Timeout ou erro de rede: o lead segue pré-unlock, seguro repetir.
		return nil, NewDomainError(CodePaymentFailed, "gateway de pagamento indisponível, tente novamente")
	}

	switch result.Outcome {
	case OutcomeSucceeded:
		return uc.finishUnlock(ctx, lead, business, snap, result.IntentRef)

	case OutcomeRequiresPayment:
		// O caller completa o passo interativo e chama de novo; a mesma chave
		// vai observar succeeded. Guardamos a referência para a varredura de
		// reconciliação; perder essa corrida só significa que o lead já saiu
		// do pré-unlock.
		if err := uc.LeadRepo.RecordIntentRef(ctx, lead.ID, result.IntentRef); err != nil && !errors.Is(err, entity.ErrConflict) {
			log.Printf("⚠️ falha ao registrar intent pendente do lead %s: %v", lead.ID, err)
		}
		return &UnlockOutput{Status: "REQUIRES_PAYMENT", ClientSecret: result.ClientSecret}, nil

	case OutcomeMisconfigured:
		if uc.DevBypass {
			return uc.devBypassUnlock(ctx, lead, business, snap)
		}
		return nil, NewDomainError(CodeGatewayMisconfigured, "gateway de pagamento não configurado")

	default: // failed, canceled
		return nil, NewDomainError(CodePaymentFailed, "pagamento recusado, tente novamente")
	}
}

// Finalize é o caminho do webhook: o gateway avisou que o intent foi pago.
// Converge para a mesma transição condicional do fluxo síncrono.
func (uc *UnlockLeadUseCase) Finalize(ctx context.Context, leadID, intentRef string) error {
	lead, err := uc.LeadRepo.FindByID(ctx, leadID)
	if err != nil {
		return err
	}
	if entity.IsUnlockedOrLater(lead.Status) {
		return nil
	}

	business, err := uc.BusinessRepo.FindByID(ctx, lead.BusinessID)
	if err != nil {
		return err
	}

	snap := ComputeFeeSnapshot(business.FeeConfiguration())
	_, err = uc.finishUnlock(ctx, lead, business, snap, intentRef)
	return err
}

// finishUnlock tenta a transição pré-unlock -> UNLOCKED com o snapshot.
// Perder a corrida NÃO é erro: descarta o snapshot desta chamada e devolve o
// estado já persistido (nunca sobrescreve um snapshot).
func (uc *UnlockLeadUseCase) finishUnlock(ctx context.Context, lead *entity.Lead, business *entity.Business, snap entity.FeeSnapshot, intentRef string) (*UnlockOutput, error) {
	err := uc.LeadRepo.TransitionToUnlocked(ctx, lead.ID, snap, intentRef)
	if errors.Is(err, entity.ErrConflict) {
		current, readErr := uc.LeadRepo.FindByID(ctx, lead.ID)
		if readErr == nil && entity.IsUnlockedOrLater(current.Status) {
			return &UnlockOutput{Status: entity.StatusUnlocked, Msg: "lead já desbloqueado"}, nil
		}
		return nil, NewDomainError(CodeConflict, "lead mudou de estado, recarregue e tente de novo")
	}
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	uc.notifyUnlocked(business, lead)

	return &UnlockOutput{Status: entity.StatusUnlocked}, nil
}

// devBypassUnlock debita a wallet e desbloqueia direto, como o ambiente de
// desenvolvimento do sistema original. A saga devolve o débito se a transição
// perder a corrida.
func (uc *UnlockLeadUseCase) devBypassUnlock(ctx context.Context, lead *entity.Lead, business *entity.Business, snap entity.FeeSnapshot) (*UnlockOutput, error) {
	intentRef := "dev_bypass_" + uuid.New().String()

	debited := true
	txn := NewTransaction()
	txn.AddOperation("debit_wallet", func(ctx context.Context) error {
		err := uc.BusinessRepo.DebitWallet(ctx, business.ID, snap.UnlockFeeCents)
		if errors.Is(err, entity.ErrInsufficientFunds) {
			// Em dev o unlock sai de graça quando a wallet não cobre.
			debited = false
			return nil
		}
		return err
	})
	txn.AddCompensation("credit_wallet", func(ctx context.Context) error {
		if !debited {
			return nil
		}
		return uc.BusinessRepo.CreditWallet(ctx, business.ID, snap.UnlockFeeCents)
	})
	txn.AddOperation("unlock_lead", func(ctx context.Context) error {
		return uc.LeadRepo.TransitionToUnlocked(ctx, lead.ID, snap, intentRef)
	})

	if err := txn.Execute(ctx); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			return &UnlockOutput{Status: entity.StatusUnlocked, Msg: "lead já desbloqueado"}, nil
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: err.Error()}
	}

	uc.notifyUnlocked(business, lead)

	return &UnlockOutput{Status: entity.StatusUnlocked, Msg: "lead desbloqueado (dev mode)"}, nil
}

func (uc *UnlockLeadUseCase) notifyUnlocked(business *entity.Business, lead *entity.Lead) {
	if uc.EmailService == nil || business.Email == "" {
		return
	}
	go func() {
		if err := uc.EmailService.SendLeadUnlocked(business.Email, business.Name, lead); err != nil {
			log.Printf("⚠️ email de lead desbloqueado falhou (não-fatal): %v", err)
		}
	}()
}
