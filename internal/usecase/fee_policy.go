package usecase

import (
	"fmt"

	"github.com/traderefer/settlement/internal/entity"
)

const (
	// MinReferralFeeCents é o piso de comissão. Configurações abaixo disso são
	// rejeitadas no cadastro e nunca deveriam chegar aqui.
	MinReferralFeeCents = 300

	// O negócio paga a comissão do referrer + 20% de markup da plataforma.
	platformFeePercent = 20
)

// ComputeFeeSnapshot resolve a configuração vigente do negócio na
// decomposição concreta cobrada no unlock. Pura e determinística: os valores
// só são persistidos pela chamada que de fato transiciona o lead.
//
// Arredondamento do fee da plataforma: centavo mais próximo, empate para
// cima, para a soma fechar exata (referral + platform == unlock).
func ComputeFeeSnapshot(cfg entity.FeeConfiguration) entity.FeeSnapshot {
	if cfg.ReferralFeeCents < MinReferralFeeCents {
		// Bug de programação no caller, não erro recuperável.
		panic(fmt.Sprintf("fee policy: referral fee %d¢ abaixo do piso de %d¢", cfg.ReferralFeeCents, MinReferralFeeCents))
	}

	platform := (cfg.ReferralFeeCents*platformFeePercent + 50) / 100

	return entity.FeeSnapshot{
		ReferralFeeSnapshotCents: cfg.ReferralFeeCents,
		PlatformFeeCents:         platform,
		UnlockFeeCents:           cfg.ReferralFeeCents + platform,
	}
}
