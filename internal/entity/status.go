package entity

import "errors"

// Statuses de um lead, na ordem do ciclo de vida. PENDING e VERIFIED são
// ambos pré-unlock: VERIFIED só indica que o consumidor passou pela
// verificação de SMS antes de chegar aqui.
const (
	StatusPending   = "PENDING"
	StatusVerified  = "VERIFIED"
	StatusUnlocked  = "UNLOCKED"
	StatusOnTheWay  = "ON_THE_WAY"
	StatusConfirmed = "CONFIRMED"
	StatusDisputed  = "DISPUTED"
)

var (
	ErrConflict          = errors.New("lead was modified by a concurrent request")
	ErrLeadNotFound      = errors.New("lead não encontrado")
	ErrInvalidTransition = errors.New("illegal status transition")
)

// statusRank ordena os statuses. Nenhuma transição pode diminuir o rank.
var statusRank = map[string]int{
	StatusPending:   0,
	StatusVerified:  1,
	StatusUnlocked:  2,
	StatusOnTheWay:  3,
	StatusConfirmed: 4,
	StatusDisputed:  4, // ramo terminal paralelo ao CONFIRMED
}

// legalTransitions é a tabela autoritativa da máquina de estados.
// Tudo que muda o status de um lead passa por aqui antes do UPDATE condicional.
var legalTransitions = map[string][]string{
	StatusPending:  {StatusVerified, StatusUnlocked},
	StatusVerified: {StatusUnlocked},
	StatusUnlocked: {StatusOnTheWay, StatusDisputed},
	StatusOnTheWay: {StatusConfirmed, StatusDisputed},
}

func CanTransition(from, to string) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsPreUnlock diz se o lead ainda aceita uma tentativa de unlock.
func IsPreUnlock(status string) bool {
	return status == StatusPending || status == StatusVerified
}

// IsUnlockedOrLater diz se o negócio já pagou para revelar o contato.
func IsUnlockedOrLater(status string) bool {
	return statusRank[status] >= statusRank[StatusUnlocked]
}

func IsTerminal(status string) bool {
	return status == StatusConfirmed || status == StatusDisputed
}
