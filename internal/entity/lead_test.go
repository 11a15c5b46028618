package entity_test

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/traderefer/settlement/internal/entity"
)

func TestNewLeadStartsPendingWithPin(t *testing.T) {
	lead := entity.NewLead("biz-1", "ref-1", "electrical", "troca de quadro")

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, entity.StatusPending, lead.Status)
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{4}$`), lead.CompletionPIN)
	assert.Zero(t, lead.PinAttempts)
	assert.Nil(t, lead.ReferralFeeSnapshotCents)
}

func TestGeneratePinAlwaysFourDigits(t *testing.T) {
	format := regexp.MustCompile(`^[0-9]{4}$`)
	for i := 0; i < 500; i++ {
		assert.Regexp(t, format, entity.GeneratePIN())
	}
}

// O PIN nunca pode vazar numa resposta serializada.
func TestLeadJSONNeverCarriesPin(t *testing.T) {
	lead := entity.NewLead("biz-1", "", "plumbing", "vazamento")
	lead.PinAttempts = 2

	raw, err := json.Marshal(lead)
	assert.NoError(t, err)

	var fields map[string]any
	assert.NoError(t, json.Unmarshal(raw, &fields))
	for key := range fields {
		assert.NotContains(t, key, "pin", "campo %q não deveria ser serializado", key)
	}
}

func TestPinLocked(t *testing.T) {
	now := time.Now()
	lead := entity.NewLead("biz-1", "", "plumbing", "")

	assert.False(t, lead.PinLocked(now))

	until := now.Add(5 * time.Minute)
	lead.PinLockedUntil = &until
	assert.True(t, lead.PinLocked(now))

	// Lockout expirado não trava mais.
	assert.False(t, lead.PinLocked(now.Add(6*time.Minute)))
}

func TestMaskedContact(t *testing.T) {
	assert.Equal(t, "0412****89", entity.MaskedPhone("0412345689"))
	assert.Equal(t, "****", entity.MaskedPhone("123"))

	assert.Equal(t, "an***@example.com", entity.MaskedEmail("ana@example.com"))
	assert.Equal(t, "***", entity.MaskedEmail("a@b.c"))
	assert.Equal(t, "***", entity.MaskedEmail("sem-arroba"))

	assert.Equal(t, "Ana ***", entity.MaskedName("Ana Souza"))
	assert.Equal(t, "Ana ***", entity.MaskedName("Ana"))
	assert.Equal(t, "***", entity.MaskedName("  "))
}
