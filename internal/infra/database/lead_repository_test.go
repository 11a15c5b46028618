package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/traderefer/settlement/internal/entity"
	"github.com/traderefer/settlement/internal/infra/database"
)

// TestTransitionToUnlockedPersistsSnapshotAtomically - status, snapshot e
// intent vão juntos num único UPDATE condicional
func TestTransitionToUnlockedPersistsSnapshotAtomically(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	snap := entity.FeeSnapshot{UnlockFeeCents: 1200, ReferralFeeSnapshotCents: 1000, PlatformFeeCents: 200}

	mock.ExpectExec("UPDATE leads").
		WithArgs("lead-123", entity.StatusUnlocked, 1200, 1000, 200, "pi_1", entity.StatusPending, entity.StatusVerified).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := database.NewLeadRepository(db)
	err = repo.TransitionToUnlocked(context.Background(), "lead-123", snap, "pi_1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestTransitionToUnlockedZeroRowsIsConflict - perder a corrida vira ErrConflict
func TestTransitionToUnlockedZeroRowsIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE leads").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := database.NewLeadRepository(db)
	err = repo.TransitionToUnlocked(context.Background(), "lead-123", entity.FeeSnapshot{UnlockFeeCents: 1200, ReferralFeeSnapshotCents: 1000, PlatformFeeCents: 200}, "pi_1")

	assert.ErrorIs(t, err, entity.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestTransitionStatusRejectsIllegalPairs - par ilegal não chega no banco
func TestTransitionStatusRejectsIllegalPairs(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := database.NewLeadRepository(db)

	err = repo.TransitionStatus(context.Background(), "lead-123", entity.StatusConfirmed, entity.StatusOnTheWay)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	err = repo.TransitionStatus(context.Background(), "lead-123", entity.StatusPending, entity.StatusConfirmed)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	// Nenhum Exec esperado: a tabela de transições barra antes.
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestTransitionStatusConditionalOnCurrent - o WHERE carrega o status de origem
func TestTransitionStatusConditionalOnCurrent(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE leads").
		WithArgs("lead-123", entity.StatusUnlocked, entity.StatusOnTheWay).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := database.NewLeadRepository(db)
	err = repo.TransitionStatus(context.Background(), "lead-123", entity.StatusUnlocked, entity.StatusOnTheWay)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestConfirmZeroRowsIsConflict - confirmação dupla: a segunda observa conflito
func TestConfirmZeroRowsIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE leads").
		WithArgs("lead-123", entity.StatusConfirmed, entity.StatusOnTheWay).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := database.NewLeadRepository(db)
	err = repo.Confirm(context.Background(), "lead-123")

	assert.ErrorIs(t, err, entity.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestFindByIDNotFound
func TestFindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").
		WithArgs("lead-x").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := database.NewLeadRepository(db)
	lead, err := repo.FindByID(context.Background(), "lead-x")

	assert.Nil(t, lead)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

// TestRegisterPinMissReportsLockout - o UPDATE devolve se o PIN ficou travado
func TestRegisterPinMissReportsLockout(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("UPDATE leads").
		WithArgs("lead-123", 3, 900.0).
		WillReturnRows(sqlmock.NewRows([]string{"locked"}).AddRow(true))

	repo := database.NewLeadRepository(db)
	locked, err := repo.RegisterPinMiss(context.Background(), "lead-123", 3, 15*time.Minute)

	assert.NoError(t, err)
	assert.True(t, locked)
	assert.NoError(t, mock.ExpectationsWereMet())
}
