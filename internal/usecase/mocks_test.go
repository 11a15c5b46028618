package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/traderefer/settlement/internal/entity"
	"github.com/traderefer/settlement/internal/infra/queue"
	"github.com/traderefer/settlement/internal/usecase"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) TransitionToUnlocked(ctx context.Context, leadID string, snap entity.FeeSnapshot, intentRef string) error {
	args := m.Called(ctx, leadID, snap, intentRef)
	return args.Error(0)
}

func (m *MockLeadRepository) TransitionStatus(ctx context.Context, leadID, from, to string) error {
	args := m.Called(ctx, leadID, from, to)
	return args.Error(0)
}

func (m *MockLeadRepository) Confirm(ctx context.Context, leadID string) error {
	args := m.Called(ctx, leadID)
	return args.Error(0)
}

func (m *MockLeadRepository) RecordIntentRef(ctx context.Context, leadID, intentRef string) error {
	args := m.Called(ctx, leadID, intentRef)
	return args.Error(0)
}

func (m *MockLeadRepository) ClearIntentRef(ctx context.Context, leadID string) error {
	args := m.Called(ctx, leadID)
	return args.Error(0)
}

func (m *MockLeadRepository) FindStalePendingIntents(ctx context.Context, olderThan time.Duration) ([]*entity.Lead, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) RegisterPinMiss(ctx context.Context, leadID string, maxAttempts int, lockFor time.Duration) (bool, error) {
	args := m.Called(ctx, leadID, maxAttempts, lockFor)
	return args.Bool(0), args.Error(1)
}

// MockBusinessRepository
type MockBusinessRepository struct {
	mock.Mock
}

func (m *MockBusinessRepository) FindByID(ctx context.Context, id string) (*entity.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Business), args.Error(1)
}

func (m *MockBusinessRepository) DebitWallet(ctx context.Context, id string, amountCents int) error {
	args := m.Called(ctx, id, amountCents)
	return args.Error(0)
}

func (m *MockBusinessRepository) CreditWallet(ctx context.Context, id string, amountCents int) error {
	args := m.Called(ctx, id, amountCents)
	return args.Error(0)
}

// MockPaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateOrReuseIntent(ctx context.Context, leadID string, amountCents int, idempotencyKey string) (*usecase.IntentResult, error) {
	args := m.Called(ctx, leadID, amountCents, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.IntentResult), args.Error(1)
}

func (m *MockPaymentGateway) GetIntent(ctx context.Context, intentRef string) (*usecase.IntentResult, error) {
	args := m.Called(ctx, intentRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.IntentResult), args.Error(1)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishCommission(ctx context.Context, payload queue.CommissionPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// MockDisputeRepository
type MockDisputeRepository struct {
	mock.Mock
}

func (m *MockDisputeRepository) Create(ctx context.Context, dispute *entity.Dispute) error {
	args := m.Called(ctx, dispute)
	return args.Error(0)
}

func (m *MockDisputeRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDisputeRepository) ExistsForLead(ctx context.Context, leadID string) (bool, error) {
	args := m.Called(ctx, leadID)
	return args.Bool(0), args.Error(1)
}
