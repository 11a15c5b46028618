package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/traderefer/settlement/internal/entity"
	"github.com/traderefer/settlement/internal/infra/http/handlers"
	"github.com/traderefer/settlement/internal/usecase"
)

// MockLeadRepositoryHandler
type MockLeadRepositoryHandler struct {
	mock.Mock
}

func (m *MockLeadRepositoryHandler) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepositoryHandler) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepositoryHandler) TransitionToUnlocked(ctx context.Context, leadID string, snap entity.FeeSnapshot, intentRef string) error {
	args := m.Called(ctx, leadID, snap, intentRef)
	return args.Error(0)
}

func (m *MockLeadRepositoryHandler) TransitionStatus(ctx context.Context, leadID, from, to string) error {
	args := m.Called(ctx, leadID, from, to)
	return args.Error(0)
}

func (m *MockLeadRepositoryHandler) Confirm(ctx context.Context, leadID string) error {
	args := m.Called(ctx, leadID)
	return args.Error(0)
}

func (m *MockLeadRepositoryHandler) RecordIntentRef(ctx context.Context, leadID, intentRef string) error {
	args := m.Called(ctx, leadID, intentRef)
	return args.Error(0)
}

func (m *MockLeadRepositoryHandler) ClearIntentRef(ctx context.Context, leadID string) error {
	args := m.Called(ctx, leadID)
	return args.Error(0)
}

func (m *MockLeadRepositoryHandler) FindStalePendingIntents(ctx context.Context, olderThan time.Duration) ([]*entity.Lead, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepositoryHandler) RegisterPinMiss(ctx context.Context, leadID string, maxAttempts int, lockFor time.Duration) (bool, error) {
	args := m.Called(ctx, leadID, maxAttempts, lockFor)
	return args.Bool(0), args.Error(1)
}

// MockBusinessRepositoryHandler
type MockBusinessRepositoryHandler struct {
	mock.Mock
}

func (m *MockBusinessRepositoryHandler) FindByID(ctx context.Context, id string) (*entity.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Business), args.Error(1)
}

func (m *MockBusinessRepositoryHandler) DebitWallet(ctx context.Context, id string, amountCents int) error {
	args := m.Called(ctx, id, amountCents)
	return args.Error(0)
}

func (m *MockBusinessRepositoryHandler) CreditWallet(ctx context.Context, id string, amountCents int) error {
	args := m.Called(ctx, id, amountCents)
	return args.Error(0)
}

// MockPaymentGatewayHandler
type MockPaymentGatewayHandler struct {
	mock.Mock
}

func (m *MockPaymentGatewayHandler) CreateOrReuseIntent(ctx context.Context, leadID string, amountCents int, idempotencyKey string) (*usecase.IntentResult, error) {
	args := m.Called(ctx, leadID, amountCents, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.IntentResult), args.Error(1)
}

func (m *MockPaymentGatewayHandler) GetIntent(ctx context.Context, intentRef string) (*usecase.IntentResult, error) {
	args := m.Called(ctx, intentRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.IntentResult), args.Error(1)
}

func testRouter(h *handlers.LeadHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/leads/{leadId}/unlock", h.HandleUnlock)
	r.Post("/leads/{leadId}/on-the-way", h.HandleOnTheWay)
	r.Post("/leads/{leadId}/confirm-pin", h.HandleConfirmPin)
	r.Get("/leads/{leadId}", h.HandleGet)
	return r
}

func handlerLead(status string) *entity.Lead {
	gross, cut := 1000, 200
	return &entity.Lead{
		ID:                       "lead-123",
		BusinessID:               "biz-1",
		ReferrerID:               "ref-1",
		ConsumerName:             "Ana Souza",
		ConsumerPhone:            "0412345689",
		ConsumerEmail:            "ana@example.com",
		Status:                   status,
		CompletionPIN:            "4821",
		UnlockFeeCents:           1200,
		ReferralFeeSnapshotCents: &gross,
		PlatformFeeCents:         &cut,
	}
}

// ============ TESTES DO HANDLER ============

// TestUnlockHandlerRequiresIdentity - sem X-Business-ID nada acontece
func TestUnlockHandlerRequiresIdentity(t *testing.T) {
	mockLeadRepo := new(MockLeadRepositoryHandler)
	mockGateway := new(MockPaymentGatewayHandler)

	uc := usecase.NewUnlockLeadUseCase(mockLeadRepo, new(MockBusinessRepositoryHandler), mockGateway, nil, false)
	handler := handlers.NewLeadHandler(uc, nil, nil, nil, nil)

	req := httptest.NewRequest("POST", "/leads/lead-123/unlock", nil)
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockLeadRepo.AssertNotCalled(t, "FindByID")
	mockGateway.AssertNotCalled(t, "CreateOrReuseIntent")
}

// TestUnlockHandlerSuccess
func TestUnlockHandlerSuccess(t *testing.T) {
	mockLeadRepo := new(MockLeadRepositoryHandler)
	mockBusinessRepo := new(MockBusinessRepositoryHandler)
	mockGateway := new(MockPaymentGatewayHandler)

	mockLeadRepo.On("FindByID", mock.Anything, "lead-123").Return(handlerLead(entity.StatusPending), nil)
	mockBusinessRepo.On("FindByID", mock.Anything, "biz-1").Return(&entity.Business{ID: "biz-1", ReferralFeeCents: 1000}, nil)
	mockGateway.On("CreateOrReuseIntent", mock.Anything, "lead-123", 1200, "lead-unlock-lead-123").
		Return(&usecase.IntentResult{IntentRef: "pi_1", Outcome: usecase.OutcomeSucceeded}, nil)
	mockLeadRepo.On("TransitionToUnlocked", mock.Anything, "lead-123", mock.Anything, "pi_1").Return(nil)

	uc := usecase.NewUnlockLeadUseCase(mockLeadRepo, mockBusinessRepo, mockGateway, nil, false)
	handler := handlers.NewLeadHandler(uc, nil, nil, nil, nil)

	req := httptest.NewRequest("POST", "/leads/lead-123/unlock", nil)
	req.Header.Set("X-Business-ID", "biz-1")
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response usecase.UnlockOutput
	json.NewDecoder(w.Body).Decode(&response)
	assert.Equal(t, entity.StatusUnlocked, response.Status)
}

// TestUnlockHandlerMisconfiguredGatewayIs503
func TestUnlockHandlerMisconfiguredGatewayIs503(t *testing.T) {
	mockLeadRepo := new(MockLeadRepositoryHandler)
	mockBusinessRepo := new(MockBusinessRepositoryHandler)
	mockGateway := new(MockPaymentGatewayHandler)

	mockLeadRepo.On("FindByID", mock.Anything, "lead-123").Return(handlerLead(entity.StatusPending), nil)
	mockBusinessRepo.On("FindByID", mock.Anything, "biz-1").Return(&entity.Business{ID: "biz-1", ReferralFeeCents: 1000}, nil)
	mockGateway.On("CreateOrReuseIntent", mock.Anything, "lead-123", 1200, "lead-unlock-lead-123").
		Return(&usecase.IntentResult{Outcome: usecase.OutcomeMisconfigured}, nil)

	uc := usecase.NewUnlockLeadUseCase(mockLeadRepo, mockBusinessRepo, mockGateway, nil, false)
	handler := handlers.NewLeadHandler(uc, nil, nil, nil, nil)

	req := httptest.NewRequest("POST", "/leads/lead-123/unlock", nil)
	req.Header.Set("X-Business-ID", "biz-1")
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// TestConfirmPinHandlerWrongPinIs400
func TestConfirmPinHandlerWrongPinIs400(t *testing.T) {
	mockLeadRepo := new(MockLeadRepositoryHandler)

	mockLeadRepo.On("FindByID", mock.Anything, "lead-123").Return(handlerLead(entity.StatusOnTheWay), nil)
	mockLeadRepo.On("RegisterPinMiss", mock.Anything, "lead-123", mock.Anything, mock.Anything).Return(false, nil)

	uc := usecase.NewConfirmPinUseCase(mockLeadRepo, nil)
	handler := handlers.NewLeadHandler(nil, nil, uc, nil, nil)

	body, _ := json.Marshal(map[string]string{"pin": "0000"})
	req := httptest.NewRequest("POST", "/leads/lead-123/confirm-pin", bytes.NewReader(body))
	req.Header.Set("X-Business-ID", "biz-1")
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]string
	json.NewDecoder(w.Body).Decode(&response)
	assert.Equal(t, "INVALID_PIN", response["error"])
}

// TestConfirmPinHandlerLockedIs403
func TestConfirmPinHandlerLockedIs403(t *testing.T) {
	mockLeadRepo := new(MockLeadRepositoryHandler)

	lead := handlerLead(entity.StatusOnTheWay)
	until := time.Now().Add(10 * time.Minute)
	lead.PinLockedUntil = &until
	mockLeadRepo.On("FindByID", mock.Anything, "lead-123").Return(lead, nil)

	uc := usecase.NewConfirmPinUseCase(mockLeadRepo, nil)
	handler := handlers.NewLeadHandler(nil, nil, uc, nil, nil)

	body, _ := json.Marshal(map[string]string{"pin": "4821"})
	req := httptest.NewRequest("POST", "/leads/lead-123/confirm-pin", bytes.NewReader(body))
	req.Header.Set("X-Business-ID", "biz-1")
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// TestConfirmPinHandlerSuccess
func TestConfirmPinHandlerSuccess(t *testing.T) {
	mockLeadRepo := new(MockLeadRepositoryHandler)

	mockLeadRepo.On("FindByID", mock.Anything, "lead-123").Return(handlerLead(entity.StatusOnTheWay), nil)
	mockLeadRepo.On("Confirm", mock.Anything, "lead-123").Return(nil)

	uc := usecase.NewConfirmPinUseCase(mockLeadRepo, nil)
	handler := handlers.NewLeadHandler(nil, nil, uc, nil, nil)

	body, _ := json.Marshal(map[string]string{"pin": "4821"})
	req := httptest.NewRequest("POST", "/leads/lead-123/confirm-pin", bytes.NewReader(body))
	req.Header.Set("X-Business-ID", "biz-1")
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response usecase.StatusOutput
	json.NewDecoder(w.Body).Decode(&response)
	assert.Equal(t, entity.StatusConfirmed, response.Status)
	assert.Equal(t, 1000, response.CommissionCents)
}

// TestGetHandlerAnonymousSeesMasked - GET sem identidade devolve contato mascarado
func TestGetHandlerAnonymousSeesMasked(t *testing.T) {
	mockLeadRepo := new(MockLeadRepositoryHandler)
	mockLeadRepo.On("FindByID", mock.Anything, "lead-123").Return(handlerLead(entity.StatusUnlocked), nil)

	uc := usecase.NewGetLeadUseCase(mockLeadRepo)
	handler := handlers.NewLeadHandler(nil, nil, nil, uc, nil)

	req := httptest.NewRequest("GET", "/leads/lead-123", nil)
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	raw := w.Body.String()
	assert.NotContains(t, raw, "4821")

	var response usecase.LeadProjection
	json.Unmarshal([]byte(raw), &response)
	assert.Equal(t, "Ana ***", response.ConsumerName)
	assert.Equal(t, "0412****89", response.ConsumerPhone)
}
