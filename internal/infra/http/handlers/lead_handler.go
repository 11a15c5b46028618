package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/traderefer/settlement/internal/infra/http/middleware"
	"github.com/traderefer/settlement/internal/usecase"
)

type LeadHandler struct {
	UnlockUC   *usecase.UnlockLeadUseCase
	OnTheWayUC *usecase.MarkOnTheWayUseCase
	ConfirmUC  *usecase.ConfirmPinUseCase
	GetUC      *usecase.GetLeadUseCase
	DisputeUC  *usecase.DisputeLeadUseCase
}

func NewLeadHandler(
	unlockUC *usecase.UnlockLeadUseCase,
	onTheWayUC *usecase.MarkOnTheWayUseCase,
	confirmUC *usecase.ConfirmPinUseCase,
	getUC *usecase.GetLeadUseCase,
	disputeUC *usecase.DisputeLeadUseCase,
) *LeadHandler {
	return &LeadHandler{
		UnlockUC:   unlockUC,
		OnTheWayUC: onTheWayUC,
		ConfirmUC:  confirmUC,
		GetUC:      getUC,
		DisputeUC:  disputeUC,
	}
}

// A identidade do negócio chega pelo header X-Business-ID; a autenticação em
// si é do gateway de borda, aqui só carregamos a identidade para os guards.
func requireBusinessID(w http.ResponseWriter, r *http.Request) (string, bool) {
	businessID := r.Header.Get("X-Business-ID")
	if businessID == "" {
		writeJSONError(w, http.StatusForbidden, usecase.CodeForbidden, "identidade do negócio ausente")
		return "", false
	}
	return businessID, true
}

func (h *LeadHandler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusinessID(w, r)
	if !ok {
		return
	}

	output, err := h.UnlockUC.Execute(r.Context(), usecase.UnlockInput{
		LeadID:     chi.URLParam(r, "leadId"),
		BusinessID: businessID,
	})
	if err != nil {
		middleware.RecordUnlockOutcome("error")
		writeError(w, err)
		return
	}

	middleware.RecordUnlockOutcome(output.Status)
	writeJSON(w, http.StatusOK, output)
}

func (h *LeadHandler) HandleOnTheWay(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusinessID(w, r)
	if !ok {
		return
	}

	output, err := h.OnTheWayUC.Execute(r.Context(), usecase.MarkOnTheWayInput{
		LeadID:     chi.URLParam(r, "leadId"),
		BusinessID: businessID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

type confirmPinRequest struct {
	PIN string `json:"pin"`
}

func (h *LeadHandler) HandleConfirmPin(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusinessID(w, r)
	if !ok {
		return
	}

	var req confirmPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, usecase.CodeValidationError, "JSON inválido")
		return
	}

	output, err := h.ConfirmUC.Execute(r.Context(), usecase.ConfirmPinInput{
		LeadID:     chi.URLParam(r, "leadId"),
		BusinessID: businessID,
		PIN:        req.PIN,
	})
	if err != nil {
		if de, isDomain := err.(*usecase.DomainError); isDomain && de.Code == usecase.CodeInvalidPin {
			middleware.RecordPinFailure()
		}
		writeError(w, err)
		return
	}

	middleware.RecordLeadConfirmed(output.CommissionCents)
	writeJSON(w, http.StatusOK, output)
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	// GET aceita caller sem identidade: a projeção sai mascarada.
	businessID := r.Header.Get("X-Business-ID")

	projection, err := h.GetUC.Execute(r.Context(), chi.URLParam(r, "leadId"), businessID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, projection)
}

type disputeRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes,omitempty"`
}

func (h *LeadHandler) HandleDispute(w http.ResponseWriter, r *http.Request) {
	businessID, ok := requireBusinessID(w, r)
	if !ok {
		return
	}

	var req disputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, usecase.CodeValidationError, "JSON inválido")
		return
	}

	output, err := h.DisputeUC.Execute(r.Context(), usecase.DisputeInput{
		LeadID:     chi.URLParam(r, "leadId"),
		BusinessID: businessID,
		Reason:     req.Reason,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, output)
}
