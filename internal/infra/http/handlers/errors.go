package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/traderefer/settlement/internal/usecase"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusByCode traduz a taxonomia da camada de usecase para HTTP.
var statusByCode = map[string]int{
	usecase.CodeNotFound:             http.StatusNotFound,
	usecase.CodeForbidden:            http.StatusForbidden,
	usecase.CodeWrongState:           http.StatusBadRequest,
	usecase.CodeInvalidPin:           http.StatusBadRequest,
	usecase.CodePinLocked:            http.StatusForbidden,
	usecase.CodePaymentFailed:        http.StatusPaymentRequired,
	usecase.CodeGatewayMisconfigured: http.StatusServiceUnavailable,
	usecase.CodeValidationError:      http.StatusBadRequest,
	usecase.CodeDisputeExists:        http.StatusConflict,
	usecase.CodeConflict:             http.StatusConflict,
}

func writeError(w http.ResponseWriter, err error) {
	if de, ok := err.(*usecase.DomainError); ok {
		status, mapped := statusByCode[de.Code]
		if !mapped {
			status = http.StatusBadRequest
		}
		if de.Code == usecase.CodeForbidden {
			// Evento relevante de segurança: negócio errado mexendo em lead alheio.
			log.Printf("🔒 acesso negado: %s", de.Message)
		}
		writeJSONError(w, status, de.Code, de.Message)
		return
	}

	log.Printf("❌ erro interno: %v", err)
	writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "erro interno, tente novamente")
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
