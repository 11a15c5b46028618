package usecase

// Códigos retornados pela camada de settlement. Os handlers mapeiam cada um
// para o status HTTP correspondente.
const (
	CodeNotFound             = "NOT_FOUND"
	CodeForbidden            = "FORBIDDEN"
	CodeWrongState           = "WRONG_STATE"
	CodeInvalidPin           = "INVALID_PIN"
	CodePinLocked            = "PIN_LOCKED"
	CodePaymentFailed        = "PAYMENT_FAILED"
	CodeGatewayMisconfigured = "GATEWAY_MISCONFIGURED"
	CodeValidationError      = "VALIDATION_ERROR"
	CodeDisputeExists        = "DISPUTE_EXISTS"
	CodeConflict             = "CONFLICT"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// TechnicalError cobre falhas de infraestrutura (banco, fila). Nunca deixa um
// lead em estado inconsistente: toda escrita de status é um único UPDATE.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}
