package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeInvalidJSON  = "INVALID_JSON"
)

// Resource error codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidTransition          = "INVALID_TRANSITION"
	ErrCodeInvalidAmount              = "INVALID_AMOUNT"
	ErrCodeInvalidRate                = "INVALID_RATE"
	ErrCodeOverpaymentRejected        = "OVERPAYMENT_REJECTED"
	ErrCodeMissingInstrumentReference = "MISSING_INSTRUMENT_REFERENCE"
	ErrCodeInvoiceHasPayments         = "INVOICE_HAS_PAYMENTS"
	ErrCodePartialBatchFailure        = "PARTIAL_BATCH_FAILURE"
	ErrCodeAccountInactive            = "ACCOUNT_INACTIVE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidTransition:          http.StatusUnprocessableEntity,
	ErrCodeInvalidAmount:              http.StatusUnprocessableEntity,
	ErrCodeInvalidRate:                http.StatusUnprocessableEntity,
	ErrCodeOverpaymentRejected:        http.StatusUnprocessableEntity,
	ErrCodeMissingInstrumentReference: http.StatusUnprocessableEntity,
	ErrCodeInvoiceHasPayments:         http.StatusUnprocessableEntity,
	ErrCodePartialBatchFailure:        http.StatusUnprocessableEntity,
	ErrCodeAccountInactive:            http.StatusUnprocessableEntity,

	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
