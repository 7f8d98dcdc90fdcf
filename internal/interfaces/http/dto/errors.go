package dto

import (
	"net/http"

	"github.com/finbooks/backend/internal/domain/shared"
)

// Error codes raised by the HTTP layer itself. Domain error codes come
// from internal/domain/shared and pass through unchanged.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes. Business-rule
// violations map to 422; a locked accounting period maps to 423 Locked so
// callers can distinguish it from ordinary validation failures.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeInvalidInput:        http.StatusBadRequest,
	shared.CodePeriodLocked:        http.StatusLocked,

	shared.CodeInvalidStatus:       http.StatusUnprocessableEntity,
	shared.CodeDirectionMismatch:   http.StatusUnprocessableEntity,
	shared.CodeOverAllocation:      http.StatusUnprocessableEntity,
	shared.CodeInsufficientBalance: http.StatusUnprocessableEntity,
	shared.CodeInvalidPaymentType:  http.StatusUnprocessableEntity,
	shared.CodeAlreadyReversed:     http.StatusConflict,
	shared.CodeDocumentCancelled:   http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to
// 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
