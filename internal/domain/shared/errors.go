package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes for expected business-rule violations. Callers distinguish
// failure kinds by code, never by message text.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodePeriodLocked        = "PERIOD_LOCKED"
	CodeInvalidStatus       = "INVALID_STATUS"
	CodeDirectionMismatch   = "DIRECTION_MISMATCH"
	CodeOverAllocation      = "OVER_ALLOCATION"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInvalidPaymentType  = "INVALID_PAYMENT_TYPE"
	CodeAlreadyReversed     = "ALREADY_REVERSED"
	CodeDocumentCancelled   = "DOCUMENT_CANCELLED"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrPeriodLocked        = NewDomainError(CodePeriodLocked, "Accounting period is locked")
)

// ErrorCode returns the domain error code carried by err, or empty string
// if err is not a DomainError.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err is a DomainError with the given code
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
