package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrPermissionDenied = new(ErrCodePermissionDenied, "permission denied")
	ErrHTTPClient       = new(ErrCodeHTTPClient, "http client error")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrSystem           = new(ErrCodeSystemError, "system error")

	// Ledger and dunning domain rejections
	ErrAlreadyPaid       = new(ErrCodeAlreadyPaid, "invoice already paid")
	ErrExceedsPayable    = new(ErrCodeExceedsPayable, "amount exceeds payable")
	ErrQuotaExceeded     = new(ErrCodeQuotaExceeded, "reminder quota exceeded")
	ErrTransport         = new(ErrCodeTransport, "notification transport error")
	ErrRaceConditionVeto = new(ErrCodeRaceConditionVeto, "reminder vetoed by concurrent quota change")
)

const (
	ErrCodeHTTPClient        = "http_client_error"
	ErrCodeSystemError       = "system_error"
	ErrCodeNotFound          = "not_found"
	ErrCodeAlreadyExists     = "already_exists"
	ErrCodeValidation        = "validation_error"
	ErrCodeInvalidOperation  = "invalid_operation"
	ErrCodePermissionDenied  = "permission_denied"
	ErrCodeDatabase          = "database_error"
	ErrCodeAlreadyPaid       = "already_paid"
	ErrCodeExceedsPayable    = "exceeds_payable"
	ErrCodeQuotaExceeded     = "quota_exceeded"
	ErrCodeTransport         = "transport_error"
	ErrCodeRaceConditionVeto = "race_condition_veto"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsPermissionDenied checks if an error is a permission denied error
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsAlreadyPaid checks if a payment was rejected because the invoice is settled
func IsAlreadyPaid(err error) bool {
	return errors.Is(err, ErrAlreadyPaid)
}

// IsExceedsPayable checks if a payment was rejected for overpaying the invoice
func IsExceedsPayable(err error) bool {
	return errors.Is(err, ErrExceedsPayable)
}

// IsQuotaExceeded checks if a reminder was blocked by the account quota
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// IsTransport checks if an error came from the notification transport
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// statusCodes is checked in order, domain sentinels first
var statusCodes = []struct {
	sentinel *InternalError
	status   int
}{
	{ErrAlreadyPaid, http.StatusConflict},
	{ErrExceedsPayable, http.StatusUnprocessableEntity},
	{ErrQuotaExceeded, http.StatusTooManyRequests},
	{ErrRaceConditionVeto, http.StatusConflict},
	{ErrTransport, http.StatusBadGateway},
	{ErrNotFound, http.StatusNotFound},
	{ErrAlreadyExists, http.StatusConflict},
	{ErrValidation, http.StatusBadRequest},
	{ErrInvalidOperation, http.StatusBadRequest},
	{ErrPermissionDenied, http.StatusForbidden},
	{ErrHTTPClient, http.StatusInternalServerError},
	{ErrDatabase, http.StatusInternalServerError},
	{ErrSystem, http.StatusInternalServerError},
}

func HTTPStatusFromErr(err error) int {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.sentinel) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}

// CodeOf returns the machine readable code of the first sentinel err is marked with
func CodeOf(err error) string {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.sentinel) {
			return sc.sentinel.Code
		}
	}
	return ErrCodeSystemError
}
