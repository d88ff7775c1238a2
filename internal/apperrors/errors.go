package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// Ledger business rule violations. None of these are retried automatically.
var (
	ErrCurrencyMismatch        = errors.New("currency mismatch")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrSelfTransfer            = errors.New("source and destination accounts are the same")
	ErrOwnershipMismatch       = errors.New("accounts belong to different owners")
	ErrDuplicateName           = errors.New("name already in use")
	ErrUnknownTransactionType  = errors.New("unknown transaction type")
	ErrAlreadyLinked           = errors.New("category already linked to transaction")
	ErrAccountInactive         = errors.New("account is not active")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// ErrConcurrentUpdate is returned when an optimistic version check fails on save.
var ErrConcurrentUpdate = errors.New("concurrent update detected")

// ErrTransient marks storage failures (connectivity, deadlocks, serialization
// failures, unexpected constraint violations) that the caller may retry.
var ErrTransient = errors.New("transient storage failure")

// AppError carries an HTTP-ish status code and a readable message alongside
// the error kind and the underlying cause.
type AppError struct {
	Code    int
	Message string
	Kind    error
	Err     error
}

// NewAppError creates an AppError without a specific kind.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewTransientError wraps a storage failure so that errors.Is(err, ErrTransient) holds.
func NewTransientError(message string, err error) *AppError {
	return &AppError{Code: http.StatusServiceUnavailable, Message: message, Kind: ErrTransient, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsRetryable reports whether the caller may safely retry the failed operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrConcurrentUpdate)
}
