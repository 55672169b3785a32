package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound                = errors.New("resource not found")
	ErrDuplicateWallet         = errors.New("owner already has a wallet")
	ErrInactiveWallet          = errors.New("wallet is not active")
	ErrInactiveAgent           = errors.New("agent is not active")
	ErrOutOfRange              = errors.New("balance out of configured range")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrSelfTransfer            = errors.New("cannot transfer to the same wallet")
	ErrSpendingLimitExceeded   = errors.New("per-transaction limit exceeded")
	ErrDailyLimitExceeded      = errors.New("daily limit exceeded")
	ErrUnauthorizedCounterparty = errors.New("counterparty not authorized")
	ErrSchemaViolation         = errors.New("intent schema violation")
	ErrMissingField            = errors.New("required field missing")
	ErrAlreadyTerminal         = errors.New("transaction already terminal")
	ErrPartialTransferFailure  = errors.New("transfer partially applied")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrInvalidInput            = errors.New("invalid input")
	ErrAlreadyExists           = errors.New("resource already exists")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
)

// AppError represents an application error with HTTP status and a stable
// machine-readable code. Internal store details never leak into Message.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, "NOT_FOUND", message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "BAD_REQUEST", message, ErrInvalidInput)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, "CONFLICT", message, ErrAlreadyExists)
}

func Unprocessable(code, message string, err error) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, code, message, err)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, "FORBIDDEN", message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "INTERNAL", "internal server error", err)
}

// kindMap assigns each domain sentinel its HTTP status and stable code.
var kindMap = []struct {
	err    error
	status int
	code   string
}{
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrDuplicateWallet, http.StatusConflict, "DUPLICATE_WALLET"},
	{ErrInactiveWallet, http.StatusUnprocessableEntity, "INACTIVE_WALLET"},
	{ErrInactiveAgent, http.StatusUnprocessableEntity, "INACTIVE_AGENT"},
	{ErrOutOfRange, http.StatusUnprocessableEntity, "OUT_OF_RANGE"},
	{ErrInsufficientFunds, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
	{ErrSelfTransfer, http.StatusBadRequest, "SELF_TRANSFER"},
	{ErrSpendingLimitExceeded, http.StatusForbidden, "SPENDING_LIMIT_EXCEEDED"},
	{ErrDailyLimitExceeded, http.StatusForbidden, "DAILY_LIMIT_EXCEEDED"},
	{ErrUnauthorizedCounterparty, http.StatusForbidden, "UNAUTHORIZED_COUNTERPARTY"},
	{ErrSchemaViolation, http.StatusBadRequest, "SCHEMA_VIOLATION"},
	{ErrMissingField, http.StatusBadRequest, "MISSING_FIELD"},
	{ErrAlreadyTerminal, http.StatusConflict, "ALREADY_TERMINAL"},
	{ErrPartialTransferFailure, http.StatusInternalServerError, "PARTIAL_TRANSFER_FAILURE"},
	{ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
	{ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST"},
	{ErrAlreadyExists, http.StatusConflict, "CONFLICT"},
	{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
}

// FromDomain maps a domain sentinel (or an error wrapping one) to an
// AppError with the proper status and code. Unknown errors become 500s
// with a generic message so store internals never reach callers.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, k := range kindMap {
		if errors.Is(err, k.err) {
			return NewAppError(k.status, k.code, err.Error(), k.err)
		}
	}
	return InternalError(err)
}
