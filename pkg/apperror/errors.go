package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger Business Logic (LED) ----

func ErrInvalidAmount(err error) *AppError {
	return Wrap("LED_001", "Amount must be positive with at most two decimal places", http.StatusBadRequest, err)
}

// ErrInvalidShape reports a field combination the transaction type does not allow.
// The message names the offending field.
func ErrInvalidShape(message string) *AppError {
	return New("LED_002", message, http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("LED_003", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrInsufficientFunds() *AppError {
	return New("LED_004", "Insufficient balance in wallet", http.StatusUnprocessableEntity)
}

func ErrAlreadyReversed() *AppError {
	return New("LED_005", "Transaction has already been reversed", http.StatusConflict)
}

func ErrNotReversible() *AppError {
	return New("LED_006", "A reversal transaction cannot be reversed", http.StatusConflict)
}

func ErrPersonHasBalance() *AppError {
	return New("LED_007", "Person has transaction history and cannot be deleted", http.StatusConflict)
}

func ErrWalletExists(walletType string) *AppError {
	return New("LED_008", fmt.Sprintf("%s wallet already exists", walletType), http.StatusConflict)
}

// ErrIdempotencyConflict is returned when an Idempotency-Key is reused for a
// different transaction.
func ErrIdempotencyConflict() *AppError {
	return New("LED_009", "Idempotency-Key was already used for a different transaction", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New("AUTH_002", "Email already registered", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// ErrBusy is returned when the resources of a request stayed locked past the
// configured timeout. The request is safe to retry.
func ErrBusy(err error) *AppError {
	return Wrap("SYS_002", "Resource busy, retry later", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// ---- Validation (VAL) ----

// Validation returns a VAL_001 request validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ErrPayloadTooLarge is returned when a request body exceeds the server limit.
func ErrPayloadTooLarge() *AppError {
	return New("VAL_002", "Request body too large", http.StatusRequestEntityTooLarge)
}
