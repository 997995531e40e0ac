package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInsufficientFunds       = 4001
	CodeInvalidAmount           = 4002
	CodeInvalidInterestRate     = 4003
	CodeValidation              = 4004
	CodeConstraintViolation     = 4005
	CodeSameWallet              = 4006
	CodeForbidden               = 4030
	CodeNotFound                = 4040
	CodeUserNotFound            = 4041
	CodeWalletNotFound          = 4042
	CodeLoanNotFound            = 4043
	CodeAdjustmentNotFound      = 4044
	CodeInvalidTransition       = 4090
	CodePendingAdjustmentExists = 4091
	CodeAdjustmentNotPending    = 4092
	CodeDuplicateUser           = 4093
	CodeConcurrentUpdate        = 4094

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeDatabaseConnection = 5030
)

// Base error types
var (
	// ErrInsufficientFunds is returned when the source wallet cannot cover a transfer
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidTransition is returned when a loan event is not legal from the current state
	ErrInvalidTransition = errors.New("invalid loan state transition")

	// ErrValidation is the parent of every malformed-input error
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is the parent of every "not found" error
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden is returned when the acting user may not perform the command
	ErrForbidden = errors.New("operation not permitted for this user")

	// ErrPendingAdjustmentExists is returned when proposing while another adjustment is pending
	ErrPendingAdjustmentExists = errors.New("loan already has a pending adjustment")

	// ErrAdjustmentNotPending is returned when acting on an adjustment that was already resolved
	ErrAdjustmentNotPending = errors.New("adjustment is not pending")

	// ErrDuplicateUser is returned when trying to create a user that already exists
	ErrDuplicateUser = errors.New("user already exists")

	// ErrConcurrentUpdate is returned when the store aborted the unit of work because of a conflicting writer
	ErrConcurrentUpdate = errors.New("concurrent update conflict")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// Validation errors
var (
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be a positive decimal with at most 2 places", ErrValidation)
	ErrInvalidInterestRate = fmt.Errorf("%w: interest rate must be a non-negative decimal", ErrValidation)
	ErrSameWallet          = fmt.Errorf("%w: source and destination wallet must differ", ErrValidation)
	ErrInvalidRole         = fmt.Errorf("%w: unknown role", ErrValidation)
	ErrInvalidEvent        = fmt.Errorf("%w: unknown loan event", ErrValidation)
	ErrInvalidEmail        = fmt.Errorf("%w: email is required", ErrValidation)
	ErrEmptyAdjustment     = fmt.Errorf("%w: adjustment must change the amount or the interest rate", ErrValidation)
	ErrInvalidID           = fmt.Errorf("%w: identifier must be positive", ErrValidation)
)

// Not found errors
var (
	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
	ErrWalletNotFound     = fmt.Errorf("%w: wallet", ErrNotFound)
	ErrLoanNotFound       = fmt.Errorf("%w: loan", ErrNotFound)
	ErrAdjustmentNotFound = fmt.Errorf("%w: loan adjustment", ErrNotFound)
	ErrLenderNotAssigned  = fmt.Errorf("%w: loan has no lender", ErrNotFound)
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidInterestRate):
		return CodeInvalidInterestRate
	case errors.Is(err, ErrSameWallet):
		return CodeSameWallet
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrWalletNotFound):
		return CodeWalletNotFound
	case errors.Is(err, ErrLoanNotFound):
		return CodeLoanNotFound
	case errors.Is(err, ErrAdjustmentNotFound):
		return CodeAdjustmentNotFound
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(err, ErrPendingAdjustmentExists):
		return CodePendingAdjustmentExists
	case errors.Is(err, ErrAdjustmentNotPending):
		return CodeAdjustmentNotPending
	case errors.Is(err, ErrDuplicateUser):
		return CodeDuplicateUser
	case errors.Is(err, ErrConcurrentUpdate):
		return CodeConcurrentUpdate
	case errors.Is(err, ErrConstraintViolation):
		return CodeConstraintViolation
	case errors.Is(err, ErrDatabaseConnection):
		return CodeDatabaseConnection
	default:
		return CodeInternalServer
	}
}

// InsufficientFundsError provides detailed error information for a transfer the source wallet cannot cover
type InsufficientFundsError struct {
	WalletID  uint64
	Required  string
	Available string
}

// Error implements the error interface
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in wallet %d: required %s, available %s",
		e.WalletID, e.Required, e.Available)
}

// Is checks if the target error is an ErrInsufficientFunds
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientFundsError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "insufficient_funds",
		"wallet_id":  e.WalletID,
		"required":   e.Required,
		"available":  e.Available,
		"error_code": CodeInsufficientFunds,
	}
}

// NewInsufficientFundsError creates a new detailed insufficient funds error
func NewInsufficientFundsError(walletID uint64, required, available string) error {
	return &InsufficientFundsError{
		WalletID:  walletID,
		Required:  required,
		Available: available,
	}
}

// InvalidTransitionError describes a loan event fired from a state that does not allow it
type InvalidTransitionError struct {
	LoanID uint64
	From   string
	Event  string
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	if e.LoanID == 0 {
		return fmt.Sprintf("invalid loan state transition: event %q not allowed from state %q", e.Event, e.From)
	}
	return fmt.Sprintf("invalid loan state transition for loan %d: event %q not allowed from state %q",
		e.LoanID, e.Event, e.From)
}

// Is checks if the target error is an ErrInvalidTransition
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// LogFields returns a map of fields for structured logging
func (e *InvalidTransitionError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "invalid_transition",
		"loan_id":    e.LoanID,
		"from":       e.From,
		"event":      e.Event,
		"error_code": CodeInvalidTransition,
	}
}

// NewInvalidTransitionError creates a new invalid transition error
func NewInvalidTransitionError(loanID uint64, from, event string) error {
	return &InvalidTransitionError{
		LoanID: loanID,
		From:   from,
		Event:  event,
	}
}

// ValidationError names the offending field of a rejected command
type ValidationError struct {
	Field  string
	Value  string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Unwrap returns the underlying error
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation for validation errors without a more specific cause
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// LogFields returns a map of fields for structured logging
func (e *ValidationError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "validation_error",
		"field":      e.Field,
		"value":      e.Value,
		"reason":     e.Reason,
		"error_code": ErrorCode(e),
	}
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, value, reason string, err error) error {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
		Err:    err,
	}
}

// IsInsufficientFundsError checks if the error is related to insufficient funds
func IsInsufficientFundsError(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

// IsInvalidTransitionError checks if the error is an illegal state machine event
func IsInvalidTransitionError(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// IsValidationError checks if the error is any kind of malformed input
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflictError checks if the error means the command conflicts with current state
func IsConflictError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrPendingAdjustmentExists) ||
		errors.Is(err, ErrAdjustmentNotPending) ||
		errors.Is(err, ErrDuplicateUser) ||
		errors.Is(err, ErrConcurrentUpdate)
}

// LogFields extracts structured fields from rich domain errors, falling back to the message
func LogFields(err error) map[string]any {
	var withFields interface{ LogFields() map[string]any }
	if errors.As(err, &withFields) {
		fields := withFields.LogFields()
		fields["error"] = err.Error()
		return fields
	}
	return map[string]any{
		"error":      err.Error(),
		"error_code": ErrorCode(err),
	}
}
