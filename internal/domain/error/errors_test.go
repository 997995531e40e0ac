package error

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseErrorTypes(t *testing.T) {
	assert.Equal(t, "insufficient funds", ErrInsufficientFunds.Error())
	assert.Equal(t, "invalid loan state transition", ErrInvalidTransition.Error())
	assert.True(t, errors.Is(ErrInvalidAmount, ErrValidation))
	assert.True(t, errors.Is(ErrLoanNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrLoanNotFound, ErrWalletNotFound))
}

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"InsufficientFunds", ErrInsufficientFunds, 4001},
		{"InsufficientFundsDetailed", NewInsufficientFundsError(1, "10.00", "5.00"), 4001},
		{"InvalidAmount", ErrInvalidAmount, 4002},
		{"InvalidInterestRate", ErrInvalidInterestRate, 4003},
		{"GenericValidation", ErrInvalidRole, 4004},
		{"SameWallet", ErrSameWallet, 4006},
		{"Forbidden", ErrForbidden, 4030},
		{"LoanNotFound", ErrLoanNotFound, 4043},
		{"WrappedWalletNotFound", fmt.Errorf("lookup: %w", ErrWalletNotFound), 4042},
		{"LenderNotAssigned", ErrLenderNotAssigned, 4040},
		{"InvalidTransition", NewInvalidTransitionError(7, "open", "approve"), 4090},
		{"PendingAdjustment", ErrPendingAdjustmentExists, 4091},
		{"AdjustmentNotPending", ErrAdjustmentNotPending, 4092},
		{"ConcurrentUpdate", ErrConcurrentUpdate, 4094},
		{"Database", fmt.Errorf("%w: dial tcp", ErrDatabaseConnection), 5030},
		{"UnknownError", errors.New("unknown error"), 5000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ErrorCode(tc.err))
		})
	}
}

func TestInsufficientFundsError(t *testing.T) {
	err := NewInsufficientFundsError(42, "5300.00", "200.00")

	assert.Equal(t, "insufficient funds in wallet 42: required 5300.00, available 200.00", err.Error())
	assert.True(t, IsInsufficientFundsError(err))
	assert.True(t, IsInsufficientFundsError(fmt.Errorf("transfer: %w", err)))

	var detailed *InsufficientFundsError
	assert.True(t, errors.As(err, &detailed))
	assert.Equal(t, uint64(42), detailed.WalletID)
	assert.Equal(t, CodeInsufficientFunds, detailed.LogFields()["error_code"])
}

func TestInvalidTransitionError(t *testing.T) {
	t.Run("With loan id", func(t *testing.T) {
		err := NewInvalidTransitionError(3, "closed", "confirm")
		assert.Equal(t, `invalid loan state transition for loan 3: event "confirm" not allowed from state "closed"`, err.Error())
		assert.True(t, IsInvalidTransitionError(err))
		assert.True(t, IsConflictError(err))
	})

	t.Run("Without loan id", func(t *testing.T) {
		err := NewInvalidTransitionError(0, "rejected", "close")
		assert.Equal(t, `invalid loan state transition: event "close" not allowed from state "rejected"`, err.Error())
	})
}

func TestValidationError(t *testing.T) {
	t.Run("Specific cause", func(t *testing.T) {
		err := NewValidationError("amount", "-1", "must be positive", ErrInvalidAmount)

		assert.True(t, errors.Is(err, ErrInvalidAmount))
		assert.True(t, IsValidationError(err))
		assert.Equal(t, CodeInvalidAmount, ErrorCode(err))
		assert.Equal(t, `invalid amount "-1": must be positive`, err.Error())
	})

	t.Run("Generic cause", func(t *testing.T) {
		err := NewValidationError("email", "", "required", nil)

		assert.True(t, IsValidationError(err))
		assert.Equal(t, CodeValidation, ErrorCode(err))
	})
}

func TestLogFields(t *testing.T) {
	t.Run("Rich error", func(t *testing.T) {
		fields := LogFields(fmt.Errorf("approve: %w", NewInsufficientFundsError(1, "2.00", "1.00")))
		assert.Equal(t, "insufficient_funds", fields["error_type"])
		assert.Contains(t, fields["error"], "approve")
	})

	t.Run("Plain error", func(t *testing.T) {
		fields := LogFields(ErrLoanNotFound)
		assert.Equal(t, CodeLoanNotFound, fields["error_code"])
	})
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrUserNotFound))
	assert.True(t, IsNotFoundError(ErrAdjustmentNotFound))
	assert.False(t, IsNotFoundError(ErrForbidden))
}
