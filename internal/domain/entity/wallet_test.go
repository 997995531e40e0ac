package entity

import (
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/loan-ledger/mocks/port/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWallet(t *testing.T) {
	fixedTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(fixedTime).Maybe()

	t.Run("Valid wallet", func(t *testing.T) {
		w, err := NewWallet(7, decimal.RequireFromString("1000000"), mockTime)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), w.UserID)
		assert.Equal(t, "1000000.00", w.FormattedBalance())
		assert.Equal(t, fixedTime, w.CreatedAt)
	})

	t.Run("Missing owner", func(t *testing.T) {
		_, err := NewWallet(0, decimal.Zero, mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidID)
	})

	t.Run("Negative initial balance", func(t *testing.T) {
		_, err := NewWallet(1, decimal.RequireFromString("-0.01"), mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}

func TestApplyTransfer(t *testing.T) {
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(time.Hour)
	wallets := func(fromBalance, toBalance string) (*Wallet, *Wallet) {
		return RestoreWallet(1, 1, decimal.RequireFromString(fromBalance), created, created),
			RestoreWallet(2, 2, decimal.RequireFromString(toBalance), created, created)
	}

	t.Run("Moves funds", func(t *testing.T) {
		from, to := wallets("100", "1")
		require.NoError(t, ApplyTransfer(from, to, decimal.RequireFromString("99.99"), now))
		assert.Equal(t, "0.01", from.FormattedBalance())
		assert.Equal(t, "100.99", to.FormattedBalance())
		assert.Equal(t, now, from.UpdatedAt)
		assert.Equal(t, now, to.UpdatedAt)
	})

	testCases := []struct {
		name   string
		amount string
		sameID bool
		target error
	}{
		{"Insufficient funds", "100.01", false, errs.ErrInsufficientFunds},
		{"Zero amount", "0", false, errs.ErrInvalidAmount},
		{"Negative amount", "-5", false, errs.ErrInvalidAmount},
		{"Sub-cent amount", "0.001", false, errs.ErrInvalidAmount},
		{"Same wallet", "1", true, errs.ErrSameWallet},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			from, to := wallets("100", "1")
			if tc.sameID {
				to = from
			}
			err := ApplyTransfer(from, to, decimal.RequireFromString(tc.amount), now)
			assert.ErrorIs(t, err, tc.target)
			assert.Equal(t, "100.00", from.FormattedBalance(), "nothing is mutated on error")
			assert.Equal(t, created, from.UpdatedAt)
		})
	}
}
