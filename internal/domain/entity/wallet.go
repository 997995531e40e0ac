package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/shopspring/decimal"
)

// Wallet holds the balance of exactly one user.
// The balance is private; ApplyTransfer is the only way to move money between wallets.
type Wallet struct {
	ID        uint64
	UserID    uint64
	balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewWallet creates the wallet provisioned for a user at creation time
func NewWallet(userID uint64, initialBalance decimal.Decimal, timeProvider coreport.TimeProvider) (*Wallet, error) {
	if userID == 0 {
		return nil, errs.NewValidationError("user_id", "0", "wallet owner is required", errs.ErrInvalidID)
	}
	if initialBalance.IsNegative() {
		return nil, errs.NewValidationError("balance", initialBalance.String(), "must not be negative", errs.ErrInvalidAmount)
	}

	now := timeProvider.Now()
	return &Wallet{
		UserID:    userID,
		balance:   initialBalance.Round(MoneyScale),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// RestoreWallet rebuilds a wallet from storage
func RestoreWallet(id, userID uint64, balance decimal.Decimal, createdAt, updatedAt time.Time) *Wallet {
	return &Wallet{
		ID:        id,
		UserID:    userID,
		balance:   balance,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Balance returns the current balance
func (w *Wallet) Balance() decimal.Decimal {
	return w.balance
}

// FormattedBalance returns the balance with 2 decimal places
func (w *Wallet) FormattedBalance() string {
	return FormatAmount(w.balance)
}

// CanCover checks if the wallet holds at least amount
func (w *Wallet) CanCover(amount decimal.Decimal) bool {
	return w.balance.GreaterThanOrEqual(amount)
}

// ApplyTransfer moves amount from one wallet to the other in memory.
// Nothing is mutated unless every precondition holds.
func ApplyTransfer(from, to *Wallet, amount decimal.Decimal, now time.Time) error {
	if err := ValidatePositiveAmount(amount); err != nil {
		return err
	}
	if from.ID == to.ID {
		return errs.ErrSameWallet
	}
	if !from.CanCover(amount) {
		return errs.NewInsufficientFundsError(from.ID, FormatAmount(amount), from.FormattedBalance())
	}

	from.balance = from.balance.Sub(amount)
	to.balance = to.balance.Add(amount)
	from.UpdatedAt = now
	to.UpdatedAt = now
	return nil
}
