package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the side of a transfer a ledger row records
type TransactionType string

// Transaction types
const (
	TransactionTypeDebit  TransactionType = "debit"
	TransactionTypeCredit TransactionType = "credit"
)

// Transaction is one immutable side of a money movement.
// Every transfer writes exactly one debit and one credit sharing a CorrelationID.
type Transaction struct {
	ID            uint64
	WalletID      uint64
	UserID        uint64
	Amount        decimal.Decimal
	Type          TransactionType
	Description   string
	CorrelationID string
	CreatedAt     time.Time
}

// NewTransferEntries builds the debit row for from and the credit row for to
func NewTransferEntries(
	from, to *Wallet,
	amount decimal.Decimal,
	description, correlationID string,
	now time.Time,
) (debit *Transaction, credit *Transaction) {
	debit = &Transaction{
		WalletID:      from.ID,
		UserID:        from.UserID,
		Amount:        amount,
		Type:          TransactionTypeDebit,
		Description:   description,
		CorrelationID: correlationID,
		CreatedAt:     now,
	}
	credit = &Transaction{
		WalletID:      to.ID,
		UserID:        to.UserID,
		Amount:        amount,
		Type:          TransactionTypeCredit,
		Description:   description,
		CorrelationID: correlationID,
		CreatedAt:     now,
	}
	return debit, credit
}

// SignedAmount returns the amount as it affects the wallet balance
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
