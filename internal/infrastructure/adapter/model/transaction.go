package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents the database model for ledger rows.
// Rows are only ever inserted.
type Transaction struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement"`
	WalletID      uint64          `gorm:"not null;index:idx_transactions_wallet_id"`
	UserID        uint64          `gorm:"not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null;check:chk_transactions_amount_non_negative,amount >= 0"`
	Type          string          `gorm:"not null;size:10"`
	Description   string          `gorm:"type:text;not null;default:''"`
	CorrelationID string          `gorm:"not null;size:36;index:idx_transactions_correlation_id"`
	CreatedAt     time.Time       `gorm:"not null"`

	// Define relationships
	Wallet Wallet `gorm:"foreignKey:WalletID;references:ID;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
