package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet represents the database model for wallets.
// The balance check constraint backs up the ledger's own overdraft check.
type Wallet struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	UserID    uint64          `gorm:"not null;uniqueIndex:idx_wallets_user_id"`
	Balance   decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0;check:chk_wallets_balance_non_negative,balance >= 0"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for Wallet
func (Wallet) TableName() string {
	return "wallets"
}
