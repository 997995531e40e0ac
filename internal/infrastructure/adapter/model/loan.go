package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan represents the database model for loans
type Loan struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement"`
	BorrowerID   uint64          `gorm:"not null;index:idx_loans_borrower_id"`
	LenderID     *uint64         `gorm:"index:idx_loans_lender_id"`
	Amount       decimal.Decimal `gorm:"type:numeric(20,2);not null;check:chk_loans_amount_positive,amount > 0"`
	InterestRate decimal.Decimal `gorm:"type:numeric(9,4);not null;check:chk_loans_interest_rate_non_negative,interest_rate >= 0"`
	State        string          `gorm:"not null;size:40;index:idx_loans_state"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`

	Borrower User  `gorm:"foreignKey:BorrowerID;references:ID;constraint:OnDelete:RESTRICT"`
	Lender   *User `gorm:"foreignKey:LenderID;references:ID;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for Loan
func (Loan) TableName() string {
	return "loans"
}
