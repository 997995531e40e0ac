package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanAdjustment represents the database model for proposed loan revisions.
// A partial unique index created by the migration keeps one pending row per loan.
type LoanAdjustment struct {
	ID                   uint64              `gorm:"primaryKey;autoIncrement"`
	LoanID               uint64              `gorm:"not null;index:idx_loan_adjustments_loan_id"`
	ProposedBy           uint64              `gorm:"not null"`
	AdjustedAmount       decimal.NullDecimal `gorm:"type:numeric(20,2)"`
	AdjustedInterestRate decimal.NullDecimal `gorm:"type:numeric(9,4)"`
	Status               string              `gorm:"not null;size:40"`
	CreatedAt            time.Time           `gorm:"not null"`
	UpdatedAt            time.Time           `gorm:"not null"`

	Loan     Loan `gorm:"foreignKey:LoanID;references:ID;constraint:OnDelete:CASCADE"`
	Proposer User `gorm:"foreignKey:ProposedBy;references:ID;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for LoanAdjustment
func (LoanAdjustment) TableName() string {
	return "loan_adjustments"
}
