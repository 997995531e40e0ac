package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/shopspring/decimal"
)

// AdjustmentStatus tracks the outcome of a proposed revision
type AdjustmentStatus string

// AdjustmentStatus constants
const (
	AdjustmentStatusPending               AdjustmentStatus = "pending"
	AdjustmentStatusAccepted              AdjustmentStatus = "accepted"
	AdjustmentStatusRejected              AdjustmentStatus = "rejected"
	AdjustmentStatusReadjustmentRequested AdjustmentStatus = "readjustment_requested"
)

// LoanAdjustment is a lender's proposed revision of a requested loan's terms
type LoanAdjustment struct {
	ID                   uint64
	LoanID               uint64
	ProposedBy           uint64
	AdjustedAmount       *decimal.Decimal
	AdjustedInterestRate *decimal.Decimal
	Status               AdjustmentStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewLoanAdjustment validates and creates a pending adjustment.
// Both values are optional but at least one must be present.
func NewLoanAdjustment(
	loanID, proposedBy uint64,
	adjustedAmount, adjustedInterestRate *decimal.Decimal,
	timeProvider coreport.TimeProvider,
) (*LoanAdjustment, error) {
	if adjustedAmount == nil && adjustedInterestRate == nil {
		return nil, errs.ErrEmptyAdjustment
	}
	if adjustedAmount != nil {
		if err := ValidatePositiveAmount(*adjustedAmount); err != nil {
			return nil, err
		}
	}
	if adjustedInterestRate != nil {
		if err := ValidateInterestRate(*adjustedInterestRate); err != nil {
			return nil, err
		}
	}

	now := timeProvider.Now()
	return &LoanAdjustment{
		LoanID:               loanID,
		ProposedBy:           proposedBy,
		AdjustedAmount:       adjustedAmount,
		AdjustedInterestRate: adjustedInterestRate,
		Status:               AdjustmentStatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// IsPending reports whether the adjustment can still be acted upon
func (a *LoanAdjustment) IsPending() bool {
	return a.Status == AdjustmentStatusPending
}

// Resolve moves a pending adjustment to its final status
func (a *LoanAdjustment) Resolve(status AdjustmentStatus, now time.Time) error {
	if !a.IsPending() {
		return errs.ErrAdjustmentNotPending
	}
	a.Status = status
	a.UpdatedAt = now
	return nil
}
