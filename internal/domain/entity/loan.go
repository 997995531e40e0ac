package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/shopspring/decimal"
)

// Loan is owned by its borrower and funded by its lender once approved.
// The state is private; Fire is the only way to change it.
type Loan struct {
	ID           uint64
	BorrowerID   uint64
	LenderID     *uint64
	Amount       decimal.Decimal
	InterestRate decimal.Decimal
	state        LoanState
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewLoan creates a loan in the requested state
func NewLoan(borrowerID uint64, amount, interestRate decimal.Decimal, timeProvider coreport.TimeProvider) (*Loan, error) {
	if borrowerID == 0 {
		return nil, errs.NewValidationError("borrower_id", "0", "borrower is required", errs.ErrInvalidID)
	}
	if err := ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}
	if err := ValidateInterestRate(interestRate); err != nil {
		return nil, err
	}

	now := timeProvider.Now()
	return &Loan{
		BorrowerID:   borrowerID,
		Amount:       amount,
		InterestRate: interestRate,
		state:        LoanStateRequested,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// RestoreLoan rebuilds a loan from storage
func RestoreLoan(
	id, borrowerID uint64,
	lenderID *uint64,
	amount, interestRate decimal.Decimal,
	state LoanState,
	createdAt, updatedAt time.Time,
) *Loan {
	return &Loan{
		ID:           id,
		BorrowerID:   borrowerID,
		LenderID:     lenderID,
		Amount:       amount,
		InterestRate: interestRate,
		state:        state,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// State returns the current lifecycle state
func (l *Loan) State() LoanState {
	return l.state
}

// Can reports whether event is legal from the current state
func (l *Loan) Can(event LoanEvent) bool {
	_, err := NextState(l.state, event)
	return err == nil
}

// Fire applies event; on error the loan is left untouched
func (l *Loan) Fire(event LoanEvent, now time.Time) error {
	next, err := NextState(l.state, event)
	if err != nil {
		return errs.NewInvalidTransitionError(l.ID, string(l.state), string(event))
	}
	l.state = next
	l.UpdatedAt = now
	return nil
}

// AssignLender records the lender funding (or declining) the loan
func (l *Loan) AssignLender(lenderID uint64) {
	id := lenderID
	l.LenderID = &id
}

// HasLender reports whether a lender is assigned
func (l *Loan) HasLender() bool {
	return l.LenderID != nil && *l.LenderID != 0
}

// IsOwnedBy reports whether userID is the borrower
func (l *Loan) IsOwnedBy(userID uint64) bool {
	return l.BorrowerID == userID
}

// Interest returns one accrual period of interest on the principal
func (l *Loan) Interest() decimal.Decimal {
	return ComputeInterest(l.Amount, l.InterestRate)
}

// TotalDue returns principal plus one period of interest
func (l *Loan) TotalDue() decimal.Decimal {
	return l.Amount.Add(l.Interest())
}

// ApplyAdjustment copies the present values of an adjustment onto the loan terms
func (l *Loan) ApplyAdjustment(adjustment *LoanAdjustment, now time.Time) {
	if adjustment.AdjustedAmount != nil {
		l.Amount = *adjustment.AdjustedAmount
	}
	if adjustment.AdjustedInterestRate != nil {
		l.InterestRate = *adjustment.AdjustedInterestRate
	}
	l.UpdatedAt = now
}
