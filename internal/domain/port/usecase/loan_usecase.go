package usecase

import (
	"context"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LoanUseCase drives the loan lifecycle. Every command is one unit of work.
type LoanUseCase interface {
	RequestLoan(ctx context.Context, borrowerID uint64, amount, interestRate decimal.Decimal) (*entity.Loan, error)
	Approve(ctx context.Context, loanID, actorID uint64) (*entity.Loan, error)
	Reject(ctx context.Context, loanID, actorID uint64) (*entity.Loan, error)
	Confirm(ctx context.Context, loanID, actorID uint64) (*entity.Loan, error)
	Repay(ctx context.Context, loanID, actorID uint64) (*entity.Loan, error)

	// Fire dispatches a named event to the matching command
	Fire(ctx context.Context, loanID, actorID uint64, event entity.LoanEvent) (*entity.Loan, error)

	GetLoan(ctx context.Context, loanID uint64) (*entity.Loan, error)

	// ListLoans returns every loan for a lender and the borrower's own loans otherwise
	ListLoans(ctx context.Context, actorID uint64) ([]*entity.Loan, error)
	ListByState(ctx context.Context, states ...entity.LoanState) ([]*entity.Loan, error)
}

// AdjustmentUseCase drives the negotiation of a requested loan's terms
type AdjustmentUseCase interface {
	// Propose records a lender's revision; nil values leave the term unchanged
	Propose(ctx context.Context, loanID, actorID uint64, adjustedAmount, adjustedInterestRate *decimal.Decimal) (*entity.LoanAdjustment, error)
	Accept(ctx context.Context, adjustmentID, actorID uint64) (*entity.LoanAdjustment, error)
	Reject(ctx context.Context, adjustmentID, actorID uint64) (*entity.LoanAdjustment, error)
	RequestReadjustment(ctx context.Context, adjustmentID, actorID uint64) (*entity.LoanAdjustment, error)
	ListAdjustments(ctx context.Context, loanID uint64) ([]*entity.LoanAdjustment, error)
}
