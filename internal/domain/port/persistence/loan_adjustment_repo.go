package persistence

import (
	"context"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
)

// LoanAdjustmentRepository stores proposed loan revisions.
// Callers lock the owning loan row before reading an adjustment they intend to resolve.
type LoanAdjustmentRepository interface {
	// GetByID retrieves an adjustment
	//
	// Possible errors:
	// - ErrAdjustmentNotFound: If adjustment doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.LoanAdjustment, error)

	// Create stores a new adjustment and assigns its ID
	//
	// Possible errors:
	// - ErrPendingAdjustmentExists: If the loan already has a pending adjustment
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, adjustment *entity.LoanAdjustment) error

	// Update persists the status of an adjustment
	//
	// Possible errors:
	// - ErrAdjustmentNotFound: If adjustment doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	Update(ctx context.Context, adjustment *entity.LoanAdjustment) error

	// FindPendingByLoan returns the pending adjustment of a loan, or nil when there is none
	FindPendingByLoan(ctx context.Context, loanID uint64) (*entity.LoanAdjustment, error)

	// ListByLoan returns every adjustment of a loan, oldest first
	ListByLoan(ctx context.Context, loanID uint64) ([]*entity.LoanAdjustment, error)
}
