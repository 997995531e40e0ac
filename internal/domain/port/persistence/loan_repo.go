package persistence

import (
	"context"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
)

// LoanRepository stores loans
type LoanRepository interface {
	// GetByID retrieves a loan without locking it
	//
	// Possible errors:
	// - ErrLoanNotFound: If loan doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.Loan, error)

	// GetByIDForUpdate retrieves a loan and locks its row until the unit of work ends.
	// The loan row is always locked before any wallet row.
	//
	// Possible errors:
	// - ErrLoanNotFound: If loan doesn't exist
	// - ErrConcurrentUpdate: If the lock could not be acquired
	// - ErrDatabaseConnection: If database connection fails
	GetByIDForUpdate(ctx context.Context, id uint64) (*entity.Loan, error)

	// Create stores a new loan and assigns its ID
	//
	// Possible errors:
	// - ErrConstraintViolation: If the borrower doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, loan *entity.Loan) error

	// Update persists state, terms and lender of an existing loan
	//
	// Possible errors:
	// - ErrLoanNotFound: If loan doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	Update(ctx context.Context, loan *entity.Loan) error

	// ListByBorrower returns the borrower's loans, newest first
	ListByBorrower(ctx context.Context, borrowerID uint64) ([]*entity.Loan, error)

	// ListByState returns loans in any of the given states ordered by ID
	ListByState(ctx context.Context, states ...entity.LoanState) ([]*entity.Loan, error)

	// ListAll returns every loan, newest first
	ListAll(ctx context.Context) ([]*entity.Loan, error)
}
