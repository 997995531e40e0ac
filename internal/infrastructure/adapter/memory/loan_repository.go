package memory

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
)

// LoanRepository is the in-memory persistence.LoanRepository
type LoanRepository struct {
	store *Store
	tx    *tx
}

// GetByID retrieves a loan without locking it
func (r *LoanRepository) GetByID(_ context.Context, id uint64) (*entity.Loan, error) {
	loan, ok := load(r.store, r.tx, r.store.loans, id)
	if !ok {
		return nil, errs.ErrLoanNotFound
	}
	return loan, nil
}

// GetByIDForUpdate locks the loan row for the rest of the unit of work, then reads it
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*entity.Loan, error) {
	if r.tx != nil {
		if err := r.store.locks.acquire(ctx, rowKey{tableLoans, id}, r.tx.id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Create stores a new loan and assigns its ID
func (r *LoanRepository) Create(ctx context.Context, loan *entity.Loan) error {
	if _, ok := load(r.store, r.tx, r.store.users, loan.BorrowerID); !ok {
		return fmt.Errorf("%w: borrower %d does not exist", errs.ErrConstraintViolation, loan.BorrowerID)
	}

	id := nextID(r.store, r.store.loans)
	loan.ID = id
	if err := save(ctx, r.store, r.tx, r.store.loans, id, loan, nil); err != nil {
		loan.ID = 0
		return err
	}
	return nil
}

// Update persists state, terms and lender of an existing loan
func (r *LoanRepository) Update(ctx context.Context, loan *entity.Loan) error {
	if _, err := r.GetByID(ctx, loan.ID); err != nil {
		return err
	}
	return save(ctx, r.store, r.tx, r.store.loans, loan.ID, loan, nil)
}

// ListByBorrower returns the borrower's loans, newest first
func (r *LoanRepository) ListByBorrower(_ context.Context, borrowerID uint64) ([]*entity.Loan, error) {
	loans := scan(r.store, r.tx, r.store.loans, func(l *entity.Loan) bool {
		return l.BorrowerID == borrowerID
	})
	return newestFirst(loans), nil
}

// ListByState returns loans in any of states ordered by ID
func (r *LoanRepository) ListByState(_ context.Context, states ...entity.LoanState) ([]*entity.Loan, error) {
	wanted := make(map[entity.LoanState]bool, len(states))
	for _, s := range states {
		wanted[s] = true
	}
	return scan(r.store, r.tx, r.store.loans, func(l *entity.Loan) bool {
		return wanted[l.State()]
	}), nil
}

// ListAll returns every loan, newest first
func (r *LoanRepository) ListAll(_ context.Context) ([]*entity.Loan, error) {
	return newestFirst(scan(r.store, r.tx, r.store.loans, nil)), nil
}

func newestFirst[T any](rows []*T) []*T {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows
}
