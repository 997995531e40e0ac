package memory

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
)

// LoanAdjustmentRepository is the in-memory persistence.LoanAdjustmentRepository
type LoanAdjustmentRepository struct {
	store *Store
	tx    *tx
}

// GetByID retrieves an adjustment
func (r *LoanAdjustmentRepository) GetByID(_ context.Context, id uint64) (*entity.LoanAdjustment, error) {
	adjustment, ok := load(r.store, r.tx, r.store.adjustments, id)
	if !ok {
		return nil, errs.ErrAdjustmentNotFound
	}
	return adjustment, nil
}

// Create stores a new adjustment; a loan has at most one pending adjustment
func (r *LoanAdjustmentRepository) Create(ctx context.Context, adjustment *entity.LoanAdjustment) error {
	if _, ok := load(r.store, r.tx, r.store.loans, adjustment.LoanID); !ok {
		return fmt.Errorf("%w: loan %d does not exist", errs.ErrConstraintViolation, adjustment.LoanID)
	}
	if adjustment.IsPending() {
		pending, err := r.FindPendingByLoan(ctx, adjustment.LoanID)
		if err != nil {
			return err
		}
		if pending != nil {
			return errs.ErrPendingAdjustmentExists
		}
	}

	id := nextID(r.store, r.store.adjustments)
	loanID, pending := adjustment.LoanID, adjustment.IsPending()
	check := func() error {
		if !pending {
			return nil
		}
		conflict := false
		committedRows(r.store.adjustments, func(otherID uint64, other *entity.LoanAdjustment) bool {
			conflict = otherID != id && other.LoanID == loanID && other.IsPending()
			return !conflict
		})
		if conflict {
			return errs.ErrPendingAdjustmentExists
		}
		return nil
	}

	adjustment.ID = id
	if err := save(ctx, r.store, r.tx, r.store.adjustments, id, adjustment, check); err != nil {
		adjustment.ID = 0
		return err
	}
	return nil
}

// Update persists the status of an adjustment
func (r *LoanAdjustmentRepository) Update(ctx context.Context, adjustment *entity.LoanAdjustment) error {
	if _, err := r.GetByID(ctx, adjustment.ID); err != nil {
		return err
	}
	return save(ctx, r.store, r.tx, r.store.adjustments, adjustment.ID, adjustment, nil)
}

// FindPendingByLoan returns the pending adjustment of a loan, or nil
func (r *LoanAdjustmentRepository) FindPendingByLoan(_ context.Context, loanID uint64) (*entity.LoanAdjustment, error) {
	pending := scan(r.store, r.tx, r.store.adjustments, func(a *entity.LoanAdjustment) bool {
		return a.LoanID == loanID && a.IsPending()
	})
	if len(pending) == 0 {
		return nil, nil
	}
	return pending[len(pending)-1], nil
}

// ListByLoan returns every adjustment of a loan, oldest first
func (r *LoanAdjustmentRepository) ListByLoan(_ context.Context, loanID uint64) ([]*entity.LoanAdjustment, error) {
	return scan(r.store, r.tx, r.store.adjustments, func(a *entity.LoanAdjustment) bool {
		return a.LoanID == loanID
	}), nil
}
