package loan

import (
	"context"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
)

// GetLoan returns a loan by id
func (s *Service) GetLoan(ctx context.Context, loanID uint64) (*entity.Loan, error) {
	return s.uow.GetLoanRepository(ctx).GetByID(ctx, loanID)
}

// ListLoans returns every loan to a lender and only their own loans to a borrower
func (s *Service) ListLoans(ctx context.Context, actorID uint64) ([]*entity.Loan, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	repo := s.uow.GetLoanRepository(ctx)
	if actor.Role.IsLender() {
		return repo.ListAll(ctx)
	}
	return repo.ListByBorrower(ctx, actor.ID)
}

// ListByState returns the loans currently in any of states
func (s *Service) ListByState(ctx context.Context, states ...entity.LoanState) ([]*entity.Loan, error) {
	return s.uow.GetLoanRepository(ctx).ListByState(ctx, states...)
}

// Adjustments exposes the adjustment flow sharing this service's engine
func (s *Service) Adjustments() *AdjustmentService {
	return s.adjustments
}
