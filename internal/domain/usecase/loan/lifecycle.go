package loan

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	"github.com/shopspring/decimal"
)

// RequestLoan creates a loan in the requested state for a borrower
func (s *Service) RequestLoan(ctx context.Context, borrowerID uint64, amount, interestRate decimal.Decimal) (*entity.Loan, error) {
	loan, err := entity.NewLoan(borrowerID, amount, interestRate, s.timeProvider)
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(txCtx context.Context) error {
		loan.ID = 0
		borrower, err := s.actor(txCtx, borrowerID)
		if err != nil {
			return err
		}
		if borrower.Role != entity.RoleBorrower {
			return fmt.Errorf("%w: only borrowers request loans", errs.ErrForbidden)
		}
		return s.uow.GetLoanRepository(txCtx).Create(txCtx, loan)
	})
	if err != nil {
		s.logFailure("request", 0, borrowerID, err)
		return nil, err
	}

	s.logger.Info("Loan requested", map[string]any{
		"loan_id":       loan.ID,
		"borrower_id":   borrowerID,
		"amount":        entity.FormatAmount(loan.Amount),
		"interest_rate": entity.FormatRate(loan.InterestRate),
	})
	return loan, nil
}

// Approve funds a requested loan from the approving lender's wallet.
// Assigning the lender, moving the principal and the state change commit together.
func (s *Service) Approve(ctx context.Context, loanID, actorID uint64) (*entity.Loan, error) {
	return s.command(ctx, "approve", loanID, actorID, func(txCtx context.Context, loan *entity.Loan) error {
		lender, err := s.lender(txCtx, actorID)
		if err != nil {
			return err
		}
		if err := ensureCan(loan, entity.LoanEventApprove); err != nil {
			return err
		}

		loan.AssignLender(lender.ID)
		if err := s.disburse(txCtx, loan); err != nil {
			return err
		}
		return s.transition(txCtx, loan, entity.LoanEventApprove, actorID)
	})
}

// Reject declines a loan. A lender rejecting a requested loan becomes its lender of
// record; otherwise only the assigned lender or the owning borrower may reject.
func (s *Service) Reject(ctx context.Context, loanID, actorID uint64) (*entity.Loan, error) {
	return s.command(ctx, "reject", loanID, actorID, func(txCtx context.Context, loan *entity.Loan) error {
		actor, err := s.actor(txCtx, actorID)
		if err != nil {
			return err
		}
		if err := ensureCan(loan, entity.LoanEventReject); err != nil {
			return err
		}

		switch {
		case actor.Role.IsLender() && loan.State() == entity.LoanStateRequested:
			loan.AssignLender(actor.ID)
		case actor.Role.IsLender():
			if loan.HasLender() && *loan.LenderID != actor.ID {
				return fmt.Errorf("%w: loan %d is negotiated by another lender", errs.ErrForbidden, loan.ID)
			}
		default:
			if err := requireOwner(loan, actorID); err != nil {
				return err
			}
		}

		if err := s.resolvePending(txCtx, loan.ID, entity.AdjustmentStatusRejected); err != nil {
			return err
		}
		return s.transition(txCtx, loan, entity.LoanEventReject, actorID)
	})
}

// Confirm opens an approved loan. A loan waiting on an adjustment is confirmed by
// accepting the pending adjustment.
func (s *Service) Confirm(ctx context.Context, loanID, actorID uint64) (*entity.Loan, error) {
	return s.command(ctx, "confirm", loanID, actorID, func(txCtx context.Context, loan *entity.Loan) error {
		if err := requireOwner(loan, actorID); err != nil {
			return err
		}
		if err := ensureCan(loan, entity.LoanEventConfirm); err != nil {
			return err
		}

		if loan.State() == entity.LoanStateWaitingForAdjustmentAcceptance {
			pending, err := s.uow.GetLoanAdjustmentRepository(txCtx).FindPendingByLoan(txCtx, loan.ID)
			if err != nil {
				return err
			}
			if pending == nil {
				return errs.ErrAdjustmentNotFound
			}
			return s.accept(txCtx, loan, pending, actorID)
		}
		return s.transition(txCtx, loan, entity.LoanEventConfirm, actorID)
	})
}

// Repay settles an open loan: principal plus one period of interest goes back to
// the lender and the loan closes. Without enough funds the loan stays open.
func (s *Service) Repay(ctx context.Context, loanID, actorID uint64) (*entity.Loan, error) {
	return s.command(ctx, "repay", loanID, actorID, func(txCtx context.Context, loan *entity.Loan) error {
		if err := requireOwner(loan, actorID); err != nil {
			return err
		}
		if err := ensureCan(loan, entity.LoanEventClose); err != nil {
			return err
		}
		if !loan.HasLender() {
			return errs.ErrLenderNotAssigned
		}

		description := fmt.Sprintf("loan %d repayment", loan.ID)
		if err := s.move(txCtx, loan.BorrowerID, *loan.LenderID, loan.TotalDue(), description); err != nil {
			return err
		}
		return s.transition(txCtx, loan, entity.LoanEventClose, actorID)
	})
}

// Fire dispatches a named event to the command implementing it
func (s *Service) Fire(ctx context.Context, loanID, actorID uint64, event entity.LoanEvent) (*entity.Loan, error) {
	switch event {
	case entity.LoanEventApprove:
		return s.Approve(ctx, loanID, actorID)
	case entity.LoanEventReject:
		return s.Reject(ctx, loanID, actorID)
	case entity.LoanEventConfirm:
		return s.Confirm(ctx, loanID, actorID)
	case entity.LoanEventClose:
		return s.Repay(ctx, loanID, actorID)
	case entity.LoanEventReadjust:
		return s.command(ctx, "readjust", loanID, actorID, func(txCtx context.Context, loan *entity.Loan) error {
			if err := ensureCan(loan, entity.LoanEventReadjust); err != nil {
				return err
			}
			pending, err := s.uow.GetLoanAdjustmentRepository(txCtx).FindPendingByLoan(txCtx, loan.ID)
			if err != nil {
				return err
			}
			if pending == nil {
				return errs.ErrAdjustmentNotFound
			}
			return s.readjust(txCtx, loan, pending, actorID)
		})
	case entity.LoanEventAdjust:
		return nil, errs.NewValidationError("event", string(event), "propose an adjustment with its new terms instead", errs.ErrInvalidEvent)
	default:
		return nil, errs.NewValidationError("event", string(event), "unknown loan event", errs.ErrInvalidEvent)
	}
}

// command runs fn on the locked loan in one unit of work and returns the committed loan
func (s *Service) command(
	ctx context.Context,
	name string,
	loanID, actorID uint64,
	fn func(txCtx context.Context, loan *entity.Loan) error,
) (*entity.Loan, error) {
	var result *entity.Loan
	err := s.uow.Execute(ctx, func(txCtx context.Context) error {
		loan, err := s.lockLoan(txCtx, loanID)
		if err != nil {
			return err
		}
		if err := fn(txCtx, loan); err != nil {
			return err
		}
		result = loan
		return nil
	})
	if err != nil {
		s.logFailure(name, loanID, actorID, err)
		return nil, err
	}
	return result, nil
}

// resolvePending closes the loan's pending adjustment, if there is one
func (e *engine) resolvePending(ctx context.Context, loanID uint64, status entity.AdjustmentStatus) error {
	repo := e.uow.GetLoanAdjustmentRepository(ctx)
	pending, err := repo.FindPendingByLoan(ctx, loanID)
	if err != nil || pending == nil {
		return err
	}
	if err := pending.Resolve(status, e.timeProvider.Now()); err != nil {
		return err
	}
	return repo.Update(ctx, pending)
}
