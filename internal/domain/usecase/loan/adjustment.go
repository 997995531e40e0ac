package loan

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	"github.com/shopspring/decimal"
)

// Propose records a lender's revision of a requested loan and moves the loan to
// waiting_for_adjustment_acceptance. A loan has at most one pending adjustment.
func (a *AdjustmentService) Propose(
	ctx context.Context,
	loanID, actorID uint64,
	adjustedAmount, adjustedInterestRate *decimal.Decimal,
) (*entity.LoanAdjustment, error) {
	adjustment, err := entity.NewLoanAdjustment(loanID, actorID, adjustedAmount, adjustedInterestRate, a.timeProvider)
	if err != nil {
		return nil, err
	}

	err = a.uow.Execute(ctx, func(txCtx context.Context) error {
		adjustment.ID = 0
		lender, err := a.lender(txCtx, actorID)
		if err != nil {
			return err
		}
		loan, err := a.lockLoan(txCtx, loanID)
		if err != nil {
			return err
		}

		repo := a.uow.GetLoanAdjustmentRepository(txCtx)
		pending, err := repo.FindPendingByLoan(txCtx, loan.ID)
		if err != nil {
			return err
		}
		if pending != nil {
			return errs.ErrPendingAdjustmentExists
		}
		if err := ensureCan(loan, entity.LoanEventAdjust); err != nil {
			return err
		}

		if err := repo.Create(txCtx, adjustment); err != nil {
			return err
		}
		loan.AssignLender(lender.ID)
		return a.transition(txCtx, loan, entity.LoanEventAdjust, actorID)
	})
	if err != nil {
		a.logFailure("propose_adjustment", loanID, actorID, err)
		return nil, err
	}

	a.logger.Info("Loan adjustment proposed", map[string]any{
		"adjustment_id": adjustment.ID,
		"loan_id":       loanID,
		"lender_id":     actorID,
	})
	return adjustment, nil
}

// Accept applies the pending adjustment, funds the loan on its new terms and opens it
func (a *AdjustmentService) Accept(ctx context.Context, adjustmentID, actorID uint64) (*entity.LoanAdjustment, error) {
	return a.resolve(ctx, "accept_adjustment", adjustmentID, actorID, a.accept)
}

// Reject declines the pending adjustment and with it the loan
func (a *AdjustmentService) Reject(ctx context.Context, adjustmentID, actorID uint64) (*entity.LoanAdjustment, error) {
	return a.resolve(ctx, "reject_adjustment", adjustmentID, actorID,
		func(txCtx context.Context, loan *entity.Loan, adjustment *entity.LoanAdjustment, actorID uint64) error {
			if err := a.checkResolvable(loan, adjustment, actorID, entity.LoanEventReject); err != nil {
				return err
			}
			if err := a.finish(txCtx, adjustment, entity.AdjustmentStatusRejected); err != nil {
				return err
			}
			return a.transition(txCtx, loan, entity.LoanEventReject, actorID)
		})
}

// RequestReadjustment asks the lender for different terms
func (a *AdjustmentService) RequestReadjustment(ctx context.Context, adjustmentID, actorID uint64) (*entity.LoanAdjustment, error) {
	return a.resolve(ctx, "request_readjustment", adjustmentID, actorID, a.readjust)
}

// ListAdjustments returns every adjustment of a loan, oldest first
func (a *AdjustmentService) ListAdjustments(ctx context.Context, loanID uint64) ([]*entity.LoanAdjustment, error) {
	if _, err := a.uow.GetLoanRepository(ctx).GetByID(ctx, loanID); err != nil {
		return nil, err
	}
	return a.uow.GetLoanAdjustmentRepository(ctx).ListByLoan(ctx, loanID)
}

type resolveFunc func(txCtx context.Context, loan *entity.Loan, adjustment *entity.LoanAdjustment, actorID uint64) error

func (a *AdjustmentService) resolve(ctx context.Context, command string, adjustmentID, actorID uint64, fn resolveFunc) (*entity.LoanAdjustment, error) {
	var result *entity.LoanAdjustment
	var loanID uint64
	err := a.uow.Execute(ctx, func(txCtx context.Context) error {
		loan, adjustment, err := a.lockAdjustment(txCtx, adjustmentID)
		if err != nil {
			return err
		}
		loanID = loan.ID
		if err := fn(txCtx, loan, adjustment, actorID); err != nil {
			return err
		}
		result = adjustment
		return nil
	})
	if err != nil {
		a.logFailure(command, loanID, actorID, err)
		return nil, err
	}
	return result, nil
}

// checkResolvable is shared by every borrower response to an adjustment
func (e *engine) checkResolvable(loan *entity.Loan, adjustment *entity.LoanAdjustment, actorID uint64, event entity.LoanEvent) error {
	if err := requireOwner(loan, actorID); err != nil {
		return err
	}
	if !adjustment.IsPending() {
		return fmt.Errorf("%w: adjustment %d is %s", errs.ErrAdjustmentNotPending, adjustment.ID, adjustment.Status)
	}
	return ensureCan(loan, event)
}

func (e *engine) finish(ctx context.Context, adjustment *entity.LoanAdjustment, status entity.AdjustmentStatus) error {
	if err := adjustment.Resolve(status, e.timeProvider.Now()); err != nil {
		return err
	}
	return e.uow.GetLoanAdjustmentRepository(ctx).Update(ctx, adjustment)
}

// accept applies the adjustment's terms, disburses the principal and opens the loan
func (e *engine) accept(ctx context.Context, loan *entity.Loan, adjustment *entity.LoanAdjustment, actorID uint64) error {
	if err := e.checkResolvable(loan, adjustment, actorID, entity.LoanEventConfirm); err != nil {
		return err
	}
	if !loan.HasLender() {
		loan.AssignLender(adjustment.ProposedBy)
	}

	loan.ApplyAdjustment(adjustment, e.timeProvider.Now())
	if err := e.disburse(ctx, loan); err != nil {
		return err
	}
	if err := e.finish(ctx, adjustment, entity.AdjustmentStatusAccepted); err != nil {
		return err
	}
	return e.transition(ctx, loan, entity.LoanEventConfirm, actorID)
}

func (e *engine) readjust(ctx context.Context, loan *entity.Loan, adjustment *entity.LoanAdjustment, actorID uint64) error {
	if err := e.checkResolvable(loan, adjustment, actorID, entity.LoanEventReadjust); err != nil {
		return err
	}
	if err := e.finish(ctx, adjustment, entity.AdjustmentStatusReadjustmentRequested); err != nil {
		return err
	}
	return e.transition(ctx, loan, entity.LoanEventReadjust, actorID)
}
