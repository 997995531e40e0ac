package loan

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/usecase/notify"
	"github.com/shopspring/decimal"
)

var (
	_ usecase.LoanUseCase       = (*Service)(nil)
	_ usecase.AdjustmentUseCase = (*AdjustmentService)(nil)
)

// engine holds what both loan services share: the unit of work, the ledger
// and the single place where a loan changes state.
type engine struct {
	uow          persistence.UnitOfWork
	ledger       usecase.LedgerUseCase
	transitions  *Transitioner
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// Service drives the loan lifecycle
type Service struct {
	*engine
	adjustments *AdjustmentService
}

// AdjustmentService drives the negotiation of a requested loan's terms
type AdjustmentService struct {
	*engine
}

// NewServices creates the lifecycle and adjustment services over one engine; notifier may be nil
func NewServices(
	uow persistence.UnitOfWork,
	ledger usecase.LedgerUseCase,
	notifier *notify.Notifier,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) (*Service, *AdjustmentService) {
	e := &engine{
		uow:          uow,
		ledger:       ledger,
		transitions:  NewTransitioner(uow, notifier, timeProvider, logger),
		timeProvider: timeProvider,
		logger:       logger,
	}
	adjustments := &AdjustmentService{engine: e}
	return &Service{engine: e, adjustments: adjustments}, adjustments
}

// actor loads the acting user; unknown users may not do anything
func (e *engine) actor(ctx context.Context, actorID uint64) (*entity.User, error) {
	user, err := e.uow.GetUserRepository(ctx).GetByID(ctx, actorID)
	if errors.Is(err, errs.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: acting user %d does not exist", errs.ErrForbidden, actorID)
	}
	return user, err
}

func (e *engine) lender(ctx context.Context, actorID uint64) (*entity.User, error) {
	user, err := e.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsLender() {
		return nil, fmt.Errorf("%w: user %d is not a lender", errs.ErrForbidden, actorID)
	}
	return user, nil
}

func requireOwner(loan *entity.Loan, actorID uint64) error {
	if !loan.IsOwnedBy(actorID) {
		return fmt.Errorf("%w: loan %d belongs to another borrower", errs.ErrForbidden, loan.ID)
	}
	return nil
}

// ensureCan rejects event before any side effect happens
func ensureCan(loan *entity.Loan, event entity.LoanEvent) error {
	if !loan.Can(event) {
		return errs.NewInvalidTransitionError(loan.ID, string(loan.State()), string(event))
	}
	return nil
}

// lockLoan takes the loan row lock; it is always the first lock of a unit of work
func (e *engine) lockLoan(ctx context.Context, loanID uint64) (*entity.Loan, error) {
	return e.uow.GetLoanRepository(ctx).GetByIDForUpdate(ctx, loanID)
}

// lockAdjustment locks the owning loan, then reads the adjustment under that lock
func (e *engine) lockAdjustment(ctx context.Context, adjustmentID uint64) (*entity.Loan, *entity.LoanAdjustment, error) {
	repo := e.uow.GetLoanAdjustmentRepository(ctx)
	adjustment, err := repo.GetByID(ctx, adjustmentID)
	if err != nil {
		return nil, nil, err
	}
	loan, err := e.lockLoan(ctx, adjustment.LoanID)
	if err != nil {
		return nil, nil, err
	}
	adjustment, err = repo.GetByID(ctx, adjustmentID)
	if err != nil {
		return nil, nil, err
	}
	return loan, adjustment, nil
}

// disburse moves the principal from the lender's wallet to the borrower's
func (e *engine) disburse(ctx context.Context, loan *entity.Loan) error {
	if !loan.HasLender() {
		return errs.ErrLenderNotAssigned
	}
	return e.move(ctx, *loan.LenderID, loan.BorrowerID, loan.Amount, fmt.Sprintf("loan %d disbursement", loan.ID))
}

// move transfers amount between the wallets of two users inside the caller's unit of work
func (e *engine) move(ctx context.Context, fromUserID, toUserID uint64, amount decimal.Decimal, description string) error {
	wallets := e.uow.GetWalletRepository(ctx)
	from, err := wallets.GetByUserID(ctx, fromUserID)
	if err != nil {
		return err
	}
	to, err := wallets.GetByUserID(ctx, toUserID)
	if err != nil {
		return err
	}
	_, err = e.ledger.Transfer(ctx, usecase.TransferRequest{
		FromWalletID: from.ID,
		ToWalletID:   to.ID,
		Amount:       amount,
		Description:  description,
	})
	return err
}

// transition fires event on the locked loan through the shared Transitioner
func (e *engine) transition(ctx context.Context, loan *entity.Loan, event entity.LoanEvent, actorID uint64) error {
	return e.transitions.Transition(ctx, loan, event, actorID)
}

// logFailure logs a rejected command with the rich error's fields
func (e *engine) logFailure(command string, loanID, actorID uint64, err error) {
	fields := errs.LogFields(err)
	fields["command"] = command
	fields["loan_id"] = loanID
	fields["actor_id"] = actorID
	if errs.IsValidationError(err) || errs.IsConflictError(err) || errs.IsNotFoundError(err) ||
		errs.IsInsufficientFundsError(err) || errors.Is(err, errs.ErrForbidden) {
		e.logger.Warn("Loan command rejected", fields)
		return
	}
	e.logger.Error("Loan command failed", fields)
}
