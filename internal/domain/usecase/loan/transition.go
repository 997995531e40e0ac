package loan

import (
	"context"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/usecase/notify"
)

// Transitioner is the one place a persisted loan changes state.
// Commands and the accrual cycle both go through it.
type Transitioner struct {
	uow          persistence.UnitOfWork
	notifier     *notify.Notifier
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewTransitioner creates a Transitioner; notifier may be nil
func NewTransitioner(
	uow persistence.UnitOfWork,
	notifier *notify.Notifier,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Transitioner {
	return &Transitioner{
		uow:          uow,
		notifier:     notifier,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Transition fires event on a loan locked by the current unit of work, persists it
// and publishes loan.state_changed once the unit of work commits.
// actorID is 0 for changes made by the system.
func (t *Transitioner) Transition(ctx context.Context, loan *entity.Loan, event entity.LoanEvent, actorID uint64) error {
	from := loan.State()
	now := t.timeProvider.Now()
	if err := loan.Fire(event, now); err != nil {
		return err
	}
	if err := t.uow.GetLoanRepository(ctx).Update(ctx, loan); err != nil {
		return err
	}

	changed := entity.NewLoanStateChangedEvent(loan, event, from, actorID, now)
	t.uow.AfterCommit(ctx, func() {
		t.logger.Info("Loan state changed", map[string]any{
			"loan_id":     changed.LoanID,
			"borrower_id": changed.BorrowerID,
			"event":       changed.Event,
			"from":        changed.From,
			"to":          changed.To,
			"actor_id":    actorID,
		})
		t.notifier.Publish(ctx, changed)
	})
	return nil
}
