package accrual

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/usecase"
	loanusecase "github.com/amirhossein-jamali/loan-ledger/internal/domain/usecase/loan"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/usecase/notify"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultConcurrency is used when no positive worker count is configured
	DefaultConcurrency = 4

	descriptionFullSettlement = "full settlement"
	descriptionPartialClosed  = "partial payment: loan closed"
)

var _ usecase.AccrualUseCase = (*Service)(nil)

// Service charges one period of interest on every open loan
type Service struct {
	uow          persistence.UnitOfWork
	ledger       usecase.LedgerUseCase
	transitions  *loanusecase.Transitioner
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	concurrency  int
}

// NewService creates an accrual service; notifier may be nil
func NewService(
	uow persistence.UnitOfWork,
	ledger usecase.LedgerUseCase,
	notifier *notify.Notifier,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	concurrency int,
) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Service{
		uow:          uow,
		ledger:       ledger,
		transitions:  loanusecase.NewTransitioner(uow, notifier, timeProvider, logger),
		timeProvider: timeProvider,
		logger:       logger,
		concurrency:  concurrency,
	}
}

// RunAccrualCycle processes every loan that is open when the cycle starts.
// Each loan is settled in its own unit of work; one loan failing does not stop the others.
// A loan processed by two cycles is charged twice.
func (s *Service) RunAccrualCycle(ctx context.Context) (*usecase.CycleReport, error) {
	report := &usecase.CycleReport{StartedAt: s.timeProvider.Now()}

	loans, err := s.uow.GetLoanRepository(ctx).ListByState(ctx, entity.LoanStateOpen)
	if err != nil {
		s.logger.Error("Failed to list open loans", map[string]any{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to list open loans: %w", err)
	}

	s.logger.Info("Accrual cycle started", map[string]any{
		"open_loans":  len(loans),
		"concurrency": s.concurrency,
	})

	report.Results = make([]usecase.LoanAccrualResult, len(loans))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, loan := range loans {
		g.Go(func() error {
			report.Results[i] = s.accrueSafely(ctx, loan.ID)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = s.timeProvider.Now()
	s.logger.Info("Accrual cycle finished", map[string]any{
		"loans":           len(report.Results),
		"full_settlement": report.Count(usecase.AccrualFullSettlement),
		"partial_closed":  report.Count(usecase.AccrualPartialClosed),
		"skipped":         report.Count(usecase.AccrualSkipped),
		"failed":          report.Count(usecase.AccrualFailed),
		"duration":        report.FinishedAt.Sub(report.StartedAt).String(),
	})
	return report, nil
}

// accrueSafely turns a panic while settling one loan into a failed result
func (s *Service) accrueSafely(ctx context.Context, loanID uint64) (result usecase.LoanAccrualResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: panic while accruing loan %d: %v", errs.ErrInternalServer, loanID, r)
			s.logger.Error("Loan accrual panicked", map[string]any{
				"loan_id": loanID,
				"panic":   fmt.Sprint(r),
			})
			result = usecase.LoanAccrualResult{LoanID: loanID, Outcome: usecase.AccrualFailed, Err: err}
		}
	}()
	return s.accrue(ctx, loanID)
}

func (s *Service) accrue(ctx context.Context, loanID uint64) usecase.LoanAccrualResult {
	result := usecase.LoanAccrualResult{LoanID: loanID}

	err := s.uow.Execute(ctx, func(txCtx context.Context) error {
		result.Outcome, result.Charged = "", ""

		loanRepo := s.uow.GetLoanRepository(txCtx)
		loan, err := loanRepo.GetByIDForUpdate(txCtx, loanID)
		if err != nil {
			return err
		}
		// closed or repaid since the listing
		if loan.State() != entity.LoanStateOpen {
			result.Outcome = usecase.AccrualSkipped
			return nil
		}
		if !loan.HasLender() {
			return fmt.Errorf("loan %d: %w", loan.ID, errs.ErrLenderNotAssigned)
		}

		walletRepo := s.uow.GetWalletRepository(txCtx)
		borrowerWallet, err := walletRepo.GetByUserID(txCtx, loan.BorrowerID)
		if err != nil {
			return fmt.Errorf("borrower wallet of loan %d: %w", loan.ID, err)
		}
		lenderWallet, err := walletRepo.GetByUserID(txCtx, *loan.LenderID)
		if err != nil {
			return fmt.Errorf("lender wallet of loan %d: %w", loan.ID, err)
		}

		wallets, err := s.ledger.LockWallets(txCtx, borrowerWallet.ID, lenderWallet.ID)
		if err != nil {
			return err
		}
		balance := wallets[0].Balance()
		total := loan.TotalDue()

		if total.LessThanOrEqual(balance) {
			if err := s.charge(txCtx, borrowerWallet.ID, lenderWallet.ID, total, descriptionFullSettlement); err != nil {
				return err
			}
			result.Outcome = usecase.AccrualFullSettlement
			result.Charged = entity.FormatAmount(total)
			return nil
		}

		if balance.IsPositive() {
			if err := s.charge(txCtx, borrowerWallet.ID, lenderWallet.ID, balance, descriptionPartialClosed); err != nil {
				return err
			}
		}
		if err := s.close(txCtx, loan); err != nil {
			return err
		}
		result.Outcome = usecase.AccrualPartialClosed
		result.Charged = entity.FormatAmount(balance)
		return nil
	})
	if err != nil {
		s.logger.Error("Loan accrual failed", map[string]any{
			"loan_id": loanID,
			"error":   err.Error(),
		})
		return usecase.LoanAccrualResult{LoanID: loanID, Outcome: usecase.AccrualFailed, Err: err}
	}

	if result.Outcome != usecase.AccrualSkipped {
		s.logger.Debug("Loan accrued", map[string]any{
			"loan_id": loanID,
			"outcome": string(result.Outcome),
			"charged": result.Charged,
		})
	}
	return result
}

func (s *Service) charge(ctx context.Context, fromWalletID, toWalletID uint64, amount decimal.Decimal, description string) error {
	_, err := s.ledger.Transfer(ctx, usecase.TransferRequest{
		FromWalletID: fromWalletID,
		ToWalletID:   toWalletID,
		Amount:       amount,
		Description:  description,
	})
	return err
}

// close force-closes a loan the borrower could not pay in full; the system is the actor
func (s *Service) close(ctx context.Context, l *entity.Loan) error {
	return s.transitions.Transition(ctx, l, entity.LoanEventClose, 0)
}
