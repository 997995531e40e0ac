package accrual

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/usecase/notify"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/memory"
	timeadapter "github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/time"
	coremocks "github.com/amirhossein-jamali/loan-ledger/mocks/port/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type harness struct {
	uow    *memory.UnitOfWork
	clock  *timeadapter.ManualTimeProvider
	ledger *ledger.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := timeadapter.NewManualTimeProvider(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	uow := memory.NewUnitOfWork(memory.NewStore(), logger.NewNoopLogger())
	return &harness{
		uow:    uow,
		clock:  clock,
		ledger: ledger.NewService(uow, nil, clock, logger.NewNoopLogger()),
	}
}

func (h *harness) service(ledger usecase.LedgerUseCase, concurrency int) *Service {
	if ledger == nil {
		ledger = h.ledger
	}
	return NewService(h.uow, ledger, nil, h.clock, logger.NewNoopLogger(), concurrency)
}

func (h *harness) wallet(t *testing.T, email string, role entity.Role, balance string) (*entity.User, *entity.Wallet) {
	t.Helper()
	ctx := context.Background()
	user, err := entity.NewUser(email, role, h.clock)
	require.NoError(t, err)
	require.NoError(t, h.uow.GetUserRepository(ctx).Create(ctx, user))
	wallet, err := entity.NewWallet(user.ID, decimal.RequireFromString(balance), h.clock)
	require.NoError(t, err)
	require.NoError(t, h.uow.GetWalletRepository(ctx).Create(ctx, wallet))
	return user, wallet
}

func (h *harness) loan(t *testing.T, borrowerID uint64, lenderID *uint64, amount, rate string, state entity.LoanState) *entity.Loan {
	t.Helper()
	ctx := context.Background()
	now := h.clock.Now()
	l := entity.RestoreLoan(0, borrowerID, lenderID,
		decimal.RequireFromString(amount), decimal.RequireFromString(rate), state, now, now)
	require.NoError(t, h.uow.GetLoanRepository(ctx).Create(ctx, l))
	return l
}

func (h *harness) balance(t *testing.T, w *entity.Wallet) string {
	t.Helper()
	got, err := h.ledger.GetWallet(context.Background(), w.ID)
	require.NoError(t, err)
	return got.FormattedBalance()
}

func (h *harness) state(t *testing.T, id uint64) entity.LoanState {
	t.Helper()
	l, err := h.uow.GetLoanRepository(context.Background()).GetByID(context.Background(), id)
	require.NoError(t, err)
	return l.State()
}

func result(t *testing.T, report *usecase.CycleReport, loanID uint64) usecase.LoanAccrualResult {
	t.Helper()
	for _, r := range report.Results {
		if r.LoanID == loanID {
			return r
		}
	}
	require.FailNow(t, "loan missing from report", "loan %d", loanID)
	return usecase.LoanAccrualResult{}
}

func TestRunAccrualCycle_ShortBalanceClosesLoan(t *testing.T) {
	h := newHarness(t)
	borrower, borrowerWallet := h.wallet(t, "b@example.com", entity.RoleBorrower, "200")
	lender, lenderWallet := h.wallet(t, "l@example.com", entity.RoleLender, "0")
	l := h.loan(t, borrower.ID, &lender.ID, "5000", "6", entity.LoanStateOpen)

	report, err := h.service(nil, 2).RunAccrualCycle(context.Background())
	require.NoError(t, err)

	r := result(t, report, l.ID)
	assert.Equal(t, usecase.AccrualPartialClosed, r.Outcome)
	assert.Equal(t, "200.00", r.Charged)
	assert.NoError(t, r.Err)

	assert.Equal(t, entity.LoanStateClosed, h.state(t, l.ID))
	assert.Equal(t, "0.00", h.balance(t, borrowerWallet))
	assert.Equal(t, "200.00", h.balance(t, lenderWallet))

	rows, err := h.ledger.ListTransactions(context.Background(), borrowerWallet.ID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "partial payment: loan closed", rows[0].Description)
}

func TestRunAccrualCycle_FullSettlementChargesEveryCycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	borrower, borrowerWallet := h.wallet(t, "b@example.com", entity.RoleBorrower, "25000")
	lender, lenderWallet := h.wallet(t, "l@example.com", entity.RoleLender, "0")
	l := h.loan(t, borrower.ID, &lender.ID, "10000", "5", entity.LoanStateOpen)
	svc := h.service(nil, 1)

	first, err := svc.RunAccrualCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, usecase.AccrualFullSettlement, result(t, first, l.ID).Outcome)
	assert.Equal(t, "10500.00", result(t, first, l.ID).Charged)
	assert.Equal(t, entity.LoanStateOpen, h.state(t, l.ID))
	assert.Equal(t, "14500.00", h.balance(t, borrowerWallet))

	// the second cycle charges again
	second, err := svc.RunAccrualCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, usecase.AccrualFullSettlement, result(t, second, l.ID).Outcome)
	assert.Equal(t, "4000.00", h.balance(t, borrowerWallet))
	assert.Equal(t, "21000.00", h.balance(t, lenderWallet))

	// the third can only take what is left and closes the loan
	third, err := svc.RunAccrualCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, usecase.AccrualPartialClosed, result(t, third, l.ID).Outcome)
	assert.Equal(t, "0.00", h.balance(t, borrowerWallet))
	assert.Equal(t, "25000.00", h.balance(t, lenderWallet))
	assert.Equal(t, entity.LoanStateClosed, h.state(t, l.ID))

	fourth, err := svc.RunAccrualCycle(ctx)
	require.NoError(t, err)
	assert.Empty(t, fourth.Results, "closed loans are not listed")
}

func TestRunAccrualCycle_ExactBalanceIsAFullSettlement(t *testing.T) {
	h := newHarness(t)
	borrower, borrowerWallet := h.wallet(t, "b@example.com", entity.RoleBorrower, "1050")
	lender, _ := h.wallet(t, "l@example.com", entity.RoleLender, "0")
	l := h.loan(t, borrower.ID, &lender.ID, "1000", "5", entity.LoanStateOpen)

	report, err := h.service(nil, 1).RunAccrualCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, usecase.AccrualFullSettlement, result(t, report, l.ID).Outcome)
	assert.Equal(t, entity.LoanStateOpen, h.state(t, l.ID))
	assert.Equal(t, "0.00", h.balance(t, borrowerWallet))
}

func TestRunAccrualCycle_EmptyWalletClosesWithoutTransfer(t *testing.T) {
	h := newHarness(t)
	borrower, borrowerWallet := h.wallet(t, "b@example.com", entity.RoleBorrower, "0")
	lender, lenderWallet := h.wallet(t, "l@example.com", entity.RoleLender, "0")
	l := h.loan(t, borrower.ID, &lender.ID, "100", "1", entity.LoanStateOpen)

	report, err := h.service(nil, 1).RunAccrualCycle(context.Background())
	require.NoError(t, err)

	r := result(t, report, l.ID)
	assert.Equal(t, usecase.AccrualPartialClosed, r.Outcome)
	assert.Equal(t, "0.00", r.Charged)
	assert.Equal(t, entity.LoanStateClosed, h.state(t, l.ID))

	rows, err := h.ledger.ListTransactions(context.Background(), borrowerWallet.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, "0.00", h.balance(t, lenderWallet))
}

func TestRunAccrualCycle_OnlyOpenLoans(t *testing.T) {
	h := newHarness(t)
	borrower, borrowerWallet := h.wallet(t, "b@example.com", entity.RoleBorrower, "1000")
	lender, _ := h.wallet(t, "l@example.com", entity.RoleLender, "0")
	for _, state := range entity.AllLoanStates {
		if state != entity.LoanStateOpen {
			h.loan(t, borrower.ID, &lender.ID, "10", "1", state)
		}
	}

	report, err := h.service(nil, 4).RunAccrualCycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Equal(t, "1000.00", h.balance(t, borrowerWallet))
}

func TestRunAccrualCycle_FailuresAreIsolated(t *testing.T) {
	h := newHarness(t)
	borrower, borrowerWallet := h.wallet(t, "b@example.com", entity.RoleBorrower, "1000")
	lender, lenderWallet := h.wallet(t, "l@example.com", entity.RoleLender, "0")
	orphan := h.loan(t, borrower.ID, nil, "100", "1", entity.LoanStateOpen)
	healthy := h.loan(t, borrower.ID, &lender.ID, "100", "10", entity.LoanStateOpen)

	report, err := h.service(nil, 2).RunAccrualCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	failed := result(t, report, orphan.ID)
	assert.Equal(t, usecase.AccrualFailed, failed.Outcome)
	assert.ErrorIs(t, failed.Err, errs.ErrLenderNotAssigned)
	assert.Equal(t, entity.LoanStateOpen, h.state(t, orphan.ID))

	assert.Equal(t, usecase.AccrualFullSettlement, result(t, report, healthy.ID).Outcome)
	assert.Equal(t, "890.00", h.balance(t, borrowerWallet))
	assert.Equal(t, "110.00", h.balance(t, lenderWallet))
	assert.Equal(t, 1, report.Count(usecase.AccrualFailed))
	assert.Equal(t, 1, report.Count(usecase.AccrualFullSettlement))
}

// panickyLedger panics while locking the wallets of one borrower
type panickyLedger struct {
	usecase.LedgerUseCase
	walletID uint64
}

func (p panickyLedger) LockWallets(ctx context.Context, ids ...uint64) ([]*entity.Wallet, error) {
	if ids[0] == p.walletID {
		panic("wallet store exploded")
	}
	return p.LedgerUseCase.LockWallets(ctx, ids...)
}

func TestRunAccrualCycle_PanicIsRecoveredPerLoan(t *testing.T) {
	h := newHarness(t)
	b1, w1 := h.wallet(t, "b1@example.com", entity.RoleBorrower, "1000")
	b2, w2 := h.wallet(t, "b2@example.com", entity.RoleBorrower, "1000")
	lender, _ := h.wallet(t, "l@example.com", entity.RoleLender, "0")
	bad := h.loan(t, b1.ID, &lender.ID, "100", "0", entity.LoanStateOpen)
	good := h.loan(t, b2.ID, &lender.ID, "100", "0", entity.LoanStateOpen)

	svc := h.service(panickyLedger{LedgerUseCase: h.ledger, walletID: w1.ID}, 2)
	report, err := svc.RunAccrualCycle(context.Background())
	require.NoError(t, err)

	r := result(t, report, bad.ID)
	assert.Equal(t, usecase.AccrualFailed, r.Outcome)
	assert.ErrorIs(t, r.Err, errs.ErrInternalServer)
	assert.Contains(t, r.Err.Error(), "wallet store exploded")
	assert.Equal(t, "1000.00", h.balance(t, w1))

	assert.Equal(t, usecase.AccrualFullSettlement, result(t, report, good.ID).Outcome)
	assert.Equal(t, "900.00", h.balance(t, w2))
}

// countingLedger records how many loans are being settled at once
type countingLedger struct {
	usecase.LedgerUseCase
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (c *countingLedger) LockWallets(ctx context.Context, ids ...uint64) ([]*entity.Wallet, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		peak := c.peak.Load()
		if n <= peak || c.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return c.LedgerUseCase.LockWallets(ctx, ids...)
}

func TestRunAccrualCycle_RespectsConcurrencyLimit(t *testing.T) {
	h := newHarness(t)
	const loans = 12
	for i := 0; i < loans; i++ {
		borrower, _ := h.wallet(t, fmt.Sprintf("b%d@example.com", i), entity.RoleBorrower, "1000")
		lender, _ := h.wallet(t, fmt.Sprintf("l%d@example.com", i), entity.RoleLender, "0")
		h.loan(t, borrower.ID, &lender.ID, "10", "0", entity.LoanStateOpen)
	}

	counter := &countingLedger{LedgerUseCase: h.ledger}
	report, err := h.service(counter, 3).RunAccrualCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, loans, report.Count(usecase.AccrualFullSettlement))
	assert.LessOrEqual(t, counter.peak.Load(), int32(3))
	assert.GreaterOrEqual(t, counter.peak.Load(), int32(1))
}

func TestRunAccrualCycle_ConcurrentCyclesNeverOverdraw(t *testing.T) {
	h := newHarness(t)
	borrower, borrowerWallet := h.wallet(t, "b@example.com", entity.RoleBorrower, "150")
	lender, lenderWallet := h.wallet(t, "l@example.com", entity.RoleLender, "0")
	l := h.loan(t, borrower.ID, &lender.ID, "100", "0", entity.LoanStateOpen)
	svc := h.service(nil, 2)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RunAccrualCycle(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// at most one full settlement of 100 fits, the next cycle takes the 50 left and closes
	assert.Equal(t, "0.00", h.balance(t, borrowerWallet))
	assert.Equal(t, "150.00", h.balance(t, lenderWallet))
	assert.Equal(t, entity.LoanStateClosed, h.state(t, l.ID))
}

// failingListUoW cannot list loans
type failingListUoW struct {
	*memory.UnitOfWork
}

func (u failingListUoW) GetLoanRepository(ctx context.Context) persistence.LoanRepository {
	return failingLoanList{LoanRepository: u.UnitOfWork.GetLoanRepository(ctx)}
}

type failingLoanList struct {
	persistence.LoanRepository
}

var errListing = errors.New("listing failed")

func (failingLoanList) ListByState(context.Context, ...entity.LoanState) ([]*entity.Loan, error) {
	return nil, errListing
}

func TestRunAccrualCycle_ListingFailure(t *testing.T) {
	h := newHarness(t)
	log := coremocks.NewMockLogger(t)
	log.EXPECT().Error("Failed to list open loans", mock.Anything).Return().Once()

	svc := NewService(failingListUoW{UnitOfWork: h.uow}, h.ledger, nil, h.clock, log, 1)
	report, err := svc.RunAccrualCycle(context.Background())
	assert.Nil(t, report)
	assert.ErrorIs(t, err, errListing)
}

func TestRunAccrualCycle_ClosePublishesSystemStateChange(t *testing.T) {
	h := newHarness(t)
	borrower, _ := h.wallet(t, "b@example.com", entity.RoleBorrower, "10")
	lender, _ := h.wallet(t, "l@example.com", entity.RoleLender, "0")
	l := h.loan(t, borrower.ID, &lender.ID, "100", "5", entity.LoanStateOpen)

	publisher := coremocks.NewMockEventPublisher(t)
	publisher.EXPECT().Publish(mock.Anything, mock.MatchedBy(func(e entity.LoanStateChangedEvent) bool {
		return e.LoanID == l.ID &&
			e.Event == "close" &&
			e.From == "open" &&
			e.To == "closed" &&
			e.ActorID == 0
	})).Return(nil).Once()

	log := logger.NewNoopLogger()
	svc := NewService(h.uow, h.ledger, notify.New(publisher, log, time.Second), h.clock, log, 1)

	report, err := svc.RunAccrualCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, usecase.AccrualPartialClosed, result(t, report, l.ID).Outcome)
}

// hangingPublisher blocks every publish until released, whatever its context says
type hangingPublisher struct {
	release chan struct{}
	calls   atomic.Int32
}

func (p *hangingPublisher) Publish(context.Context, coreport.Event) error {
	p.calls.Add(1)
	<-p.release
	return nil
}

func (p *hangingPublisher) Close() error { return nil }

func TestRunAccrualCycle_HungBrokerDoesNotStarveCycle(t *testing.T) {
	h := newHarness(t)
	lender, _ := h.wallet(t, "l@example.com", entity.RoleLender, "0")

	const loans = 8
	ids := make([]uint64, 0, loans)
	for i := 0; i < loans; i++ {
		borrower, _ := h.wallet(t, fmt.Sprintf("b%d@example.com", i), entity.RoleBorrower, "1")
		ids = append(ids, h.loan(t, borrower.ID, &lender.ID, "100", "5", entity.LoanStateOpen).ID)
	}

	publisher := &hangingPublisher{release: make(chan struct{})}
	t.Cleanup(func() { close(publisher.release) })

	log := logger.NewNoopLogger()
	svc := NewService(h.uow, h.ledger, notify.New(publisher, log, 20*time.Millisecond), h.clock, log, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	report, err := svc.RunAccrualCycle(ctx)
	require.NoError(t, err)
	require.NoError(t, ctx.Err(), "cycle outlived its deadline")

	for _, id := range ids {
		r := result(t, report, id)
		assert.Equal(t, usecase.AccrualPartialClosed, r.Outcome, "loan %d", id)
		assert.NoError(t, r.Err)
		assert.Equal(t, entity.LoanStateClosed, h.state(t, id))
	}
	assert.EqualValues(t, loans, publisher.calls.Load())
}
