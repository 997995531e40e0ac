package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/usecase/notify"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/memory"
	timeadapter "github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/time"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	uow         persistence.UnitOfWork
	store       *memory.UnitOfWork
	clock       *timeadapter.ManualTimeProvider
	ledger      *ledger.Service
	loans       *Service
	adjustments *AdjustmentService
}

type account struct {
	user   *entity.User
	wallet *entity.Wallet
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewUnitOfWork(memory.NewStore(), logger.NewNoopLogger())
	return newFixtureWith(t, store, store, nil)
}

func newFixtureWith(t *testing.T, store *memory.UnitOfWork, uow persistence.UnitOfWork, publisher coreport.EventPublisher) *fixture {
	t.Helper()
	clock := timeadapter.NewManualTimeProvider(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	log := logger.NewNoopLogger()
	ledgerService := ledger.NewService(uow, nil, clock, log)
	loans, adjustments := NewServices(uow, ledgerService, notify.New(publisher, log, time.Second), clock, log)
	return &fixture{
		uow:         uow,
		store:       store,
		clock:       clock,
		ledger:      ledgerService,
		loans:       loans,
		adjustments: adjustments,
	}
}

func (f *fixture) account(t *testing.T, email string, role entity.Role, balance string) account {
	t.Helper()
	ctx := context.Background()
	user, err := entity.NewUser(email, role, f.clock)
	require.NoError(t, err)
	require.NoError(t, f.store.GetUserRepository(ctx).Create(ctx, user))
	wallet, err := entity.NewWallet(user.ID, dec(balance), f.clock)
	require.NoError(t, err)
	require.NoError(t, f.store.GetWalletRepository(ctx).Create(ctx, wallet))
	return account{user: user, wallet: wallet}
}

func (f *fixture) balance(t *testing.T, a account) string {
	t.Helper()
	w, err := f.ledger.GetWallet(context.Background(), a.wallet.ID)
	require.NoError(t, err)
	return w.FormattedBalance()
}

func (f *fixture) loan(t *testing.T, id uint64) *entity.Loan {
	t.Helper()
	l, err := f.loans.GetLoan(context.Background(), id)
	require.NoError(t, err)
	return l
}

func (f *fixture) request(t *testing.T, borrower account, amount, rate string) *entity.Loan {
	t.Helper()
	l, err := f.loans.RequestLoan(context.Background(), borrower.user.ID, dec(amount), dec(rate))
	require.NoError(t, err)
	return l
}

func (f *fixture) ledgerRows(t *testing.T, a account) []*entity.Transaction {
	t.Helper()
	rows, err := f.ledger.ListTransactions(context.Background(), a.wallet.ID, 0)
	require.NoError(t, err)
	return rows
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// failingLedgerUoW delegates to the in-memory store but cannot append ledger rows
type failingLedgerUoW struct {
	*memory.UnitOfWork
}

func (u failingLedgerUoW) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	return failingTransactionRepo{TransactionRepository: u.UnitOfWork.GetTransactionRepository(ctx)}
}

type failingTransactionRepo struct {
	persistence.TransactionRepository
}

var errLedgerWrite = errors.New("ledger write failed")

func (failingTransactionRepo) Create(context.Context, *entity.Transaction) error {
	return errLedgerWrite
}
