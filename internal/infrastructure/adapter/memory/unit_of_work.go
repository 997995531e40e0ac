package memory

import (
	"context"

	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/persistence"
)

type contextKey string

const txKey contextKey = "memory_tx"

var _ persistence.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork runs units of work against a Store
type UnitOfWork struct {
	store  *Store
	logger coreport.Logger
}

// NewUnitOfWork creates a UnitOfWork over store
func NewUnitOfWork(store *Store, logger coreport.Logger) *UnitOfWork {
	return &UnitOfWork{store: store, logger: logger}
}

// Store returns the underlying store
func (u *UnitOfWork) Store() *Store {
	return u.store
}

// Execute runs fn in a unit of work, joining the one already carried by ctx
func (u *UnitOfWork) Execute(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	t := u.store.begin()
	txCtx := context.WithValue(ctx, txKey, t)

	committed := false
	defer func() {
		if !committed {
			u.store.rollback(t)
		}
	}()

	if err := fn(txCtx); err != nil {
		u.logger.Debug("Rolling back unit of work", map[string]any{
			"tx_id": t.id,
			"error": err.Error(),
		})
		return err
	}

	hooks := t.afterCommit
	if err := u.store.commit(t); err != nil {
		u.logger.Warn("Unit of work failed to commit", map[string]any{
			"tx_id": t.id,
			"error": err.Error(),
		})
		return err
	}
	committed = true

	for _, hook := range hooks {
		hook()
	}
	return nil
}

// AfterCommit defers fn until the surrounding unit of work commits
func (u *UnitOfWork) AfterCommit(ctx context.Context, fn func()) {
	t, ok := txFromContext(ctx)
	if !ok {
		fn()
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.afterCommit = append(t.afterCommit, fn)
}

// GetUserRepository returns a user repository bound to the unit of work in ctx
func (u *UnitOfWork) GetUserRepository(ctx context.Context) persistence.UserRepository {
	t, _ := txFromContext(ctx)
	return &UserRepository{store: u.store, tx: t}
}

// GetWalletRepository returns a wallet repository bound to the unit of work in ctx
func (u *UnitOfWork) GetWalletRepository(ctx context.Context) persistence.WalletRepository {
	t, _ := txFromContext(ctx)
	return &WalletRepository{store: u.store, tx: t}
}

// GetLoanRepository returns a loan repository bound to the unit of work in ctx
func (u *UnitOfWork) GetLoanRepository(ctx context.Context) persistence.LoanRepository {
	t, _ := txFromContext(ctx)
	return &LoanRepository{store: u.store, tx: t}
}

// GetLoanAdjustmentRepository returns an adjustment repository bound to the unit of work in ctx
func (u *UnitOfWork) GetLoanAdjustmentRepository(ctx context.Context) persistence.LoanAdjustmentRepository {
	t, _ := txFromContext(ctx)
	return &LoanAdjustmentRepository{store: u.store, tx: t}
}

// GetTransactionRepository returns a ledger repository bound to the unit of work in ctx
func (u *UnitOfWork) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	t, _ := txFromContext(ctx)
	return &TransactionRepository{store: u.store, tx: t}
}

func txFromContext(ctx context.Context) (*tx, bool) {
	t, ok := ctx.Value(txKey).(*tx)
	return t, ok && t != nil
}
