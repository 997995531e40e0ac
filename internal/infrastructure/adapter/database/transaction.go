package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/repository"
	"gorm.io/gorm"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// Context keys
const txKey contextKey = "tx"

var _ persistence.UnitOfWork = (*UnitOfWork)(nil)

// txState is what a transactional context carries
type txState struct {
	tx          *gorm.DB
	mu          sync.Mutex
	afterCommit []func()
}

// beginError marks a failure to open the transaction; nothing has been written yet
type beginError struct {
	err error
}

func (e *beginError) Error() string {
	return "failed to begin transaction: " + e.err.Error()
}

func (e *beginError) Unwrap() []error {
	return []error{errs.ErrDatabaseConnection, e.err}
}

// UnitOfWork implements the unit of work pattern over gorm transactions
type UnitOfWork struct {
	db             *gorm.DB
	logger         coreport.Logger
	isolationLevel string
	retry          RetryConfig
	classifier     *repository.ErrorClassifier
}

// NewUnitOfWork creates a new UnitOfWork instance
func NewUnitOfWork(db *gorm.DB, logger coreport.Logger, isolationLevel string, retry RetryConfig) *UnitOfWork {
	if isolationLevel == "" {
		isolationLevel = "READ COMMITTED"
	}
	return &UnitOfWork{
		db:             db,
		logger:         logger,
		isolationLevel: strings.ToUpper(isolationLevel),
		retry:          retry,
		classifier:     repository.NewErrorClassifier(),
	}
}

// Execute runs fn in a transaction, joining the one already carried by ctx.
// Only the outermost call retries, and only on lock conflicts or a failed begin.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := stateFromContext(ctx); ok {
		return fn(ctx)
	}

	var hooks []func()
	err := RetryOnTransientError(ctx, u.retry, func() error {
		var runErr error
		hooks, runErr = u.run(ctx, fn)
		return runErr
	}, u.isRetryable, u.logger)
	if err != nil {
		return err
	}

	for _, hook := range hooks {
		hook()
	}
	return nil
}

func (u *UnitOfWork) run(ctx context.Context, fn func(txCtx context.Context) error) ([]func(), error) {
	txCtx, state, err := u.begin(ctx)
	if err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			u.rollback(state)
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		u.rollback(state)
		return nil, err
	}

	u.logger.Debug("Committing database transaction", nil)
	if err := state.tx.Commit().Error; err != nil {
		u.logger.Error("Failed to commit transaction", map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("failed to commit transaction: %w", u.classifier.ToDomain(err, errs.ErrNotFound))
	}
	return state.afterCommit, nil
}

func (u *UnitOfWork) begin(ctx context.Context) (context.Context, *txState, error) {
	u.logger.Debug("Beginning database transaction", map[string]any{
		"isolation_level": u.isolationLevel,
	})

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		u.logger.Error("Failed to begin transaction", map[string]any{"error": tx.Error.Error()})
		return ctx, nil, &beginError{err: tx.Error}
	}

	if err := tx.Exec("SET TRANSACTION ISOLATION LEVEL " + u.isolationLevel).Error; err != nil {
		tx.Rollback()
		u.logger.Error("Failed to set transaction isolation level", map[string]any{"error": err.Error()})
		return ctx, nil, &beginError{err: err}
	}

	state := &txState{tx: tx}
	return context.WithValue(ctx, txKey, state), state, nil
}

func (u *UnitOfWork) rollback(state *txState) {
	u.logger.Debug("Rolling back database transaction", nil)

	err := state.tx.Rollback().Error
	if err != nil && !errors.Is(err, gorm.ErrInvalidTransaction) &&
		!strings.Contains(err.Error(), "already been committed or rolled back") {
		u.logger.Error("Failed to rollback transaction", map[string]any{
			"error": err.Error(),
		})
	}
}

// isRetryable reports whether a failed attempt may be run again from scratch
func (u *UnitOfWork) isRetryable(err error) bool {
	if errors.Is(err, errs.ErrConcurrentUpdate) || u.classifier.IsLockError(err) {
		return true
	}
	var be *beginError
	return errors.As(err, &be) && u.classifier.IsConnectionError(be.err)
}

// AfterCommit defers fn until the surrounding transaction commits
func (u *UnitOfWork) AfterCommit(ctx context.Context, fn func()) {
	state, ok := stateFromContext(ctx)
	if !ok {
		fn()
		return
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	state.afterCommit = append(state.afterCommit, fn)
}

// GetUserRepository returns a user repository in the current transaction
func (u *UnitOfWork) GetUserRepository(ctx context.Context) persistence.UserRepository {
	return repository.NewUserRepository(u.getDbFromContext(ctx), u.logger)
}

// GetWalletRepository returns a wallet repository in the current transaction
func (u *UnitOfWork) GetWalletRepository(ctx context.Context) persistence.WalletRepository {
	return repository.NewWalletRepository(u.getDbFromContext(ctx), u.logger)
}

// GetLoanRepository returns a loan repository in the current transaction
func (u *UnitOfWork) GetLoanRepository(ctx context.Context) persistence.LoanRepository {
	return repository.NewLoanRepository(u.getDbFromContext(ctx), u.logger)
}

// GetLoanAdjustmentRepository returns an adjustment repository in the current transaction
func (u *UnitOfWork) GetLoanAdjustmentRepository(ctx context.Context) persistence.LoanAdjustmentRepository {
	return repository.NewLoanAdjustmentRepository(u.getDbFromContext(ctx), u.logger)
}

// GetTransactionRepository returns a ledger repository in the current transaction
func (u *UnitOfWork) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	return repository.NewTransactionRepository(u.getDbFromContext(ctx), u.logger)
}

// getDbFromContext retrieves the database instance from context
func (u *UnitOfWork) getDbFromContext(ctx context.Context) *gorm.DB {
	if state, ok := stateFromContext(ctx); ok {
		return state.tx
	}
	return u.db.WithContext(ctx)
}

func stateFromContext(ctx context.Context) (*txState, bool) {
	state, ok := ctx.Value(txKey).(*txState)
	return state, ok && state != nil
}
