package persistence

import (
	"context"
)

// UnitOfWork coordinates repositories inside one atomic, isolated transaction
type UnitOfWork interface {
	// Execute runs fn inside a transaction and commits when fn returns nil.
	// Any error (or panic) rolls back every write made through the repositories
	// obtained from the transactional context. A context that already carries a
	// transaction joins it instead of starting a nested one.
	Execute(ctx context.Context, fn func(txCtx context.Context) error) error

	// AfterCommit registers fn to run once the outermost transaction commits.
	// Outside a transaction fn runs immediately.
	AfterCommit(ctx context.Context, fn func())

	// GetUserRepository returns a user repository bound to the current transaction
	GetUserRepository(ctx context.Context) UserRepository

	// GetWalletRepository returns a wallet repository bound to the current transaction
	GetWalletRepository(ctx context.Context) WalletRepository

	// GetLoanRepository returns a loan repository bound to the current transaction
	GetLoanRepository(ctx context.Context) LoanRepository

	// GetLoanAdjustmentRepository returns an adjustment repository bound to the current transaction
	GetLoanAdjustmentRepository(ctx context.Context) LoanAdjustmentRepository

	// GetTransactionRepository returns a ledger repository bound to the current transaction
	GetTransactionRepository(ctx context.Context) TransactionRepository
}
