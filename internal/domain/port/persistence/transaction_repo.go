package persistence

import (
	"context"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
)

// TransactionRepository is the append-only ledger store.
// There is deliberately no update or delete.
type TransactionRepository interface {
	// Create appends a ledger row and assigns its ID
	//
	// Possible errors:
	// - ErrConstraintViolation: If the wallet doesn't exist or the amount is negative
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, transaction *entity.Transaction) error

	// ListByWallet returns the newest rows of a wallet first; limit <= 0 means no limit
	ListByWallet(ctx context.Context, walletID uint64, limit int) ([]*entity.Transaction, error)

	// ListByCorrelationID returns both sides of a transfer, debit first
	ListByCorrelationID(ctx context.Context, correlationID string) ([]*entity.Transaction, error)
}
