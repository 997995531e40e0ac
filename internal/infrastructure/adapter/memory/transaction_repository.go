package memory

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
)

// TransactionRepository is the in-memory append-only ledger
type TransactionRepository struct {
	store *Store
	tx    *tx
}

// Create appends a ledger row and assigns its ID
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	if transaction.Amount.IsNegative() {
		return fmt.Errorf("%w: ledger amount must not be negative", errs.ErrConstraintViolation)
	}
	if _, ok := load(r.store, r.tx, r.store.wallets, transaction.WalletID); !ok {
		return fmt.Errorf("%w: wallet %d does not exist", errs.ErrConstraintViolation, transaction.WalletID)
	}

	id := nextID(r.store, r.store.transactions)
	transaction.ID = id
	if err := save(ctx, r.store, r.tx, r.store.transactions, id, transaction, nil); err != nil {
		transaction.ID = 0
		return err
	}
	return nil
}

// ListByWallet returns the newest rows of a wallet first; limit <= 0 means no limit
func (r *TransactionRepository) ListByWallet(_ context.Context, walletID uint64, limit int) ([]*entity.Transaction, error) {
	rows := newestFirst(scan(r.store, r.tx, r.store.transactions, func(t *entity.Transaction) bool {
		return t.WalletID == walletID
	}))
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// ListByCorrelationID returns both sides of a transfer, debit first
func (r *TransactionRepository) ListByCorrelationID(_ context.Context, correlationID string) ([]*entity.Transaction, error) {
	return scan(r.store, r.tx, r.store.transactions, func(t *entity.Transaction) bool {
		return t.CorrelationID == correlationID
	}), nil
}
