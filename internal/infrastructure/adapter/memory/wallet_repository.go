package memory

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
)

// WalletRepository is the in-memory persistence.WalletRepository
type WalletRepository struct {
	store *Store
	tx    *tx
}

// GetByID retrieves a wallet without locking it
func (r *WalletRepository) GetByID(_ context.Context, id uint64) (*entity.Wallet, error) {
	wallet, ok := load(r.store, r.tx, r.store.wallets, id)
	if !ok {
		return nil, errs.ErrWalletNotFound
	}
	return wallet, nil
}

// GetByUserID retrieves the wallet owned by a user
func (r *WalletRepository) GetByUserID(_ context.Context, userID uint64) (*entity.Wallet, error) {
	wallets := scan(r.store, r.tx, r.store.wallets, func(w *entity.Wallet) bool {
		return w.UserID == userID
	})
	if len(wallets) == 0 {
		return nil, errs.ErrWalletNotFound
	}
	return wallets[0], nil
}

// GetByIDForUpdate locks the wallet row for the rest of the unit of work, then reads it
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*entity.Wallet, error) {
	if r.tx != nil {
		if err := r.store.locks.acquire(ctx, rowKey{tableWallets, id}, r.tx.id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Create stores a new wallet and assigns its ID
func (r *WalletRepository) Create(ctx context.Context, wallet *entity.Wallet) error {
	if wallet.Balance().IsNegative() {
		return fmt.Errorf("%w: wallet balance must not be negative", errs.ErrConstraintViolation)
	}
	if _, err := r.GetByUserID(ctx, wallet.UserID); err == nil {
		return fmt.Errorf("%w: user %d already has a wallet", errs.ErrConstraintViolation, wallet.UserID)
	}

	id := nextID(r.store, r.store.wallets)
	userID := wallet.UserID
	check := func() error {
		taken := false
		committedRows(r.store.wallets, func(otherID uint64, other *entity.Wallet) bool {
			taken = otherID != id && other.UserID == userID
			return !taken
		})
		if taken {
			return fmt.Errorf("%w: user %d already has a wallet", errs.ErrConstraintViolation, userID)
		}
		return nil
	}

	wallet.ID = id
	if err := save(ctx, r.store, r.tx, r.store.wallets, id, wallet, check); err != nil {
		wallet.ID = 0
		return err
	}
	return nil
}

// UpdateBalance persists the wallet's balance
func (r *WalletRepository) UpdateBalance(ctx context.Context, wallet *entity.Wallet) error {
	if wallet.Balance().IsNegative() {
		return fmt.Errorf("%w: wallet %d balance must not be negative", errs.ErrConstraintViolation, wallet.ID)
	}
	if _, err := r.GetByID(ctx, wallet.ID); err != nil {
		return err
	}
	return save(ctx, r.store, r.tx, r.store.wallets, wallet.ID, wallet, nil)
}
