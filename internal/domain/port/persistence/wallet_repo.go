package persistence

import (
	"context"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
)

// WalletRepository stores wallets. Balances are only written by the ledger.
type WalletRepository interface {
	// GetByID retrieves a wallet without locking it
	//
	// Possible errors:
	// - ErrWalletNotFound: If wallet doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.Wallet, error)

	// GetByUserID retrieves the wallet owned by a user
	//
	// Possible errors:
	// - ErrWalletNotFound: If the user has no wallet
	// - ErrDatabaseConnection: If database connection fails
	GetByUserID(ctx context.Context, userID uint64) (*entity.Wallet, error)

	// GetByIDForUpdate retrieves a wallet and locks its row until the unit of work ends.
	// Must be called inside UnitOfWork.Execute.
	//
	// Possible errors:
	// - ErrWalletNotFound: If wallet doesn't exist
	// - ErrConcurrentUpdate: If the lock could not be acquired (deadlock, serialization failure)
	// - ErrDatabaseConnection: If database connection fails
	GetByIDForUpdate(ctx context.Context, id uint64) (*entity.Wallet, error)

	// Create stores a new wallet and assigns its ID
	//
	// Possible errors:
	// - ErrConstraintViolation: If the user already has a wallet or the balance is negative
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, wallet *entity.Wallet) error

	// UpdateBalance persists the wallet's balance
	//
	// Possible errors:
	// - ErrWalletNotFound: If wallet doesn't exist
	// - ErrConstraintViolation: If the balance would be negative
	// - ErrDatabaseConnection: If database connection fails
	UpdateBalance(ctx context.Context, wallet *entity.Wallet) error
}
