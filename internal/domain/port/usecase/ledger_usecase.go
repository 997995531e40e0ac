package usecase

import (
	"context"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TransferRequest moves Amount from one wallet to another
type TransferRequest struct {
	FromWalletID uint64
	ToWalletID   uint64
	Amount       decimal.Decimal
	Description  string
}

// TransferResult describes a committed (or joined) transfer
type TransferResult struct {
	CorrelationID string
	Debit         *entity.Transaction
	Credit        *entity.Transaction
	FromBalance   decimal.Decimal
	ToBalance     decimal.Decimal
}

// LedgerUseCase is the only path that changes wallet balances
type LedgerUseCase interface {
	// Transfer moves funds between two wallets atomically and appends a debit/credit pair.
	// It joins the caller's unit of work when ctx carries one.
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)

	// LockWallets locks wallet rows in ascending id order and returns them in the order requested.
	// Must be called inside a unit of work.
	LockWallets(ctx context.Context, walletIDs ...uint64) ([]*entity.Wallet, error)

	// GetWallet returns a wallet by id
	GetWallet(ctx context.Context, walletID uint64) (*entity.Wallet, error)

	// GetWalletByUser returns the wallet owned by userID
	GetWalletByUser(ctx context.Context, userID uint64) (*entity.Wallet, error)

	// ListTransactions returns the newest ledger rows of a wallet
	ListTransactions(ctx context.Context, walletID uint64, limit int) ([]*entity.Transaction, error)
}
