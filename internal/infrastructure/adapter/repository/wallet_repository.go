package repository

import (
	"context"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository implements WalletRepository interface using GORM
type WalletRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewWalletRepository creates a new WalletRepository instance
func NewWalletRepository(db *gorm.DB, logger coreport.Logger) *WalletRepository {
	return &WalletRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func walletToEntity(m *model.Wallet) *entity.Wallet {
	return entity.RestoreWallet(m.ID, m.UserID, m.Balance, m.CreatedAt, m.UpdatedAt)
}

func (r *WalletRepository) handleDatabaseError(operation string, err error, walletID uint64) error {
	mapped := r.errorClassifier.ToDomain(err, errs.ErrWalletNotFound)
	switch {
	case errs.IsNotFoundError(mapped):
	case errs.IsConflictError(mapped):
		r.logger.Warn("Wallet lock conflict", map[string]any{
			"wallet_id": walletID,
			"operation": operation,
			"error":     err.Error(),
		})
	default:
		r.logger.Error("Database error when "+operation, map[string]any{
			"wallet_id": walletID,
			"error":     err.Error(),
		})
	}
	return mapped
}

// GetByID retrieves a wallet without locking it
func (r *WalletRepository) GetByID(ctx context.Context, id uint64) (*entity.Wallet, error) {
	var walletModel model.Wallet
	if err := r.db.WithContext(ctx).First(&walletModel, id).Error; err != nil {
		return nil, r.handleDatabaseError("getting wallet", err, id)
	}
	return walletToEntity(&walletModel), nil
}

// GetByUserID retrieves the wallet owned by a user
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uint64) (*entity.Wallet, error) {
	var walletModel model.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&walletModel).Error; err != nil {
		return nil, r.handleDatabaseError("getting wallet by user", err, 0)
	}
	return walletToEntity(&walletModel), nil
}

// GetByIDForUpdate reads the wallet with SELECT ... FOR UPDATE
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*entity.Wallet, error) {
	var walletModel model.Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&walletModel, id).Error
	if err != nil {
		return nil, r.handleDatabaseError("locking wallet", err, id)
	}
	return walletToEntity(&walletModel), nil
}

// Create stores a new wallet and assigns its ID
func (r *WalletRepository) Create(ctx context.Context, wallet *entity.Wallet) error {
	walletModel := model.Wallet{
		UserID:    wallet.UserID,
		Balance:   wallet.Balance(),
		CreatedAt: wallet.CreatedAt,
		UpdatedAt: wallet.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Omit("User").Create(&walletModel).Error; err != nil {
		return r.handleDatabaseError("creating wallet", err, 0)
	}
	wallet.ID = walletModel.ID
	return nil
}

// UpdateBalance persists the wallet's balance
func (r *WalletRepository) UpdateBalance(ctx context.Context, wallet *entity.Wallet) error {
	result := r.db.WithContext(ctx).Model(&model.Wallet{}).
		Where("id = ?", wallet.ID).
		Updates(map[string]any{
			"balance":    wallet.Balance(),
			"updated_at": wallet.UpdatedAt,
		})
	if result.Error != nil {
		return r.handleDatabaseError("updating wallet balance", result.Error, wallet.ID)
	}
	if result.RowsAffected == 0 {
		return errs.ErrWalletNotFound
	}
	return nil
}
