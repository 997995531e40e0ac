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

// TransactionRepository implements the append-only ledger store using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func transactionToEntity(m *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		ID:            m.ID,
		WalletID:      m.WalletID,
		UserID:        m.UserID,
		Amount:        m.Amount,
		Type:          entity.TransactionType(m.Type),
		Description:   m.Description,
		CorrelationID: m.CorrelationID,
		CreatedAt:     m.CreatedAt,
	}
}

func transactionsToEntities(models []model.Transaction) []*entity.Transaction {
	rows := make([]*entity.Transaction, 0, len(models))
	for i := range models {
		rows = append(rows, transactionToEntity(&models[i]))
	}
	return rows
}

// Create appends a ledger row and assigns its ID
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	m := model.Transaction{
		WalletID:      transaction.WalletID,
		UserID:        transaction.UserID,
		Amount:        transaction.Amount,
		Type:          string(transaction.Type),
		Description:   transaction.Description,
		CorrelationID: transaction.CorrelationID,
		CreatedAt:     transaction.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		r.logger.Error("Failed to append ledger row", map[string]any{
			"wallet_id":      transaction.WalletID,
			"correlation_id": transaction.CorrelationID,
			"error":          err.Error(),
		})
		return r.errorClassifier.ToDomain(err, errs.ErrWalletNotFound)
	}
	transaction.ID = m.ID
	return nil
}

// ListByWallet returns the newest rows of a wallet first; limit <= 0 means no limit
func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID uint64, limit int) ([]*entity.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []model.Transaction
	if err := query.Find(&models).Error; err != nil {
		return nil, r.errorClassifier.ToDomain(err, errs.ErrWalletNotFound)
	}
	return transactionsToEntities(models), nil
}

// ListByCorrelationID returns both sides of a transfer, debit first
func (r *TransactionRepository) ListByCorrelationID(ctx context.Context, correlationID string) ([]*entity.Transaction, error) {
	var models []model.Transaction
	err := r.db.WithContext(ctx).
		Where("correlation_id = ?", correlationID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, r.errorClassifier.ToDomain(err, errs.ErrNotFound)
	}
	return transactionsToEntities(models), nil
}
