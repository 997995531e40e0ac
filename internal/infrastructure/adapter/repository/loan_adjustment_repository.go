package repository

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoanAdjustmentRepository implements LoanAdjustmentRepository interface using GORM
type LoanAdjustmentRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewLoanAdjustmentRepository creates a new LoanAdjustmentRepository instance
func NewLoanAdjustmentRepository(db *gorm.DB, logger coreport.Logger) *LoanAdjustmentRepository {
	return &LoanAdjustmentRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func fromNullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func adjustmentToEntity(m *model.LoanAdjustment) *entity.LoanAdjustment {
	return &entity.LoanAdjustment{
		ID:                   m.ID,
		LoanID:               m.LoanID,
		ProposedBy:           m.ProposedBy,
		AdjustedAmount:       fromNullDecimal(m.AdjustedAmount),
		AdjustedInterestRate: fromNullDecimal(m.AdjustedInterestRate),
		Status:               entity.AdjustmentStatus(m.Status),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func (r *LoanAdjustmentRepository) handleDatabaseError(operation string, err error, loanID uint64) error {
	mapped := r.errorClassifier.ToDomain(err, errs.ErrAdjustmentNotFound)
	if !errs.IsNotFoundError(mapped) {
		r.logger.Error("Database error when "+operation, map[string]any{
			"loan_id": loanID,
			"error":   err.Error(),
		})
	}
	return mapped
}

// GetByID retrieves an adjustment
func (r *LoanAdjustmentRepository) GetByID(ctx context.Context, id uint64) (*entity.LoanAdjustment, error) {
	var m model.LoanAdjustment
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, r.handleDatabaseError("getting loan adjustment", err, 0)
	}
	return adjustmentToEntity(&m), nil
}

// Create stores a new adjustment and assigns its ID.
// The partial unique index on pending rows turns a concurrent second proposal into ErrPendingAdjustmentExists.
func (r *LoanAdjustmentRepository) Create(ctx context.Context, adjustment *entity.LoanAdjustment) error {
	m := model.LoanAdjustment{
		LoanID:               adjustment.LoanID,
		ProposedBy:           adjustment.ProposedBy,
		AdjustedAmount:       toNullDecimal(adjustment.AdjustedAmount),
		AdjustedInterestRate: toNullDecimal(adjustment.AdjustedInterestRate),
		Status:               string(adjustment.Status),
		CreatedAt:            adjustment.CreatedAt,
		UpdatedAt:            adjustment.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			return errs.ErrPendingAdjustmentExists
		}
		return r.handleDatabaseError("creating loan adjustment", err, adjustment.LoanID)
	}
	adjustment.ID = m.ID
	return nil
}

// Update persists the status of an adjustment
func (r *LoanAdjustmentRepository) Update(ctx context.Context, adjustment *entity.LoanAdjustment) error {
	result := r.db.WithContext(ctx).Model(&model.LoanAdjustment{}).
		Where("id = ?", adjustment.ID).
		Updates(map[string]any{
			"status":     string(adjustment.Status),
			"updated_at": adjustment.UpdatedAt,
		})
	if result.Error != nil {
		return r.handleDatabaseError("updating loan adjustment", result.Error, adjustment.LoanID)
	}
	if result.RowsAffected == 0 {
		return errs.ErrAdjustmentNotFound
	}
	return nil
}

// FindPendingByLoan returns the pending adjustment of a loan, or nil when there is none
func (r *LoanAdjustmentRepository) FindPendingByLoan(ctx context.Context, loanID uint64) (*entity.LoanAdjustment, error) {
	var m model.LoanAdjustment
	err := r.db.WithContext(ctx).
		Where("loan_id = ? AND status = ?", loanID, string(entity.AdjustmentStatusPending)).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.handleDatabaseError("finding pending adjustment", err, loanID)
	}
	return adjustmentToEntity(&m), nil
}

// ListByLoan returns every adjustment of a loan, oldest first
func (r *LoanAdjustmentRepository) ListByLoan(ctx context.Context, loanID uint64) ([]*entity.LoanAdjustment, error) {
	var models []model.LoanAdjustment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, r.handleDatabaseError("listing loan adjustments", err, loanID)
	}

	adjustments := make([]*entity.LoanAdjustment, 0, len(models))
	for i := range models {
		adjustments = append(adjustments, adjustmentToEntity(&models[i]))
	}
	return adjustments, nil
}
