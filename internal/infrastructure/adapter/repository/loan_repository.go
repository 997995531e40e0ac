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

// LoanRepository implements LoanRepository interface using GORM
type LoanRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewLoanRepository creates a new LoanRepository instance
func NewLoanRepository(db *gorm.DB, logger coreport.Logger) *LoanRepository {
	return &LoanRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func loanToEntity(m *model.Loan) *entity.Loan {
	return entity.RestoreLoan(m.ID, m.BorrowerID, m.LenderID, m.Amount, m.InterestRate,
		entity.LoanState(m.State), m.CreatedAt, m.UpdatedAt)
}

func loansToEntities(models []model.Loan) []*entity.Loan {
	loans := make([]*entity.Loan, 0, len(models))
	for i := range models {
		loans = append(loans, loanToEntity(&models[i]))
	}
	return loans
}

func (r *LoanRepository) handleDatabaseError(operation string, err error, loanID uint64) error {
	mapped := r.errorClassifier.ToDomain(err, errs.ErrLoanNotFound)
	if !errs.IsNotFoundError(mapped) {
		r.logger.Error("Database error when "+operation, map[string]any{
			"loan_id": loanID,
			"error":   err.Error(),
		})
	}
	return mapped
}

// GetByID retrieves a loan without locking it
func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*entity.Loan, error) {
	var loanModel model.Loan
	if err := r.db.WithContext(ctx).First(&loanModel, id).Error; err != nil {
		return nil, r.handleDatabaseError("getting loan", err, id)
	}
	return loanToEntity(&loanModel), nil
}

// GetByIDForUpdate reads the loan with SELECT ... FOR UPDATE
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*entity.Loan, error) {
	var loanModel model.Loan
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&loanModel, id).Error
	if err != nil {
		return nil, r.handleDatabaseError("locking loan", err, id)
	}
	return loanToEntity(&loanModel), nil
}

// Create stores a new loan and assigns its ID
func (r *LoanRepository) Create(ctx context.Context, loan *entity.Loan) error {
	loanModel := model.Loan{
		BorrowerID:   loan.BorrowerID,
		LenderID:     loan.LenderID,
		Amount:       loan.Amount,
		InterestRate: loan.InterestRate,
		State:        string(loan.State()),
		CreatedAt:    loan.CreatedAt,
		UpdatedAt:    loan.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&loanModel).Error; err != nil {
		return r.handleDatabaseError("creating loan", err, 0)
	}
	loan.ID = loanModel.ID
	return nil
}

// Update persists state, terms and lender of an existing loan
func (r *LoanRepository) Update(ctx context.Context, loan *entity.Loan) error {
	result := r.db.WithContext(ctx).Model(&model.Loan{}).
		Where("id = ?", loan.ID).
		Updates(map[string]any{
			"lender_id":     loan.LenderID,
			"amount":        loan.Amount,
			"interest_rate": loan.InterestRate,
			"state":         string(loan.State()),
			"updated_at":    loan.UpdatedAt,
		})
	if result.Error != nil {
		return r.handleDatabaseError("updating loan", result.Error, loan.ID)
	}
	if result.RowsAffected == 0 {
		return errs.ErrLoanNotFound
	}
	return nil
}

// ListByBorrower returns the borrower's loans, newest first
func (r *LoanRepository) ListByBorrower(ctx context.Context, borrowerID uint64) ([]*entity.Loan, error) {
	var models []model.Loan
	err := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, r.handleDatabaseError("listing borrower loans", err, 0)
	}
	return loansToEntities(models), nil
}

// ListByState returns loans in any of the given states ordered by ID
func (r *LoanRepository) ListByState(ctx context.Context, states ...entity.LoanState) ([]*entity.Loan, error) {
	if len(states) == 0 {
		return []*entity.Loan{}, nil
	}
	names := make([]string, 0, len(states))
	for _, s := range states {
		names = append(names, string(s))
	}

	var models []model.Loan
	err := r.db.WithContext(ctx).
		Where("state IN ?", names).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, r.handleDatabaseError("listing loans by state", err, 0)
	}
	return loansToEntities(models), nil
}

// ListAll returns every loan, newest first
func (r *LoanRepository) ListAll(ctx context.Context) ([]*entity.Loan, error) {
	var models []model.Loan
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&models).Error; err != nil {
		return nil, r.handleDatabaseError("listing loans", err, 0)
	}
	return loansToEntities(models), nil
}
