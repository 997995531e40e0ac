package user

import (
	"context"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/usecase"
	"github.com/shopspring/decimal"
)

var _ usecase.UserUseCase = (*UserUseCase)(nil)

// WalletPolicy decides the balance a new wallet starts with
type WalletPolicy struct {
	BorrowerInitialBalance decimal.Decimal
	LenderInitialBalance   decimal.Decimal
}

// DefaultWalletPolicy funds borrowers generously so they can repay with interest
func DefaultWalletPolicy() WalletPolicy {
	return WalletPolicy{
		BorrowerInitialBalance: decimal.NewFromInt(1_000_000),
		LenderInitialBalance:   decimal.NewFromInt(10_000),
	}
}

// InitialBalance returns the starting balance for role
func (p WalletPolicy) InitialBalance(role entity.Role) decimal.Decimal {
	if role.IsLender() {
		return p.LenderInitialBalance
	}
	return p.BorrowerInitialBalance
}

// DefaultUser is a seed account
type DefaultUser struct {
	Email string
	Role  entity.Role
}

// DefaultUsers are created by CreateDefaultUsers
var DefaultUsers = []DefaultUser{
	{Email: "admin1@example.com", Role: entity.RoleLender},
	{Email: "admin2@example.com", Role: entity.RoleLender},
	{Email: "user1@example.com", Role: entity.RoleBorrower},
	{Email: "user2@example.com", Role: entity.RoleBorrower},
}

// UserUseCase handles user-related business logic
type UserUseCase struct {
	uow          persistence.UnitOfWork
	policy       WalletPolicy
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(
	uow persistence.UnitOfWork,
	policy WalletPolicy,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *UserUseCase {
	return &UserUseCase{
		uow:          uow,
		policy:       policy,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetUser retrieves a user by ID
func (u *UserUseCase) GetUser(ctx context.Context, userID uint64) (*entity.User, error) {
	return u.uow.GetUserRepository(ctx).GetByID(ctx, userID)
}
