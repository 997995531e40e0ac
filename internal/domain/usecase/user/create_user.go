package user

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/usecase"
)

// CreateUser creates a user and its wallet in one unit of work
func (u *UserUseCase) CreateUser(ctx context.Context, email string, role entity.Role) (*usecase.UserWithWallet, error) {
	user, err := entity.NewUser(email, role, u.timeProvider)
	if err != nil {
		return nil, err
	}

	var wallet *entity.Wallet
	err = u.uow.Execute(ctx, func(txCtx context.Context) error {
		// a retried unit of work starts from a fresh row
		user.ID = 0
		userRepo := u.uow.GetUserRepository(txCtx)
		if _, err := userRepo.GetByEmail(txCtx, user.Email); err == nil {
			return errs.ErrDuplicateUser
		} else if !errors.Is(err, errs.ErrUserNotFound) {
			return err
		}

		if err := userRepo.Create(txCtx, user); err != nil {
			return err
		}

		wallet, err = entity.NewWallet(user.ID, u.policy.InitialBalance(role), u.timeProvider)
		if err != nil {
			return err
		}
		return u.uow.GetWalletRepository(txCtx).Create(txCtx, wallet)
	})
	if err != nil {
		if errors.Is(err, errs.ErrDuplicateUser) {
			u.logger.Warn("User already exists", map[string]any{"email": user.Email})
		} else {
			u.logger.Error("Failed to create user", map[string]any{
				"email": user.Email,
				"error": err.Error(),
			})
		}
		return nil, err
	}

	u.logger.Info("User created", map[string]any{
		"user_id":         user.ID,
		"email":           user.Email,
		"role":            string(user.Role),
		"wallet_id":       wallet.ID,
		"initial_balance": wallet.FormattedBalance(),
	})
	return &usecase.UserWithWallet{User: user, Wallet: wallet}, nil
}

// CreateDefaultUsers creates the seed lenders and borrowers that don't exist yet
func (u *UserUseCase) CreateDefaultUsers(ctx context.Context) error {
	for _, defaultUser := range DefaultUsers {
		_, err := u.CreateUser(ctx, defaultUser.Email, defaultUser.Role)
		if errors.Is(err, errs.ErrDuplicateUser) {
			u.logger.Info("Default user already exists", map[string]any{
				"email": defaultUser.Email,
			})
			continue
		}
		if err != nil {
			return err
		}
	}

	u.logger.Info("Default users created or verified", map[string]any{"count": len(DefaultUsers)})
	return nil
}
