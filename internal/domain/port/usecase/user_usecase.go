package usecase

import (
	"context"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
)

// UserWithWallet is a user together with the wallet provisioned for it
type UserWithWallet struct {
	User   *entity.User
	Wallet *entity.Wallet
}

// UserUseCase defines methods for user-related business operations
type UserUseCase interface {
	// CreateUser creates a user and its wallet, funded by the role's initial balance
	CreateUser(ctx context.Context, email string, role entity.Role) (*UserWithWallet, error)

	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, userID uint64) (*entity.User, error)

	// CreateDefaultUsers creates the seed lenders and borrowers that don't exist yet
	CreateDefaultUsers(ctx context.Context) error
}
