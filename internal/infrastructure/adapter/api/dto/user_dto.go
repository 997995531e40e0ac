package dto

import (
	"time"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/usecase"
)

// CreateUserRequest represents the API request for creating a user
type CreateUserRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

// UserResponse represents a user together with its wallet
type UserResponse struct {
	ID        uint64         `json:"id"`
	Email     string         `json:"email"`
	Role      string         `json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
	Wallet    WalletResponse `json:"wallet"`
}

// NewUserResponse maps a provisioned user to its API view
func NewUserResponse(u *usecase.UserWithWallet) UserResponse {
	return UserResponse{
		ID:        u.User.ID,
		Email:     u.User.Email,
		Role:      string(u.User.Role),
		CreatedAt: u.User.CreatedAt,
		Wallet:    NewWalletResponse(u.Wallet),
	}
}
