package dto

import (
	"time"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
)

// WalletResponse represents the API response for a wallet
type WalletResponse struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	Balance   string    `json:"balance"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewWalletResponse maps a wallet to its API view
func NewWalletResponse(w *entity.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID,
		UserID:    w.UserID,
		Balance:   w.FormattedBalance(),
		UpdatedAt: w.UpdatedAt,
	}
}
