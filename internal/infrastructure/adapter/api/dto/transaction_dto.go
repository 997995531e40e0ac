package dto

import (
	"time"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
)

// TransactionResponse represents one ledger row
type TransactionResponse struct {
	ID            uint64    `json:"id"`
	WalletID      uint64    `json:"walletId"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	Description   string    `json:"description"`
	CorrelationID string    `json:"correlationId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewTransactionResponses maps ledger rows to their API view
func NewTransactionResponses(rows []*entity.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(rows))
	for _, t := range rows {
		out = append(out, TransactionResponse{
			ID:            t.ID,
			WalletID:      t.WalletID,
			Type:          string(t.Type),
			Amount:        entity.FormatAmount(t.Amount),
			Description:   t.Description,
			CorrelationID: t.CorrelationID,
			CreatedAt:     t.CreatedAt,
		})
	}
	return out
}
