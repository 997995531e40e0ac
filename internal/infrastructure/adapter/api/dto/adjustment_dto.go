package dto

import (
	"time"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
)

// ProposeAdjustmentRequest carries the revised terms; an omitted value keeps the current one
type ProposeAdjustmentRequest struct {
	AdjustedAmount       *string `json:"adjustedAmount"`
	AdjustedInterestRate *string `json:"adjustedInterestRate"`
}

// AdjustmentResponse represents the API response for a loan adjustment
type AdjustmentResponse struct {
	ID                   uint64    `json:"id"`
	LoanID               uint64    `json:"loanId"`
	ProposedBy           uint64    `json:"proposedBy"`
	AdjustedAmount       *string   `json:"adjustedAmount"`
	AdjustedInterestRate *string   `json:"adjustedInterestRate"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// NewAdjustmentResponse maps an adjustment to its API view
func NewAdjustmentResponse(a *entity.LoanAdjustment) AdjustmentResponse {
	resp := AdjustmentResponse{
		ID:         a.ID,
		LoanID:     a.LoanID,
		ProposedBy: a.ProposedBy,
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	if a.AdjustedAmount != nil {
		amount := entity.FormatAmount(*a.AdjustedAmount)
		resp.AdjustedAmount = &amount
	}
	if a.AdjustedInterestRate != nil {
		rate := entity.FormatRate(*a.AdjustedInterestRate)
		resp.AdjustedInterestRate = &rate
	}
	return resp
}

// NewAdjustmentResponses maps a list of adjustments
func NewAdjustmentResponses(adjustments []*entity.LoanAdjustment) []AdjustmentResponse {
	out := make([]AdjustmentResponse, 0, len(adjustments))
	for _, a := range adjustments {
		out = append(out, NewAdjustmentResponse(a))
	}
	return out
}
