package dto

import (
	"time"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
)

// CreateLoanRequest represents the API request for requesting a loan.
// Money values travel as strings so no precision is lost.
type CreateLoanRequest struct {
	Amount       string `json:"amount" binding:"required"`
	InterestRate string `json:"interestRate" binding:"required"`
}

// FireEventRequest names a loan event to fire
type FireEventRequest struct {
	Event string `json:"event" binding:"required"`
}

// LoanResponse represents the API response for a loan
type LoanResponse struct {
	ID            uint64    `json:"id"`
	BorrowerID    uint64    `json:"borrowerId"`
	LenderID      *uint64   `json:"lenderId"`
	Amount        string    `json:"amount"`
	InterestRate  string    `json:"interestRate"`
	Interest      string    `json:"interest"`
	TotalDue      string    `json:"totalDue"`
	State         string    `json:"state"`
	AllowedEvents []string  `json:"allowedEvents"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewLoanResponse maps a loan to its API view
func NewLoanResponse(l *entity.Loan) LoanResponse {
	allowed := entity.AllowedEvents(l.State())
	events := make([]string, 0, len(allowed))
	for _, e := range allowed {
		events = append(events, string(e))
	}
	return LoanResponse{
		ID:            l.ID,
		BorrowerID:    l.BorrowerID,
		LenderID:      l.LenderID,
		Amount:        entity.FormatAmount(l.Amount),
		InterestRate:  entity.FormatRate(l.InterestRate),
		Interest:      entity.FormatAmount(l.Interest()),
		TotalDue:      entity.FormatAmount(l.TotalDue()),
		State:         string(l.State()),
		AllowedEvents: events,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

// NewLoanResponses maps a list of loans
func NewLoanResponses(loans []*entity.Loan) []LoanResponse {
	out := make([]LoanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, NewLoanResponse(l))
	}
	return out
}
