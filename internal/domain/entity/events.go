package entity

import (
	"strconv"
	"time"
)

// Event names
const (
	EventTransferCompleted = "ledger.transfer_completed"
	EventLoanStateChanged  = "loan.state_changed"
)

// TransferCompletedEvent is published once a transfer's unit of work committed
type TransferCompletedEvent struct {
	CorrelationID string    `json:"correlation_id"`
	FromWalletID  uint64    `json:"from_wallet_id"`
	ToWalletID    uint64    `json:"to_wallet_id"`
	Amount        string    `json:"amount"`
	Description   string    `json:"description"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventName implements core.Event
func (e TransferCompletedEvent) EventName() string {
	return EventTransferCompleted
}

// PartitionKey implements core.Event
func (e TransferCompletedEvent) PartitionKey() string {
	return strconv.FormatUint(e.FromWalletID, 10)
}

// LoanStateChangedEvent is published once a loan transition committed
type LoanStateChangedEvent struct {
	LoanID       uint64    `json:"loan_id"`
	BorrowerID   uint64    `json:"borrower_id"`
	LenderID     *uint64   `json:"lender_id,omitempty"`
	ActorID      uint64    `json:"actor_id,omitempty"`
	Event        string    `json:"event"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	Amount       string    `json:"amount"`
	InterestRate string    `json:"interest_rate"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventName implements core.Event
func (e LoanStateChangedEvent) EventName() string {
	return EventLoanStateChanged
}

// PartitionKey implements core.Event
func (e LoanStateChangedEvent) PartitionKey() string {
	return strconv.FormatUint(e.LoanID, 10)
}

// NewLoanStateChangedEvent snapshots a loan right after event moved it out of from
func NewLoanStateChangedEvent(loan *Loan, event LoanEvent, from LoanState, actorID uint64, now time.Time) LoanStateChangedEvent {
	return LoanStateChangedEvent{
		LoanID:       loan.ID,
		BorrowerID:   loan.BorrowerID,
		LenderID:     loan.LenderID,
		ActorID:      actorID,
		Event:        string(event),
		From:         string(from),
		To:           string(loan.State()),
		Amount:       FormatAmount(loan.Amount),
		InterestRate: FormatRate(loan.InterestRate),
		OccurredAt:   now,
	}
}
