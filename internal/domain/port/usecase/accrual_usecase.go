package usecase

import (
	"context"
	"time"
)

// LoanAccrualOutcome names what a cycle did with one loan
type LoanAccrualOutcome string

// Accrual outcomes
const (
	AccrualFullSettlement LoanAccrualOutcome = "full_settlement"
	AccrualPartialClosed  LoanAccrualOutcome = "partial_closed"
	AccrualSkipped        LoanAccrualOutcome = "skipped"
	AccrualFailed         LoanAccrualOutcome = "failed"
)

// LoanAccrualResult is the per-loan line of a cycle report
type LoanAccrualResult struct {
	LoanID  uint64
	Outcome LoanAccrualOutcome
	Charged string
	Err     error
}

// CycleReport summarizes one accrual cycle
type CycleReport struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []LoanAccrualResult
}

// Count returns how many loans ended with outcome
func (r *CycleReport) Count(outcome LoanAccrualOutcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// AccrualUseCase charges interest on open loans
type AccrualUseCase interface {
	// RunAccrualCycle processes every open loan once. Per-loan failures are
	// reported, not returned; the error is reserved for failing to list loans.
	RunAccrualCycle(ctx context.Context) (*CycleReport, error)
}
