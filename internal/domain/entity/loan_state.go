package entity

import (
	"sort"
	"strings"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
)

// LoanState is a node of the loan lifecycle
type LoanState string

// Loan states
const (
	LoanStateRequested                      LoanState = "requested"
	LoanStateApproved                       LoanState = "approved"
	LoanStateOpen                           LoanState = "open"
	LoanStateClosed                         LoanState = "closed"
	LoanStateRejected                       LoanState = "rejected"
	LoanStateWaitingForAdjustmentAcceptance LoanState = "waiting_for_adjustment_acceptance"
	LoanStateReadjustmentRequested          LoanState = "readjustment_requested"
)

// LoanEvent is an edge label of the loan lifecycle
type LoanEvent string

// Loan events
const (
	LoanEventApprove  LoanEvent = "approve"
	LoanEventReject   LoanEvent = "reject"
	LoanEventConfirm  LoanEvent = "confirm"
	LoanEventClose    LoanEvent = "close"
	LoanEventAdjust   LoanEvent = "adjust"
	LoanEventReadjust LoanEvent = "readjust"
)

// loanTransitions maps event -> from state -> to state
var loanTransitions = map[LoanEvent]map[LoanState]LoanState{
	LoanEventApprove: {
		LoanStateRequested: LoanStateApproved,
	},
	LoanEventReject: {
		LoanStateRequested:                      LoanStateRejected,
		LoanStateWaitingForAdjustmentAcceptance: LoanStateRejected,
		LoanStateReadjustmentRequested:          LoanStateRejected,
	},
	LoanEventConfirm: {
		LoanStateApproved:                       LoanStateOpen,
		LoanStateWaitingForAdjustmentAcceptance: LoanStateOpen,
	},
	LoanEventClose: {
		LoanStateOpen: LoanStateClosed,
	},
	LoanEventAdjust: {
		LoanStateRequested: LoanStateWaitingForAdjustmentAcceptance,
	},
	LoanEventReadjust: {
		LoanStateWaitingForAdjustmentAcceptance: LoanStateReadjustmentRequested,
	},
}

// AllLoanStates lists every state
var AllLoanStates = []LoanState{
	LoanStateRequested,
	LoanStateApproved,
	LoanStateOpen,
	LoanStateClosed,
	LoanStateRejected,
	LoanStateWaitingForAdjustmentAcceptance,
	LoanStateReadjustmentRequested,
}

// AllLoanEvents lists every event
var AllLoanEvents = []LoanEvent{
	LoanEventApprove,
	LoanEventReject,
	LoanEventConfirm,
	LoanEventClose,
	LoanEventAdjust,
	LoanEventReadjust,
}

// NextState returns the state reached by firing event from state.
// It has no side effects; an illegal pair yields an InvalidTransitionError.
func NextState(from LoanState, event LoanEvent) (LoanState, error) {
	edges, ok := loanTransitions[event]
	if !ok {
		return from, errs.NewInvalidTransitionError(0, string(from), string(event))
	}
	to, ok := edges[from]
	if !ok {
		return from, errs.NewInvalidTransitionError(0, string(from), string(event))
	}
	return to, nil
}

// AllowedEvents returns the events that are legal from state, in a stable order
func AllowedEvents(state LoanState) []LoanEvent {
	events := make([]LoanEvent, 0, 2)
	for event, edges := range loanTransitions {
		if _, ok := edges[state]; ok {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i] < events[j] })
	return events
}

// ParseLoanEvent parses an event name
func ParseLoanEvent(raw string) (LoanEvent, error) {
	event := LoanEvent(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := loanTransitions[event]; !ok {
		return "", errs.NewValidationError("event", raw, "unknown loan event", errs.ErrInvalidEvent)
	}
	return event, nil
}

// ParseLoanState parses a state name
func ParseLoanState(raw string) (LoanState, error) {
	state := LoanState(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range AllLoanStates {
		if known == state {
			return state, nil
		}
	}
	return "", errs.NewValidationError("state", raw, "unknown loan state", nil)
}

// IsTerminal reports whether no event leaves the state
func (s LoanState) IsTerminal() bool {
	return len(AllowedEvents(s)) == 0
}
