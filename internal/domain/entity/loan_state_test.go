package entity

import (
	"testing"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectedTransitions is the full lifecycle table; every pair not listed is illegal
var expectedTransitions = map[LoanState]map[LoanEvent]LoanState{
	LoanStateRequested: {
		LoanEventApprove: LoanStateApproved,
		LoanEventReject:  LoanStateRejected,
		LoanEventAdjust:  LoanStateWaitingForAdjustmentAcceptance,
	},
	LoanStateApproved: {
		LoanEventConfirm: LoanStateOpen,
	},
	LoanStateOpen: {
		LoanEventClose: LoanStateClosed,
	},
	LoanStateWaitingForAdjustmentAcceptance: {
		LoanEventConfirm:  LoanStateOpen,
		LoanEventReject:   LoanStateRejected,
		LoanEventReadjust: LoanStateReadjustmentRequested,
	},
	LoanStateReadjustmentRequested: {
		LoanEventReject: LoanStateRejected,
	},
	LoanStateClosed:   {},
	LoanStateRejected: {},
}

func TestNextState_EveryStateAndEvent(t *testing.T) {
	require.Len(t, AllLoanStates, 7)
	require.Len(t, AllLoanEvents, 6)

	for _, state := range AllLoanStates {
		for _, event := range AllLoanEvents {
			t.Run(string(state)+"/"+string(event), func(t *testing.T) {
				next, err := NextState(state, event)
				want, legal := expectedTransitions[state][event]
				if legal {
					require.NoError(t, err)
					assert.Equal(t, want, next)
					return
				}
				require.Error(t, err)
				assert.True(t, errs.IsInvalidTransitionError(err))
				assert.Equal(t, state, next, "illegal pairs leave the state unchanged")

				var detail *errs.InvalidTransitionError
				require.ErrorAs(t, err, &detail)
				assert.Equal(t, string(state), detail.From)
				assert.Equal(t, string(event), detail.Event)
			})
		}
	}
}

func TestAllowedEvents(t *testing.T) {
	assert.Equal(t, []LoanEvent{LoanEventAdjust, LoanEventApprove, LoanEventReject}, AllowedEvents(LoanStateRequested))
	assert.Equal(t, []LoanEvent{LoanEventConfirm, LoanEventReadjust, LoanEventReject}, AllowedEvents(LoanStateWaitingForAdjustmentAcceptance))
	assert.Empty(t, AllowedEvents(LoanStateClosed))

	assert.True(t, LoanStateClosed.IsTerminal())
	assert.True(t, LoanStateRejected.IsTerminal())
	assert.False(t, LoanStateOpen.IsTerminal())
}

func TestParseLoanEvent(t *testing.T) {
	event, err := ParseLoanEvent(" Approve ")
	require.NoError(t, err)
	assert.Equal(t, LoanEventApprove, event)

	_, err = ParseLoanEvent("cancel")
	assert.ErrorIs(t, err, errs.ErrInvalidEvent)
	assert.True(t, errs.IsValidationError(err))
}

func TestParseLoanState(t *testing.T) {
	state, err := ParseLoanState("waiting_for_adjustment_acceptance")
	require.NoError(t, err)
	assert.Equal(t, LoanStateWaitingForAdjustmentAcceptance, state)

	_, err = ParseLoanState("pending")
	assert.True(t, errs.IsValidationError(err))
}
