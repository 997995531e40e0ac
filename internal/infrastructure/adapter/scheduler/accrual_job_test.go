package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/loan-ledger/internal/infrastructure/adapter/logger"
	coremocks "github.com/amirhossein-jamali/loan-ledger/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeAccrual struct {
	calls  int
	report *usecase.CycleReport
	err    error
	seen   context.Context
}

func (f *fakeAccrual) RunAccrualCycle(ctx context.Context) (*usecase.CycleReport, error) {
	f.calls++
	f.seen = ctx
	if f.err != nil {
		return nil, f.err
	}
	if f.report == nil {
		return &usecase.CycleReport{}, nil
	}
	return f.report, nil
}

type fakeLocker struct {
	busy     bool
	err      error
	released int
}

func (l *fakeLocker) TryLock(context.Context, string, time.Duration) (Unlock, bool, error) {
	if l.err != nil {
		return nil, false, l.err
	}
	if l.busy {
		return nil, false, nil
	}
	return func(context.Context) error {
		l.released++
		return nil
	}, true, nil
}

func TestAccrualJobRun(t *testing.T) {
	ctx := context.Background()

	t.Run("runs the cycle under the lock", func(t *testing.T) {
		accrual := &fakeAccrual{report: &usecase.CycleReport{Results: []usecase.LoanAccrualResult{{LoanID: 1}}}}
		locker := &fakeLocker{}
		job := NewAccrualJob(accrual, locker, time.Minute, 0, logger.NewNoopLogger())

		report, err := job.Run(ctx)
		require.NoError(t, err)
		assert.Len(t, report.Results, 1)
		assert.Equal(t, 1, accrual.calls)
		assert.Equal(t, 1, locker.released)
	})

	t.Run("skips when the lock is held", func(t *testing.T) {
		accrual := &fakeAccrual{}
		job := NewAccrualJob(accrual, &fakeLocker{busy: true}, time.Minute, 0, logger.NewNoopLogger())

		_, err := job.Run(ctx)
		assert.ErrorIs(t, err, ErrCycleInProgress)
		assert.Zero(t, accrual.calls)
	})

	t.Run("reports lock errors", func(t *testing.T) {
		accrual := &fakeAccrual{}
		log := coremocks.NewMockLogger(t)
		log.EXPECT().Error("Failed to acquire accrual lock", mock.Anything).Return().Once()
		job := NewAccrualJob(accrual, &fakeLocker{err: errors.New("redis down")}, time.Minute, 0, log)

		_, err := job.Run(ctx)
		assert.ErrorContains(t, err, "redis down")
		assert.Zero(t, accrual.calls)
	})

	t.Run("releases the lock when the cycle fails", func(t *testing.T) {
		accrual := &fakeAccrual{err: errors.New("listing failed")}
		locker := &fakeLocker{}
		job := NewAccrualJob(accrual, locker, time.Minute, 0, logger.NewNoopLogger())

		_, err := job.Run(ctx)
		assert.Error(t, err)
		assert.Equal(t, 1, locker.released)
	})

	t.Run("bounds the cycle by the timeout", func(t *testing.T) {
		accrual := &fakeAccrual{}
		job := NewAccrualJob(accrual, &fakeLocker{}, time.Minute, time.Hour, logger.NewNoopLogger())

		_, err := job.Run(ctx)
		require.NoError(t, err)
		deadline, ok := accrual.seen.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Hour), deadline, time.Minute)
	})
}
