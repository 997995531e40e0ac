package scheduler

import (
	"context"
	"errors"
	"time"

	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/usecase"
)

// AccrualLockKey names the lock serializing accrual cycles across replicas
const AccrualLockKey = "accrual-cycle"

// ErrCycleInProgress is returned when another runner holds the accrual lock
var ErrCycleInProgress = errors.New("accrual cycle already running")

// AccrualJob runs one accrual cycle under the accrual lock
type AccrualJob struct {
	accrual      usecase.AccrualUseCase
	locker       Locker
	lockTTL      time.Duration
	cycleTimeout time.Duration
	logger       coreport.Logger
}

// NewAccrualJob creates an AccrualJob; cycleTimeout <= 0 means no timeout
func NewAccrualJob(
	accrual usecase.AccrualUseCase,
	locker Locker,
	lockTTL, cycleTimeout time.Duration,
	logger coreport.Logger,
) *AccrualJob {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	return &AccrualJob{
		accrual:      accrual,
		locker:       locker,
		lockTTL:      lockTTL,
		cycleTimeout: cycleTimeout,
		logger:       logger,
	}
}

// Run executes a cycle unless another runner holds the lock
func (j *AccrualJob) Run(ctx context.Context) (*usecase.CycleReport, error) {
	unlock, ok, err := j.locker.TryLock(ctx, AccrualLockKey, j.lockTTL)
	if err != nil {
		j.logger.Error("Failed to acquire accrual lock", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}
	if !ok {
		j.logger.Info("Accrual cycle skipped, lock held elsewhere", map[string]any{
			"lock": AccrualLockKey,
		})
		return nil, ErrCycleInProgress
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			j.logger.Warn("Failed to release accrual lock", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	cycleCtx := ctx
	if j.cycleTimeout > 0 {
		var cancel context.CancelFunc
		cycleCtx, cancel = context.WithTimeout(ctx, j.cycleTimeout)
		defer cancel()
	}

	return j.accrual.RunAccrualCycle(cycleCtx)
}
