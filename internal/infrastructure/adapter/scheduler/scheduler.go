package scheduler

import (
	"context"
	"errors"
	"fmt"

	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/loan-ledger/internal/domain/port/usecase"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs accrual every five minutes
const DefaultSchedule = "*/5 * * * *"

// cronLogger routes cron's own logs to the core logger
type cronLogger struct {
	logger coreport.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("Cron: "+msg, keyValueFields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := keyValueFields(keysAndValues)
	fields["error"] = err.Error()
	l.logger.Error("Cron: "+msg, fields)
}

func keyValueFields(keysAndValues []interface{}) map[string]any {
	fields := make(map[string]any, len(keysAndValues)/2+1)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

// Scheduler triggers the accrual job on a cron schedule
type Scheduler struct {
	cron     *cron.Cron
	job      *AccrualJob
	schedule string
	logger   coreport.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewScheduler creates a scheduler; an empty schedule means DefaultSchedule
func NewScheduler(job *AccrualJob, schedule string, logger coreport.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	adapter := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		job:      job,
		schedule: schedule,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start registers the accrual job and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runOnce); err != nil {
		s.logger.Error("Failed to schedule accrual job", map[string]any{
			"schedule": s.schedule,
			"error":    err.Error(),
		})
		return fmt.Errorf("invalid accrual schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("Scheduled accrual job", map[string]any{
		"schedule": s.schedule,
	})
	return nil
}

// Stop stops scheduling and cancels a running cycle; the returned context is done once it returned
func (s *Scheduler) Stop() context.Context {
	done := s.cron.Stop()
	s.cancel()
	return done
}

func (s *Scheduler) runOnce() {
	report, err := s.job.Run(s.ctx)
	switch {
	case errors.Is(err, ErrCycleInProgress):
	case err != nil:
		s.logger.Error("Scheduled accrual cycle failed", map[string]any{
			"error": err.Error(),
		})
	default:
		s.logger.Info("Scheduled accrual cycle completed", map[string]any{
			"processed":       len(report.Results),
			"full_settlement": report.Count(usecase.AccrualFullSettlement),
			"partial_closed":  report.Count(usecase.AccrualPartialClosed),
			"failed":          report.Count(usecase.AccrualFailed),
		})
	}
}
