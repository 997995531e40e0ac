package notify

import (
	"context"
	"time"

	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
)

// DefaultTimeout bounds a publish when no positive timeout is configured
const DefaultTimeout = 2 * time.Second

// Notifier publishes events of committed work. A publish never holds the caller
// longer than its timeout, even when the broker ignores context cancellation.
// A nil Notifier publishes nothing.
type Notifier struct {
	publisher coreport.EventPublisher
	logger    coreport.Logger
	timeout   time.Duration
}

// New creates a Notifier; publisher may be nil
func New(publisher coreport.EventPublisher, logger coreport.Logger, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Notifier{
		publisher: publisher,
		logger:    logger,
		timeout:   timeout,
	}
}

// Publish delivers event best effort; failures and timeouts are logged, never returned
func (n *Notifier) Publish(ctx context.Context, event coreport.Event) {
	if n == nil || n.publisher == nil {
		return
	}

	// committed work is published even if the command's own context is done
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- n.publisher.Publish(pubCtx, event)
	}()

	var err error
	select {
	case err = <-done:
	case <-pubCtx.Done():
		err = pubCtx.Err()
	}
	if err != nil {
		n.logger.Error("Failed to publish event", map[string]any{
			"event":   event.EventName(),
			"key":     event.PartitionKey(),
			"timeout": n.timeout.String(),
			"error":   err.Error(),
		})
	}
}
