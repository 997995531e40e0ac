package events

import (
	"context"

	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
)

var _ coreport.EventPublisher = (*LogPublisher)(nil)

// LogPublisher writes events to the application log instead of a broker
type LogPublisher struct {
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher(logger coreport.Logger, timeProvider coreport.TimeProvider) *LogPublisher {
	return &LogPublisher{logger: logger, timeProvider: timeProvider}
}

// Publish implements core.EventPublisher
func (p *LogPublisher) Publish(_ context.Context, event coreport.Event) error {
	envelope, _, err := encode(event, p.timeProvider.Now())
	if err != nil {
		return err
	}
	p.logger.Info("Event published", map[string]any{
		"event_id": envelope.ID,
		"event":    envelope.Name,
		"key":      envelope.Key,
		"payload":  string(envelope.Payload),
	})
	return nil
}

// Close implements core.EventPublisher
func (p *LogPublisher) Close() error {
	return nil
}
