package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirhossein-jamali/loan-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	coremocks "github.com/amirhossein-jamali/loan-ledger/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// blockingPublisher ignores its context and returns only once released
type blockingPublisher struct {
	release chan struct{}
}

func (p *blockingPublisher) Publish(context.Context, coreport.Event) error {
	<-p.release
	return nil
}

func (p *blockingPublisher) Close() error { return nil }

func testEvent() entity.TransferCompletedEvent {
	return entity.TransferCompletedEvent{CorrelationID: "c-1", FromWalletID: 1, ToWalletID: 2, Amount: "5.00"}
}

func TestNotifier_NilIsANoop(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() { n.Publish(context.Background(), testEvent()) })

	n = New(nil, coremocks.NewMockLogger(t), time.Second)
	assert.NotPanics(t, func() { n.Publish(context.Background(), testEvent()) })
}

func TestNotifier_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, New(nil, nil, 0).timeout)
	assert.Equal(t, time.Second, New(nil, nil, time.Second).timeout)
}

func TestNotifier_PublishesWithBoundedContext(t *testing.T) {
	publisher := coremocks.NewMockEventPublisher(t)
	publisher.EXPECT().Publish(mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= time.Second && ctx.Err() == nil
	}), testEvent()).Return(nil).Once()

	// a cancelled command context still publishes its committed work
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	New(publisher, coremocks.NewMockLogger(t), time.Second).Publish(ctx, testEvent())
}

func TestNotifier_LogsFailures(t *testing.T) {
	publisher := coremocks.NewMockEventPublisher(t)
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	log := coremocks.NewMockLogger(t)
	log.EXPECT().Error("Failed to publish event", mock.MatchedBy(func(f map[string]any) bool {
		return f["event"] == "ledger.transfer_completed" && f["error"] == "broker down"
	})).Return().Once()

	New(publisher, log, time.Second).Publish(context.Background(), testEvent())
}

func TestNotifier_HungPublisherIsAbandonedAfterTimeout(t *testing.T) {
	publisher := &blockingPublisher{release: make(chan struct{})}
	t.Cleanup(func() { close(publisher.release) })

	log := coremocks.NewMockLogger(t)
	log.EXPECT().Error("Failed to publish event", mock.MatchedBy(func(f map[string]any) bool {
		return f["error"] == context.DeadlineExceeded.Error() && f["timeout"] == "30ms"
	})).Return().Once()

	started := time.Now()
	New(publisher, log, 30*time.Millisecond).Publish(context.Background(), testEvent())

	elapsed := time.Since(started)
	require.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
}
