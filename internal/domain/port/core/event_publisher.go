package core

import "context"

// Event is a domain fact published after the unit of work that produced it has committed
type Event interface {
	// EventName is the routing name, e.g. "loan.state_changed"
	EventName() string
	// PartitionKey groups events that must stay ordered
	PartitionKey() string
}

// EventPublisher delivers events to a broker.
// Publishing is best effort: callers log failures, they never undo committed work.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
