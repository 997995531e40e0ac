package events

import (
	"fmt"
	"time"

	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
)

// Supported drivers
const (
	DriverLog      = "log"
	DriverKafka    = "kafka"
	DriverRabbitMQ = "rabbitmq"
)

// Config selects and configures the event broker.
// PublishTimeout bounds broker I/O of a single publish.
type Config struct {
	Driver         string
	Brokers        []string
	TopicPrefix    string
	AMQPURL        string
	Exchange       string
	PublishTimeout time.Duration
}

// NewPublisher builds the configured publisher.
// An unreachable RabbitMQ broker degrades to a LogPublisher so startup never blocks on it.
func NewPublisher(cfg Config, logger coreport.Logger, timeProvider coreport.TimeProvider) (coreport.EventPublisher, error) {
	switch cfg.Driver {
	case "", DriverLog:
		return NewLogPublisher(logger, timeProvider), nil
	case DriverKafka:
		if len(cfg.Brokers) == 0 {
			return nil, fmt.Errorf("kafka driver requires at least one broker")
		}
		logger.Info("Publishing events to kafka", map[string]any{
			"brokers":      cfg.Brokers,
			"topic_prefix": cfg.TopicPrefix,
		})
		return NewKafkaPublisher(cfg.Brokers, cfg.TopicPrefix, cfg.PublishTimeout, logger, timeProvider), nil
	case DriverRabbitMQ:
		publisher, err := NewRabbitMQPublisher(cfg.AMQPURL, cfg.Exchange, logger, timeProvider)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, falling back to log publisher", map[string]any{
				"exchange": cfg.Exchange,
				"error":    err.Error(),
			})
			return NewLogPublisher(logger, timeProvider), nil
		}
		logger.Info("Publishing events to rabbitmq", map[string]any{
			"exchange": cfg.Exchange,
		})
		return publisher, nil
	default:
		return nil, fmt.Errorf("unsupported events driver: %s", cfg.Driver)
	}
}
