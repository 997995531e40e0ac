package events

import (
	"context"
	"fmt"
	"time"

	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ coreport.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher writes each event to the topic TopicPrefix+EventName, keyed by its partition key
type KafkaPublisher struct {
	writer       messageWriter
	topicPrefix  string
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

const (
	kafkaMaxAttempts  = 3
	kafkaBatchTimeout = 10 * time.Millisecond
)

// NewKafkaPublisher creates a publisher over a hash-balanced kafka.Writer.
// writeTimeout bounds each network read and write; zero keeps the kafka-go default.
func NewKafkaPublisher(brokers []string, topicPrefix string, writeTimeout time.Duration, logger coreport.Logger, timeProvider coreport.TimeProvider) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		MaxAttempts:            kafkaMaxAttempts,
		BatchTimeout:           kafkaBatchTimeout,
		WriteTimeout:           writeTimeout,
		ReadTimeout:            writeTimeout,
	}
	return newKafkaPublisher(writer, topicPrefix, logger, timeProvider)
}

func newKafkaPublisher(writer messageWriter, topicPrefix string, logger coreport.Logger, timeProvider coreport.TimeProvider) *KafkaPublisher {
	return &KafkaPublisher{
		writer:       writer,
		topicPrefix:  topicPrefix,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// Publish implements core.EventPublisher
func (p *KafkaPublisher) Publish(ctx context.Context, event coreport.Event) error {
	envelope, body, err := encode(event, p.timeProvider.Now())
	if err != nil {
		return err
	}

	topic := p.topicPrefix + envelope.Name
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(envelope.Key),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(envelope.ID)},
			{Key: "event-name", Value: []byte(envelope.Name)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write %s to kafka topic %s: %w", envelope.Name, topic, err)
	}

	p.logger.Debug("Event published to kafka", map[string]any{
		"event_id": envelope.ID,
		"topic":    topic,
		"key":      envelope.Key,
	})
	return nil
}

// Close flushes pending writes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
