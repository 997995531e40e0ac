package events

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/loan-ledger/internal/domain/port/core"
	"github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the part of *amqp091.Channel the publisher uses
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

var _ coreport.EventPublisher = (*RabbitMQPublisher)(nil)

// RabbitMQPublisher publishes events to a durable topic exchange, routed by event name
type RabbitMQPublisher struct {
	mu           sync.Mutex
	conn         *amqp091.Connection
	channel      amqpChannel
	exchange     string
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewRabbitMQPublisher dials the broker and declares the exchange
func NewRabbitMQPublisher(amqpURL, exchange string, logger coreport.Logger, timeProvider coreport.TimeProvider) (*RabbitMQPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	p, err := newRabbitMQPublisher(ch, exchange, logger, timeProvider)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newRabbitMQPublisher(ch amqpChannel, exchange string, logger coreport.Logger, timeProvider coreport.TimeProvider) (*RabbitMQPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &RabbitMQPublisher{
		channel:      ch,
		exchange:     exchange,
		logger:       logger,
		timeProvider: timeProvider,
	}, nil
}

// Publish implements core.EventPublisher
func (p *RabbitMQPublisher) Publish(ctx context.Context, event coreport.Event) error {
	now := p.timeProvider.Now()
	envelope, body, err := encode(event, now)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, envelope.Name, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    envelope.ID,
		Timestamp:    now,
		Type:         envelope.Name,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s to exchange %s: %w", envelope.Name, p.exchange, err)
	}

	p.logger.Debug("Event published to rabbitmq", map[string]any{
		"event_id":    envelope.ID,
		"exchange":    p.exchange,
		"routing_key": envelope.Name,
	})
	return nil
}

// Close closes the channel and the connection
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
