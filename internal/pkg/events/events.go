// Package events publishes report lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/google/uuid"

	"github.com/xyz-asif/reportabaches/internal/pkg/logger"
)

const (
	ExchangeName = "reportabaches.reports"

	RoutingKeyReportCreated   = "report.created"
	RoutingKeyReportConfirmed = "report.confirmed"
	RoutingKeyReportResolved  = "report.resolved"

	reconnectDelay = 5 * time.Second
	publishTimeout = 5 * time.Second
)

var errClosed = errors.New("rabbitmq publisher closed")

// Event is the envelope published for every lifecycle transition. Timestamp is
// in Unix milliseconds.
type Event struct {
	ID        string `json:"event_id"`
	ReportID  string `json:"report_id"`
	Category  string `json:"category"`
	Status    string `json:"status"`
	ActorID   string `json:"actor_id,omitempty"`
	ActorName string `json:"actor_name,omitempty"`
	Count     int    `json:"confirmation_count,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Publisher is what the report service depends on.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event Event) error
}

// Nop drops every event; used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, Event) error { return nil }

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	url     string
	log     *logger.Logger
	mu      sync.RWMutex
	done    chan struct{}
}

func NewRabbitMQ(url string, log *logger.Logger) (*RabbitMQ, error) {
	rmq := &RabbitMQ{
		url:  url,
		log:  log,
		done: make(chan struct{}),
	}

	if err := rmq.connect(); err != nil {
		return nil, err
	}

	go rmq.handleReconnect()

	return rmq, nil
}

// dial opens a connection and channel and declares the exchange. It does not
// touch r, so callers may run it without holding the lock.
func (r *RabbitMQ) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return conn, channel, nil
}

func (r *RabbitMQ) connect() error {
	conn, channel, err := r.dial()
	if err != nil {
		return err
	}

	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		conn.Close()
		return errClosed
	default:
	}
	r.conn, r.channel = conn, channel
	r.mu.Unlock()

	r.log.Info("rabbitmq connected, exchange %s declared", ExchangeName)
	return nil
}

func (r *RabbitMQ) handleReconnect() {
	for {
		r.mu.RLock()
		closed := r.conn.NotifyClose(make(chan *amqp.Error, 1))
		r.mu.RUnlock()

		select {
		case <-r.done:
			return
		case err := <-closed:
			if err != nil {
				r.log.Warn("rabbitmq connection lost: %v, reconnecting", err)
			}
			if !r.reconnect() {
				return
			}
		}
	}
}

// reconnect dials until it succeeds or Close is called. The channel is
// cleared first so Publish fails fast during the outage instead of waiting.
func (r *RabbitMQ) reconnect() bool {
	r.mu.Lock()
	r.channel = nil
	r.mu.Unlock()

	for {
		err := r.connect()
		if err == nil {
			return true
		}
		r.log.Error("rabbitmq reconnect failed: %v, retrying in %v", err, reconnectDelay)

		select {
		case <-r.done:
			return false
		case <-time.After(reconnectDelay):
		}
	}
}

func (r *RabbitMQ) Publish(ctx context.Context, routingKey string, event Event) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.channel == nil {
		return fmt.Errorf("channel not available")
	}

	msg, err := publishing(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = r.channel.PublishWithContext(
		ctx,
		ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	r.log.Debug("published %s for report %s", routingKey, event.ReportID)
	return nil
}

// publishing builds the AMQP message for event. MessageId is the event id so
// consumers can deduplicate redeliveries.
func publishing(event Event) (amqp.Publishing, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    time.UnixMilli(event.Timestamp),
		Body:         body,
	}, nil
}

func (r *RabbitMQ) Close() {
	close(r.done)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}

	r.log.Info("rabbitmq connection closed")
}
