// Package rabbitmq publishes domain events to RabbitMQ topic exchanges.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventProducer owns one connection and channel shared by its exchange publishers.
type EventProducer struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	declared map[string]bool
	logger   *slog.Logger
}

// NewEventProducer dials amqpURL. A nil logger uses slog.Default().
func NewEventProducer(amqpURL string, logger *slog.Logger) (*EventProducer, error) {
	cleanURL, err := sanitizeProducerURL(amqpURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	return &EventProducer{conn: conn, channel: channel, declared: make(map[string]bool), logger: logger}, nil
}

// Publish sends body as JSON to exchange with routingKey. The exchange is
// declared as a durable topic exchange on first use.
func (p *EventProducer) Publish(ctx context.Context, exchange, routingKey string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", routingKey, err)
	}

	// amqp channels are not safe for concurrent publishes.
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared[exchange] {
		if err := p.channel.ExchangeDeclare(
			exchange,
			"topic",
			true,
			false,
			false,
			false,
			nil,
		); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
		}
		p.declared[exchange] = true
	}

	if err := p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         payload,
	}); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", routingKey, exchange, err)
	}

	p.logger.Debug("Published message", slog.String("exchange", exchange), slog.String("routing_key", routingKey))
	return nil
}

// Exchange returns a publisher bound to one exchange.
func (p *EventProducer) Exchange(name string) providers.EventPublisher {
	return &exchangePublisher{producer: p, exchange: name}
}

// Close releases channel and connection resources.
func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

type exchangePublisher struct {
	producer *EventProducer
	exchange string
}

func (e *exchangePublisher) Publish(ctx context.Context, routingKey string, body any) error {
	return e.producer.Publish(ctx, e.exchange, routingKey, body)
}

// NoopPublisher drops events. It is used when no broker is configured.
type NoopPublisher struct {
	Logger *slog.Logger
}

var _ providers.EventPublisher = NoopPublisher{}

func (n NoopPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	if n.Logger != nil {
		n.Logger.Debug("Event dropped, no broker configured", slog.String("routing_key", routingKey))
	}
	return nil
}

func sanitizeProducerURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	idx := strings.Index(strings.ToLower(clean), "amqp")
	if idx > 0 {
		clean = clean[idx:]
	}
	parsed, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}
