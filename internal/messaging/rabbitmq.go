package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	ExchangeName = "intake.events"
	ExchangeType = "topic"
)

// Publisher publishes intake events to RabbitMQ.
// A nil *Publisher drops events, which is how a disabled broker looks.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *zap.Logger
}

// NewPublisher dials the broker and declares the topic exchange
func NewPublisher(rabbitmqURL string, log *zap.Logger) (*Publisher, error) {
	log.Info("connecting to RabbitMQ", zap.String("url", maskPassword(rabbitmqURL)))

	conn, err := amqp.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		ExchangeName, // name
		ExchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: ExchangeName,
		log:      log,
	}, nil
}

// Publish sends event as JSON with the given routing key
func (p *Publisher) Publish(ctx context.Context, routingKey string, event interface{}) error {
	if p == nil || p.channel == nil {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	messageID := ""
	if base, ok := event.(interface{ ID() string }); ok {
		messageID = base.ID()
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			MessageId:    messageID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", routingKey, err)
	}

	p.log.Debug("published event", zap.String("routing_key", routingKey))
	return nil
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Warn("error closing RabbitMQ channel", zap.Error(err))
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "amqp://***"
	}
	return u.Redacted()
}
