package queue

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Message headers used by the pipeline.
const (
	HeaderStage    = "x-stage"
	HeaderAttempts = "x-attempts"
)

// Publisher is the narrow interface stages use to hand work to a queue;
// delayed publishes back a retry decision.
type Publisher interface {
	Publish(ctx context.Context, queueName string, body []byte, headers amqp.Table) error
	PublishDelayed(ctx context.Context, queueName string, body []byte, headers amqp.Table, delay time.Duration) error
}

// RabbitMQ wraps one connection and channel.
type RabbitMQ struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a RabbitMQ channel: %w", err)
	}

	return &RabbitMQ{
		Conn:    conn,
		Channel: channel,
	}, nil
}

// DeclareQueue declares a durable queue with the given consumer (visibility)
// timeout: an unacknowledged delivery is returned to the queue once the
// timeout elapses, so a crashed worker's task is redelivered elsewhere.
func (r *RabbitMQ) DeclareQueue(name string, visibilityTimeout time.Duration) error {
	args := amqp.Table{}
	if visibilityTimeout > 0 {
		args["x-consumer-timeout"] = visibilityTimeout.Milliseconds()
	}
	_, err := r.Channel.QueueDeclare(name, true, false, false, false, args)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

func (r *RabbitMQ) Publish(ctx context.Context, queueName string, body []byte, headers amqp.Table) error {
	err := r.Channel.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		Headers:      headers,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message to %s: %w", queueName, err)
	}
	return nil
}

// PublishDelayed republishes after the given delay. The broker has no native
// per-message delay; a timer goroutine keeps the worker free in the meantime.
func (r *RabbitMQ) PublishDelayed(_ context.Context, queueName string, body []byte, headers amqp.Table, delay time.Duration) error {
	if delay <= 0 {
		return r.Publish(context.Background(), queueName, body, headers)
	}
	time.AfterFunc(delay, func() {
		// Detached from the caller's context: the original delivery is
		// already acked by the time the timer fires.
		_ = r.Publish(context.Background(), queueName, body, headers)
	})
	return nil
}

// Consume starts delivering from the named queue with manual acknowledgment;
// prefetch bounds how many unacked deliveries one worker holds.
func (r *RabbitMQ) Consume(queueName string, prefetch int) (<-chan amqp.Delivery, error) {
	if prefetch > 0 {
		if err := r.Channel.Qos(prefetch, 0, false); err != nil {
			return nil, fmt.Errorf("failed to set QoS: %w", err)
		}
	}
	delivery, err := r.Channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to consume from %s queue: %w", queueName, err)
	}
	return delivery, nil
}

func (r *RabbitMQ) Close() error {
	if r.Channel != nil {
		_ = r.Channel.Close()
	}
	if r.Conn != nil {
		return r.Conn.Close()
	}
	return nil
}
