package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrDrop marks a message that can never be handled; it is nacked without requeue.
var ErrDrop = errors.New("drop message")

// ErrDeliveriesClosed is returned by Consume when the broker closes the
// delivery channel while the caller still wants messages.
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// Message is the part of a delivery handlers care about.
type Message struct {
	Key       string
	Body      []byte
	MessageID string
	RequestID string
}

type HandlerFunc func(ctx context.Context, m Message) error

type Consumer struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	q    string
}

// NewConsumer makes sure the exchange and queue exist and are bound with key.
func NewConsumer(url, exchange, queue, key string) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbit: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	fail := func(step string, err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}
	qd, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fail("declare queue", err)
	}
	if err := ch.QueueBind(qd.Name, key, exchange, false, nil); err != nil {
		return fail("bind queue", err)
	}
	return &Consumer{conn: conn, ch: ch, q: qd.Name}, nil
}

func (c *Consumer) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Consume runs workers until ctx is cancelled or the delivery channel closes.
// Cancellation returns nil; a closed channel returns ErrDeliveriesClosed.
func (c *Consumer) Consume(ctx context.Context, workers int, handle HandlerFunc) error {
	if c == nil || c.ch == nil {
		return errors.New("consumer is not initialized")
	}
	if err := c.ch.Qos(50, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}
	msgs, err := c.ch.Consume(c.q, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	return runWorkers(ctx, workers, msgs, handle)
}

func runWorkers(ctx context.Context, workers int, msgs <-chan amqp.Delivery, handle HandlerFunc) error {
	if workers <= 0 {
		workers = 1
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case d, ok := <-msgs:
					if !ok {
						return
					}
					settle(d, handle(ctx, toMessage(d)))
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	wg.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return ErrDeliveriesClosed
}

func toMessage(d amqp.Delivery) Message {
	m := Message{Key: d.RoutingKey, Body: d.Body, MessageID: d.MessageId}
	if v, ok := d.Headers[HeaderRequestID].(string); ok {
		m.RequestID = v
	}
	return m
}

func settle(d amqp.Delivery, err error) {
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrDrop):
		_ = d.Nack(false, false)
	default:
		_ = d.Nack(false, true)
	}
}
