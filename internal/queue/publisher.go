// Package queue publishes domain events to RabbitMQ and consumes them for the
// audit worker.
package queue

import "context"

// Publisher sends an event under a routing key. Implementations must be safe
// for concurrent use by request handlers.
type Publisher interface {
	Publish(ctx context.Context, key string, event any, reqID string) error
	Close() error
}

type NoopPub struct{}

func NewNoop() Publisher { return NoopPub{} }

func (NoopPub) Publish(context.Context, string, any, string) error { return nil }
func (NoopPub) Close() error                                       { return nil }
