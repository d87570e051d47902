package commander

import (
	"context"
	"fmt"
)

//go:generate mockery --name RabbitMQPublisher --filename rabbitmqpublisher.go

// DefaultRoutingKey is routing key watcher binds its commands queue to by default.
const DefaultRoutingKey = "sw.cmd"

// RabbitMQPublisher is RabbitMQ messages publisher.
type RabbitMQPublisher interface {
	Publish(ctx context.Context, routingKey string, message []byte) error
}

// RabbitMQSender publishes watcher commands to RabbitMQ.
type RabbitMQSender struct {
	publisher  RabbitMQPublisher
	routingKey string
}

// NewRabbitMQSender returns new RabbitMQSender. Empty routing key means DefaultRoutingKey.
func NewRabbitMQSender(publisher RabbitMQPublisher, routingKey string) RabbitMQSender {
	if routingKey == "" {
		routingKey = DefaultRoutingKey
	}
	return RabbitMQSender{
		publisher:  publisher,
		routingKey: routingKey,
	}
}

// Send publishes command message.
func (s RabbitMQSender) Send(ctx context.Context, msg []byte) error {
	if err := s.publisher.Publish(ctx, s.routingKey, msg); err != nil {
		return fmt.Errorf("can't publish command to %q: %w", s.routingKey, err)
	}
	return nil
}
