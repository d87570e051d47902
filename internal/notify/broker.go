package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

//go:generate mockery --name Publisher --filename publisher.go

// Publisher publishes messages to routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message []byte) error
}

// AlertEvent is message published for every alert.
type AlertEvent struct {
	Message string    `json:"message"`
	Region  string    `json:"region"`
	Link    string    `json:"link,omitempty"`
	SentAt  time.Time `json:"sentAt"`
}

// Broker publishes alerts as JSON events to message broker.
type Broker struct {
	publisher  Publisher
	routingKey string
	region     func() string
	pageURL    string
}

// NewBroker returns new Broker.
func NewBroker(publisher Publisher, routingKey string, region func() string, pageURL string) *Broker {
	return &Broker{
		publisher:  publisher,
		routingKey: routingKey,
		region:     region,
		pageURL:    pageURL,
	}
}

// Notify publishes alert event with message.
func (b *Broker) Notify(ctx context.Context, message string) error {
	event, err := json.Marshal(AlertEvent{
		Message: message,
		Region:  b.region(),
		Link:    b.pageURL,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("can't marshal alert event: %w", err)
	}

	if err := b.publisher.Publish(ctx, b.routingKey, event); err != nil {
		return fmt.Errorf("can't publish alert event: %w", err)
	}

	return nil
}

// Name returns channel name.
func (b *Broker) Name() string {
	return "broker"
}
