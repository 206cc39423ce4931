package events

import (
	"context"
	"log/slog"
)

// Publisher is satisfied by pkg/rabbitmq.EventProducer.
type Publisher interface {
	Publish(ctx context.Context, routingKey, messageID string, body interface{}) error
}

// Forwarder republishes bus events to the message broker so other services
// can react to advance and payment state changes.
type Forwarder struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewForwarder(publisher Publisher, logger *slog.Logger) *Forwarder {
	return &Forwarder{publisher: publisher, logger: logger}
}

// Register subscribes the forwarder to every event type. Register it after
// the domain handlers.
func (f *Forwarder) Register(bus *EventBus) {
	for _, eventType := range AllEventTypes {
		bus.Subscribe(eventType, f.Handle)
	}
}

// Handle never fails the publishing flow; broker outages are logged.
func (f *Forwarder) Handle(ctx context.Context, event Event) error {
	if err := f.publisher.Publish(ctx, event.EventType(), event.EventID(), event); err != nil {
		f.logger.Error("failed to forward event to broker",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"error", err)
		return nil
	}
	return nil
}
