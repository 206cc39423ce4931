package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/salary-advance/internal/core/events"
)

// EventHandler replays notifications from bus events. The API server
// dispatches inline, so only the operator CLI registers it.
type EventHandler struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
}

func NewEventHandler(dispatcher *Dispatcher, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

var kindByEventType = map[string]Kind{
	events.EventTypeAdvanceRequestReceived: KindRequestReceived,
	events.EventTypeAdvanceApproved:        KindApproved,
	events.EventTypeAdvanceRejected:        KindRejected,
	events.EventTypePaymentSucceeded:       KindPaymentSuccess,
	events.EventTypePaymentFailed:          KindPaymentFailure,
}

// EventTypeFor is the bus event type carrying kind.
func EventTypeFor(kind Kind) string {
	for eventType, k := range kindByEventType {
		if k == kind {
			return eventType
		}
	}
	return ""
}

func (h *EventHandler) Handle(ctx context.Context, event events.Event) error {
	kind, ok := kindByEventType[event.EventType()]
	if !ok {
		return fmt.Errorf("no notification for event type %s", event.EventType())
	}

	var evt Event
	switch e := event.(type) {
	case *events.AdvanceEvent:
		evt = Event{Kind: kind, EntityID: e.AdvanceID, Reason: e.Reason, OccurredAt: e.OccurredAt()}
	case *events.PaymentEvent:
		evt = Event{Kind: kind, EntityID: e.TransactionID, Reason: e.FailureReason, OccurredAt: e.OccurredAt()}
	default:
		h.logger.Error("invalid event type for notification handler", "event_type", event.EventType())
		return fmt.Errorf("unexpected event %T", event)
	}

	result, err := h.dispatcher.Dispatch(ctx, evt)
	if err != nil {
		return fmt.Errorf("dispatch %s for %s: %w", kind, evt.EntityID, err)
	}

	h.logger.Info("notification replayed",
		"kind", kind,
		"entity_id", evt.EntityID,
		"success", result.Success,
		"sms_sent", result.SMSSent,
		"email_sent", result.EmailSent)
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	for eventType := range kindByEventType {
		eventBus.Subscribe(eventType, h.Handle)
	}
}
