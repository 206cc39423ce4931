package advance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/salary-advance/internal/core/events"
)

type EventHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewEventHandler(service *Service, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

// HandlePaymentSucceeded marks the advance behind a settled cash-out as PAID.
func (h *EventHandler) HandlePaymentSucceeded(ctx context.Context, event events.Event) error {
	paymentEvent, ok := event.(*events.PaymentEvent)
	if !ok {
		h.logger.Error("invalid event type for payment succeeded handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentEvent, got %T", event)
	}

	// the payment is final either way, so later subscribers must still run
	if err := h.service.MarkPaid(ctx, paymentEvent.AdvanceID); err != nil {
		h.logger.Error("failed to mark advance paid",
			"advance_id", paymentEvent.AdvanceID,
			"transaction_id", paymentEvent.TransactionID,
			"error", err)
	}
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePaymentSucceeded, h.HandlePaymentSucceeded)

	h.logger.Info("advance event handlers registered",
		"handlers", []string{events.EventTypePaymentSucceeded})
}
