package reimbursement

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

// HandlePaymentSucceeded records the reimbursement for a settled cash-out.
// A failure is logged and left for an operator to create by hand.
func (h *EventHandler) HandlePaymentSucceeded(ctx context.Context, event events.Event) error {
	paymentEvent, ok := event.(*events.PaymentEvent)
	if !ok {
		h.logger.Error("invalid event type for payment succeeded handler", "event_type", event.EventType())
		return fmt.Errorf("expected PaymentEvent, got %T", event)
	}

	r, err := h.service.CreateForTransaction(ctx, paymentEvent.TransactionID)
	if err != nil {
		h.logger.Error("failed to create reimbursement for payment",
			"transaction_id", paymentEvent.TransactionID,
			"advance_id", paymentEvent.AdvanceID,
			"error", err)
		return nil
	}

	h.logger.Info("reimbursement recorded for payment",
		"transaction_id", paymentEvent.TransactionID,
		"reimbursement_id", r.ID,
		"event_id", paymentEvent.EventID())
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypePaymentSucceeded, h.HandlePaymentSucceeded)

	h.logger.Info("reimbursement event handlers registered",
		"handlers", []string{events.EventTypePaymentSucceeded})
}
