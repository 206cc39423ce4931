package payment

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/salary-advance/internal/core/datamodel/mobilemoney"
	"github.com/frahmantamala/salary-advance/internal/transport"
)

type CallbackHandler interface {
	HandleCallback(ctx context.Context, cb mobilemoney.Callback) (*Resolution, error)
}

type WebhookHandler struct {
	*transport.BaseHandler
	reconciler CallbackHandler
	logger     *slog.Logger
}

func NewWebhookHandler(baseHandler *transport.BaseHandler, reconciler CallbackHandler, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler: baseHandler,
		reconciler:  reconciler,
		logger:      logger,
	}
}

// HandlePaymentCallback handles POST /payments/callback from the provider.
// Errors are returned with their status so the provider retries delivery.
func (h *WebhookHandler) HandlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	var cb mobilemoney.Callback
	if err := h.DecodeJSON(r, &cb); err != nil {
		h.logger.Error("invalid payment callback body", "error", err)
		h.HandleError(w, r, err)
		return
	}

	res, err := h.reconciler.HandleCallback(r.Context(), cb)
	if err != nil {
		h.logger.Error("failed to process payment callback", "pay_id", cb.PayID, "status", cb.Status, "error", err)
		h.HandleError(w, r, err)
		return
	}

	h.logger.Info("payment callback processed",
		"pay_id", cb.PayID,
		"status", res.Transaction.Status,
		"applied", res.Applied)

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{
		"pay_id":  cb.PayID,
		"status":  res.Transaction.Status,
		"applied": res.Applied,
	})
}
