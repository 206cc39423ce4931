package payment

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/core/common/validation"
	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/salary-advance/internal/transport"
	"github.com/frahmantamala/salary-advance/pkg/logger"
)

type InitiatorAPI interface {
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
}

type ReconcilerAPI interface {
	Check(ctx context.Context, payID string) (*Resolution, error)
	Poll(ctx context.Context, payID string) (*Resolution, error)
	ReconcilePending(ctx context.Context, filter Filter) (*SweepResult, error)
}

type TransactionLister interface {
	List(ctx context.Context, filter Filter) ([]*Transaction, error)
}

type Handler struct {
	*transport.BaseHandler
	Initiator    InitiatorAPI
	Reconciler   ReconcilerAPI
	Transactions TransactionLister
}

func NewHandler(initiator InitiatorAPI, reconciler ReconcilerAPI, transactions TransactionLister) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler:  transport.NewBaseHandler(lg),
		Initiator:    initiator,
		Reconciler:   reconciler,
		Transactions: transactions,
	}
}

// CashOut handles POST /payments/cashout
func (h *Handler) CashOut(w http.ResponseWriter, r *http.Request) {
	var req InitiateRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleError(w, r, err)
		return
	}

	result, err := h.Initiator.Initiate(r.Context(), req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, transport.Envelope{
		"pay_id":      result.PayID,
		"transaction": result.Transaction,
	})
}

// Status handles GET /payments/{payID}/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	res, err := h.Reconciler.Check(r.Context(), chi.URLParam(r, "payID"))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, resolutionEnvelope(res))
}

// Poll handles POST /payments/{payID}/poll. The request blocks until the
// payment settles or the attempt ceiling is reached (504).
func (h *Handler) Poll(w http.ResponseWriter, r *http.Request) {
	res, err := h.Reconciler.Poll(r.Context(), chi.URLParam(r, "payID"))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, resolutionEnvelope(res))
}

// ListTransactions handles GET /transactions. With check_status=true the
// pending rows matching the filter are reconciled before listing.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		Status:    q.Get("status"),
		PartnerID: q.Get("partner_id"),
		AdvanceID: q.Get("advance_id"),
	}

	v := validation.NewValidator()
	v.Field("status", filter.Status).OneOf(internal.ErrCodeInvalidStatus,
		transactionDatamodel.StatusPending,
		transactionDatamodel.StatusSucceeded,
		transactionDatamodel.StatusCancelled)
	if err := v.Validate(); err != nil {
		h.HandleError(w, r, err)
		return
	}

	filter.Limit = 50
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 && n <= 500 {
		filter.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		filter.Offset = n
	}

	payload := transport.Envelope{}
	if q.Get("check_status") == "true" {
		sweep, err := h.Reconciler.ReconcilePending(r.Context(), Filter{PartnerID: filter.PartnerID, AdvanceID: filter.AdvanceID})
		if err != nil {
			h.HandleError(w, r, err)
			return
		}
		payload["reconciliation"] = sweep
	}

	txs, err := h.Transactions.List(r.Context(), filter)
	if err != nil {
		h.HandleError(w, r, internal.NewInternalError("failed to list transactions", err))
		return
	}

	payload["transactions"] = txs
	payload["count"] = len(txs)
	h.WriteSuccess(w, http.StatusOK, payload)
}

func resolutionEnvelope(res *Resolution) transport.Envelope {
	return transport.Envelope{
		"pay_id":             res.Transaction.PayID,
		"status":             res.Transaction.Status,
		"provider_status":    res.ProviderStatus,
		"transaction":        res.Transaction,
		"applied":            res.Applied,
		"attempts":           res.Attempts,
		"notification":       res.Notification,
		"notification_error": res.NotificationError,
	}
}
