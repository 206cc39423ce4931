package reimbursement

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/core/common/validation"
	reimbursementDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/reimbursement"
	"github.com/frahmantamala/salary-advance/internal/transport"
	"github.com/frahmantamala/salary-advance/pkg/logger"
)

type ServiceAPI interface {
	CreateManual(ctx context.Context, req CreateRequest) (*Reimbursement, error)
	Get(ctx context.Context, id string) (*View, error)
	List(ctx context.Context, filter Filter) ([]View, error)
	RecordRepayment(ctx context.Context, id string, req RepaymentRequest) (*Reimbursement, error)
	Cancel(ctx context.Context, id string, req CancelRequest) (*Reimbursement, error)
	PayAllForPartner(ctx context.Context, partnerID string, req PayAllRequest) (*BulkResult, error)
	Summary(ctx context.Context, partnerID string) (*Summary, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Create handles POST /reimbursements
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleError(w, r, err)
		return
	}

	rec, err := h.Service.CreateManual(r.Context(), req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, transport.Envelope{"reimbursement": rec})
}

// List handles GET /reimbursements and GET /partners/{partnerID}/reimbursements
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		PartnerID: q.Get("partner_id"),
		Status:    q.Get("status"),
	}
	if partnerID := chi.URLParam(r, "partnerID"); partnerID != "" {
		filter.PartnerID = partnerID
	}

	v := validation.NewValidator()
	v.Field("status", filter.Status).OneOf(internal.ErrCodeInvalidStatus,
		reimbursementDatamodel.StatusPending,
		reimbursementDatamodel.StatusPaid,
		reimbursementDatamodel.StatusOverdue,
		reimbursementDatamodel.StatusCancelled)
	if err := v.Validate(); err != nil {
		h.HandleError(w, r, err)
		return
	}

	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		filter.Offset = n
	}

	views, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"reimbursements": views, "count": len(views)})
}

// Get handles GET /reimbursements/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"reimbursement": view})
}

// Pay handles POST /reimbursements/{id}/pay
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	var req RepaymentRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleError(w, r, err)
		return
	}

	rec, err := h.Service.RecordRepayment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"reimbursement": rec})
}

// Cancel handles POST /reimbursements/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleError(w, r, err)
		return
	}

	rec, err := h.Service.Cancel(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"reimbursement": rec})
}

// PayAll handles POST /partners/{partnerID}/reimbursements/pay-all
func (h *Handler) PayAll(w http.ResponseWriter, r *http.Request) {
	var req PayAllRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleError(w, r, err)
		return
	}

	result, err := h.Service.PayAllForPartner(r.Context(), chi.URLParam(r, "partnerID"), req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"result": result})
}

// Summary handles GET /partners/{partnerID}/reimbursements/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context(), chi.URLParam(r, "partnerID"))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"summary": summary})
}
