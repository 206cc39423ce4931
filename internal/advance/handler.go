package advance

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/core/common/validation"
	advanceDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/advance"
	"github.com/frahmantamala/salary-advance/internal/transport"
	"github.com/frahmantamala/salary-advance/pkg/logger"
)

type ServiceAPI interface {
	Submit(ctx context.Context, req SubmitRequest) (*Decision, error)
	Get(ctx context.Context, id string) (*AdvanceRequest, error)
	List(ctx context.Context, filter Filter) ([]*AdvanceRequest, error)
	Approve(ctx context.Context, id string) (*Decision, error)
	Reject(ctx context.Context, id, reason string) (*Decision, error)
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

// Submit handles POST /advances
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleError(w, r, err)
		return
	}

	decision, err := h.Service.Submit(r.Context(), req)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, decisionEnvelope(decision))
}

// List handles GET /advances?status=PENDING&partner_id=...&employee_id=...
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		Status:     q.Get("status"),
		EmployeeID: q.Get("employee_id"),
		PartnerID:  q.Get("partner_id"),
	}

	v := validation.NewValidator()
	v.Field("status", filter.Status).OneOf(internal.ErrCodeInvalidStatus,
		advanceDatamodel.StatusPending,
		advanceDatamodel.StatusApproved,
		advanceDatamodel.StatusRejected,
		advanceDatamodel.StatusPaid)
	if err := v.Validate(); err != nil {
		h.HandleError(w, r, err)
		return
	}

	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = n
	}

	advances, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"advances": advances, "count": len(advances)})
}

// Get handles GET /advances/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	adv, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"advance": adv})
}

// Approve handles POST /advances/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	decision, err := h.Service.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, decisionEnvelope(decision))
}

// Reject handles POST /advances/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleError(w, r, err)
		return
	}

	decision, err := h.Service.Reject(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, decisionEnvelope(decision))
}

func decisionEnvelope(d *Decision) transport.Envelope {
	env := transport.Envelope{"advance": d.Advance}
	if d.Notification != nil {
		env["notification"] = d.Notification
	}
	if d.NotificationError != "" {
		env["notification_error"] = d.NotificationError
	}
	return env
}
