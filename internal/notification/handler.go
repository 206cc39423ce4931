package notification

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/transport"
	"github.com/frahmantamala/salary-advance/pkg/logger"
)

type DispatcherAPI interface {
	Dispatch(ctx context.Context, evt Event) (*Result, error)
}

type Handler struct {
	*transport.BaseHandler
	Dispatcher DispatcherAPI
	Inbox      Inbox
}

func NewHandler(dispatcher DispatcherAPI, inbox Inbox) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Dispatcher:  dispatcher,
		Inbox:       inbox,
	}
}

type DispatchRequest struct {
	Kind     string `json:"kind"`
	EntityID string `json:"entity_id"`
	Reason   string `json:"reason,omitempty"`
}

// Dispatch handles POST /notifications/dispatch and re-sends a notification.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleError(w, r, err)
		return
	}

	kind, ok := ParseKind(req.Kind)
	if !ok {
		h.HandleError(w, r, internal.NewValidationFieldError("kind", "unknown notification kind", internal.ErrCodeInvalidEventKind))
		return
	}
	if req.EntityID == "" {
		h.HandleError(w, r, internal.NewValidationFieldError("entity_id", "entity_id is required", internal.ErrCodeMissingIdentifier))
		return
	}

	result, err := h.Dispatcher.Dispatch(r.Context(), Event{
		Kind:       kind,
		EntityID:   req.EntityID,
		Reason:     req.Reason,
		OccurredAt: time.Now(),
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"notification": result})
}

// ListInbox handles GET /notifications/inbox?unread=true&limit=50
func (h *Handler) ListInbox(w http.ResponseWriter, r *http.Request) {
	if h.Inbox == nil {
		h.WriteSuccess(w, http.StatusOK, transport.Envelope{"notifications": []*InboxEntry{}})
		return
	}

	limit := int64(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	entries, err := h.Inbox.List(r.Context(), unreadOnly, limit)
	if err != nil {
		h.HandleError(w, r, internal.NewInternalError("failed to list notifications", err))
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"notifications": entries, "count": len(entries)})
}

// MarkRead handles POST /notifications/inbox/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if h.Inbox == nil {
		h.HandleError(w, r, internal.NewNotFoundError("Notification not found", internal.ErrCodeMissingIdentifier))
		return
	}

	if err := h.Inbox.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{})
}
