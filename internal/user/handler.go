package user

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/salary-advance/internal/transport"
	"github.com/frahmantamala/salary-advance/pkg/logger"
)

type ServiceAPI interface {
	StaffContacts(ctx context.Context) ([]*User, error)
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

// ListStaffContacts handles GET /staff/contacts
func (h *Handler) ListStaffContacts(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.StaffContacts(r.Context())
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, transport.Envelope{"staff": users, "count": len(users)})
}
