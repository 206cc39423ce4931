package advance

import (
	"context"
	"time"

	advanceDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/advance"
	"github.com/frahmantamala/salary-advance/internal/notification"
)

type AdvanceRequest = advanceDatamodel.AdvanceRequest

type Filter struct {
	Status     string
	EmployeeID string
	PartnerID  string
	Limit      int
	Offset     int
}

type RepositoryAPI interface {
	Create(ctx context.Context, a *AdvanceRequest) error
	GetByID(ctx context.Context, id string) (*AdvanceRequest, error)
	List(ctx context.Context, filter Filter) ([]*AdvanceRequest, error)
	// TransitionStatus moves the row from one status to another and reports
	// whether this call performed the change.
	TransitionStatus(ctx context.Context, id, from, to string, processedAt *time.Time, comment *string) (bool, error)
}

// Notifier is implemented by notification.Dispatcher.
type Notifier interface {
	RequestReceived(ctx context.Context, advanceID string) (*notification.Result, error)
	Approved(ctx context.Context, advanceID string) (*notification.Result, error)
	Rejected(ctx context.Context, advanceID, reason string) (*notification.Result, error)
}

// Decision is a committed state change plus the outcome of the notification
// it triggered. A failed notification never undoes the change.
type Decision struct {
	Advance           *AdvanceRequest      `json:"advance"`
	Notification      *notification.Result `json:"notification,omitempty"`
	NotificationError string               `json:"notification_error,omitempty"`
}
