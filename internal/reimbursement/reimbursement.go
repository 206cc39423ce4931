package reimbursement

import (
	"context"
	"time"

	advanceDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/advance"
	reimbursementDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/reimbursement"
	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
)

type Reimbursement = reimbursementDatamodel.Reimbursement

type Filter = reimbursementDatamodel.Filter

type Summary = reimbursementDatamodel.Summary

// Changes are the optional columns written alongside a status change.
type Changes struct {
	Method       *string
	PaidAt       *time.Time
	CancelReason *string
}

type RepositoryAPI interface {
	Create(ctx context.Context, r *Reimbursement) error
	GetByID(ctx context.Context, id string) (*Reimbursement, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*Reimbursement, error)
	List(ctx context.Context, filter Filter) ([]*Reimbursement, error)
	ListUnpaid(ctx context.Context, partnerID string) ([]*Reimbursement, error)
	// TransitionStatus changes the status only while the row is in one of
	// from, and reports whether this call performed the change.
	TransitionStatus(ctx context.Context, id string, from []string, to string, changes Changes) (bool, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type SummaryReader interface {
	Summary(ctx context.Context, partnerID string) (*Summary, error)
}

type TransactionReader interface {
	GetByID(ctx context.Context, id string) (*transactionDatamodel.Transaction, error)
}

type AdvanceReader interface {
	GetByID(ctx context.Context, id string) (*advanceDatamodel.AdvanceRequest, error)
}

// View adds the derived lateness to a stored record.
type View struct {
	*Reimbursement
	DaysLate int `json:"days_late"`
}

func ToView(r *Reimbursement, now time.Time) View {
	return View{Reimbursement: r, DaysLate: r.DaysLate(now)}
}

type BulkFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkResult reports a per-row batch. Rows are settled independently, so a
// failure leaves earlier successes in place.
type BulkResult struct {
	Updated      int           `json:"updated"`
	SucceededIDs []string      `json:"succeeded_ids"`
	Failed       []BulkFailure `json:"failed,omitempty"`
	Warning      string        `json:"warning,omitempty"`
}
