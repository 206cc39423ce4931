// Package notification turns advance and payment events into SMS, email and
// in-app messages for employees and back-office staff.
package notification

import (
	"context"
	"time"

	advanceDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/advance"
	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/salary-advance/internal/employee"
	"github.com/frahmantamala/salary-advance/internal/user"
)

type Kind string

const (
	KindRequestReceived Kind = "request_received"
	KindApproved        Kind = "approved"
	KindRejected        Kind = "rejected"
	KindPaymentSuccess  Kind = "payment_success"
	KindPaymentFailure  Kind = "payment_failure"
)

var Kinds = []Kind{KindRequestReceived, KindApproved, KindRejected, KindPaymentSuccess, KindPaymentFailure}

func ParseKind(raw string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == raw {
			return k, true
		}
	}
	return "", false
}

// TargetsTransaction reports whether EntityID is a transaction id rather than
// an advance request id.
func (k Kind) TargetsTransaction() bool {
	return k == KindPaymentSuccess || k == KindPaymentFailure
}

type Event struct {
	Kind       Kind
	EntityID   string
	Reason     string
	OccurredAt time.Time
}

// Result aggregates one dispatch. Success is true when at least one employee
// channel delivered. Admin SMS and inbox outcomes never affect it.
type Result struct {
	Kind           Kind     `json:"kind"`
	Success        bool     `json:"success"`
	SMSSent        bool     `json:"sms_sent"`
	SMSError       string   `json:"sms_error,omitempty"`
	EmailSent      bool     `json:"email_sent"`
	EmailError     string   `json:"email_error,omitempty"`
	AdminsNotified int      `json:"admins_notified"`
	AdminFailures  []string `json:"admin_failures,omitempty"`
	InboxRecorded  bool     `json:"inbox_recorded"`
	InboxError     string   `json:"inbox_error,omitempty"`
}

type AdvanceReader interface {
	GetByID(ctx context.Context, id string) (*advanceDatamodel.AdvanceRequest, error)
}

type TransactionReader interface {
	GetByID(ctx context.Context, id string) (*transactionDatamodel.Transaction, error)
}

type EmployeeReader interface {
	GetByID(ctx context.Context, id string) (*employee.Employee, error)
	GetPartner(ctx context.Context, id string) (*employee.Partner, error)
}

type StaffDirectory interface {
	StaffContacts(ctx context.Context) ([]*user.User, error)
}
