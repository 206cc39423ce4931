package payment

import (
	"context"
	"time"

	advanceDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/advance"
	"github.com/frahmantamala/salary-advance/internal/core/datamodel/mobilemoney"
	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/salary-advance/internal/notification"
)

type Transaction = transactionDatamodel.Transaction

type Filter = transactionDatamodel.Filter

type RepositoryAPI interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id string) (*Transaction, error)
	GetByPayID(ctx context.Context, payID string) (*Transaction, error)
	List(ctx context.Context, filter Filter) ([]*Transaction, error)
	// LatestBlocking returns the newest EN_ATTENTE or EFFECTUEE transaction
	// for the advance, or nil when there is none.
	LatestBlocking(ctx context.Context, advanceID string) (*Transaction, error)
	// Settle moves an EN_ATTENTE row to a terminal status and reports whether
	// this call performed the change.
	Settle(ctx context.Context, id, status, providerStatus string, message *string, completedAt time.Time) (bool, error)
}

// Provider is implemented by mobilemoney.Client.
type Provider interface {
	CashOut(ctx context.Context, req *mobilemoney.CashOutRequest) (*mobilemoney.CashOutResponse, error)
	Status(ctx context.Context, payID string) (*mobilemoney.StatusResponse, error)
}

type AdvanceReader interface {
	GetByID(ctx context.Context, id string) (*advanceDatamodel.AdvanceRequest, error)
}

// Notifier is implemented by notification.Dispatcher.
type Notifier interface {
	PaymentSucceeded(ctx context.Context, transactionID string) (*notification.Result, error)
	PaymentFailed(ctx context.Context, transactionID, reason string) (*notification.Result, error)
}
