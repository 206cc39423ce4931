package payment_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/frahmantamala/salary-advance/internal"
	advanceDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/advance"
	"github.com/frahmantamala/salary-advance/internal/core/datamodel/mobilemoney"
	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
	mobilemoneyClient "github.com/frahmantamala/salary-advance/internal/mobilemoney"
	"github.com/frahmantamala/salary-advance/internal/notification"
	"github.com/frahmantamala/salary-advance/internal/payment"
)

type fakeRepo struct {
	mu   sync.Mutex
	txs  map[string]*payment.Transaction
	fail error
	// readFailures makes the next GetByID calls fail with readErr.
	readFailures int
	readErr      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{txs: make(map[string]*payment.Transaction)}
}

func (r *fakeRepo) Create(ctx context.Context, tx *payment.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	cp := *tx
	r.txs[tx.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*payment.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readFailures > 0 {
		r.readFailures--
		return nil, r.readErr
	}
	tx, ok := r.txs[id]
	if !ok {
		return nil, internal.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (r *fakeRepo) GetByPayID(ctx context.Context, payID string) (*payment.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.PayID == payID {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, internal.ErrTransactionNotFound
}

func (r *fakeRepo) List(ctx context.Context, filter payment.Filter) ([]*payment.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*payment.Transaction
	for _, tx := range r.txs {
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		if filter.AdvanceID != "" && tx.AdvanceID != filter.AdvanceID {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PayID < out[j].PayID })
	return out, nil
}

func (r *fakeRepo) LatestBlocking(ctx context.Context, advanceID string) (*payment.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.AdvanceID == advanceID && tx.Status != transactionDatamodel.StatusCancelled {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) Settle(ctx context.Context, id, status, providerStatus string, message *string, completedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok || tx.Status != transactionDatamodel.StatusPending {
		return false, nil
	}
	tx.Status = status
	tx.ProviderStatus = providerStatus
	tx.ProviderMessage = message
	tx.CompletedAt = &completedAt
	return true, nil
}

func (r *fakeRepo) put(tx *payment.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs[tx.ID] = tx
}

func (r *fakeRepo) status(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.txs[id].Status
}

type fakeAdvances map[string]*advanceDatamodel.AdvanceRequest

func (f fakeAdvances) GetByID(ctx context.Context, id string) (*advanceDatamodel.AdvanceRequest, error) {
	if a, ok := f[id]; ok {
		return a, nil
	}
	return nil, internal.ErrAdvanceNotFound
}

// fakeProvider answers status checks from a script; the last entry repeats.
type fakeProvider struct {
	mu          sync.Mutex
	cashOuts    []mobilemoney.CashOutRequest
	cashOutErr  error
	payID       string
	statuses    []string
	statusErr   error
	message     string
	statusCalls int
}

func (p *fakeProvider) CashOut(ctx context.Context, req *mobilemoney.CashOutRequest) (*mobilemoney.CashOutResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cashOuts = append(p.cashOuts, *req)
	if p.cashOutErr != nil {
		return nil, p.cashOutErr
	}
	return &mobilemoney.CashOutResponse{Success: true, PayID: p.payID}, nil
}

func (p *fakeProvider) Status(ctx context.Context, payID string) (*mobilemoney.StatusResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusCalls++
	if p.statusErr != nil {
		return nil, p.statusErr
	}
	i := p.statusCalls - 1
	if i >= len(p.statuses) {
		i = len(p.statuses) - 1
	}
	return &mobilemoney.StatusResponse{LengoStatus: p.statuses[i], DBStatus: "pending", Message: p.message}, nil
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusCalls
}

type fakeNotifier struct {
	mu        sync.Mutex
	succeeded []string
	failed    []string
	reasons   []string
}

func (n *fakeNotifier) PaymentSucceeded(ctx context.Context, transactionID string) (*notification.Result, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.succeeded = append(n.succeeded, transactionID)
	return &notification.Result{Kind: notification.KindPaymentSuccess, Success: true, SMSSent: true}, nil
}

func (n *fakeNotifier) PaymentFailed(ctx context.Context, transactionID, reason string) (*notification.Result, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, transactionID)
	n.reasons = append(n.reasons, reason)
	return &notification.Result{Kind: notification.KindPaymentFailure, Success: true, SMSSent: true}, nil
}

func (n *fakeNotifier) successCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.succeeded)
}

var errGatewayDown = errors.New("dial tcp: connection refused")

func providerRejection(msg string) error {
	return &mobilemoneyClient.ProviderError{StatusCode: 400, Message: msg}
}
