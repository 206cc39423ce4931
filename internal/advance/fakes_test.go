package advance_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/advance"
	"github.com/frahmantamala/salary-advance/internal/employee"
	"github.com/frahmantamala/salary-advance/internal/notification"
)

type fakeRepo struct {
	mu        sync.Mutex
	advances  map[string]*advance.AdvanceRequest
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{advances: make(map[string]*advance.AdvanceRequest)}
}

func (r *fakeRepo) Create(ctx context.Context, a *advance.AdvanceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	cp := *a
	r.advances[a.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*advance.AdvanceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.advances[id]
	if !ok {
		return nil, internal.ErrAdvanceNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) List(ctx context.Context, filter advance.Filter) ([]*advance.AdvanceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*advance.AdvanceRequest
	for _, a := range r.advances {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRepo) TransitionStatus(ctx context.Context, id, from, to string, processedAt *time.Time, comment *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.advances[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	if processedAt != nil {
		a.ProcessedAt = processedAt
	}
	if comment != nil {
		a.RejectionComment = comment
	}
	return true, nil
}

type fakeEmployees map[string]*employee.Employee

func (f fakeEmployees) GetByID(ctx context.Context, id string) (*employee.Employee, error) {
	if e, ok := f[id]; ok {
		return e, nil
	}
	return nil, internal.ErrEmployeeNotFound
}

type fakeNotifier struct {
	calls []string
	fail  bool
}

func (n *fakeNotifier) record(kind string) (*notification.Result, error) {
	n.calls = append(n.calls, kind)
	if n.fail {
		return nil, errors.New("sms gateway unreachable")
	}
	return &notification.Result{Kind: notification.Kind(kind), Success: true, SMSSent: true}, nil
}

func (n *fakeNotifier) RequestReceived(ctx context.Context, advanceID string) (*notification.Result, error) {
	return n.record(string(notification.KindRequestReceived))
}

func (n *fakeNotifier) Approved(ctx context.Context, advanceID string) (*notification.Result, error) {
	return n.record(string(notification.KindApproved))
}

func (n *fakeNotifier) Rejected(ctx context.Context, advanceID, reason string) (*notification.Result, error) {
	return n.record(string(notification.KindRejected))
}
