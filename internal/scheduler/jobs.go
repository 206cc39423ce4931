package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/salary-advance/internal/payment"
)

type PaymentReconciler interface {
	ReconcilePending(ctx context.Context, filter payment.Filter) (*payment.SweepResult, error)
}

type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

// Jobs are the periodic tasks run by the worker process.
type Jobs struct {
	reconciler PaymentReconciler
	overdue    OverdueMarker
	timeout    time.Duration
	logger     *slog.Logger
}

func NewJobs(reconciler PaymentReconciler, overdue OverdueMarker, timeout time.Duration, logger *slog.Logger) *Jobs {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Jobs{
		reconciler: reconciler,
		overdue:    overdue,
		timeout:    timeout,
		logger:     logger,
	}
}

// ReconcilePayments checks every EN_ATTENTE transaction once.
func (j *Jobs) ReconcilePayments() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result, err := j.reconciler.ReconcilePending(ctx, payment.Filter{})
	if err != nil {
		j.logger.Error("payment reconciliation job failed", "error", err)
		return
	}
	j.logger.Info("payment reconciliation job finished",
		"checked", result.Checked,
		"settled", result.Settled,
		"failures", result.Failures)
}

func (j *Jobs) MarkOverdueReimbursements() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.overdue.MarkOverdue(ctx)
	if err != nil {
		j.logger.Error("overdue reimbursement job failed", "error", err)
		return
	}
	j.logger.Info("overdue reimbursement job finished", "marked", n)
}
