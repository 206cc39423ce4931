package scheduler_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/salary-advance/internal/payment"
	"github.com/frahmantamala/salary-advance/internal/scheduler"
)

type countingReconciler struct {
	calls atomic.Int32
	err   error
}

func (c *countingReconciler) ReconcilePending(ctx context.Context, filter payment.Filter) (*payment.SweepResult, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a deadline")
	}
	return &payment.SweepResult{Checked: 2, Settled: 1}, c.err
}

type countingOverdue struct {
	calls atomic.Int32
}

func (c *countingOverdue) MarkOverdue(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	return 3, nil
}

var _ = Describe("Scheduler", func() {
	var (
		reconciler *countingReconciler
		overdue    *countingOverdue
		jobs       *scheduler.Jobs
		logger     *slog.Logger
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		reconciler = &countingReconciler{}
		overdue = &countingOverdue{}
		jobs = scheduler.NewJobs(reconciler, overdue, 0, logger)
	})

	It("runs both jobs on their schedules", func() {
		s := scheduler.NewScheduler(jobs, logger, scheduler.Config{
			ReconcileSchedule: "@every 1s",
			OverdueSchedule:   "@every 1s",
		})
		Expect(s.Start()).To(Succeed())
		defer s.Stop()

		Expect(s.Entries()).To(Equal(2))
		Eventually(reconciler.calls.Load, "3s").Should(BeNumerically(">=", 1))
		Eventually(overdue.calls.Load, "3s").Should(BeNumerically(">=", 1))
	})

	It("skips jobs without a schedule", func() {
		s := scheduler.NewScheduler(jobs, logger, scheduler.Config{OverdueSchedule: "@daily"})
		Expect(s.Start()).To(Succeed())
		defer s.Stop()
		Expect(s.Entries()).To(Equal(1))
	})

	It("rejects invalid schedules", func() {
		s := scheduler.NewScheduler(jobs, logger, scheduler.Config{ReconcileSchedule: "every minute"})
		Expect(s.Start()).To(MatchError(ContainSubstring("payment reconciliation")))
	})

	It("runs jobs with a deadline and survives errors", func() {
		reconciler.err = errors.New("database unavailable")
		Expect(jobs.ReconcilePayments).NotTo(Panic())
		Expect(reconciler.calls.Load()).To(Equal(int32(1)))

		jobs.MarkOverdueReimbursements()
		Expect(overdue.calls.Load()).To(Equal(int32(1)))
	})
})
