package payment_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/core/datamodel/mobilemoney"
	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/salary-advance/internal/core/events"
	"github.com/frahmantamala/salary-advance/internal/payment"
)

var _ = Describe("Reconciler", func() {
	var (
		repo       *fakeRepo
		provider   *fakeProvider
		notifier   *fakeNotifier
		bus        *events.EventBus
		reconciler *payment.Reconciler
		waits      []time.Duration
		published  []events.Event
		pubMu      sync.Mutex
		ctx        context.Context
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newFakeRepo()
		provider = &fakeProvider{statuses: []string{"PENDING"}}
		notifier = &fakeNotifier{}
		waits = nil
		published = nil
		bus = events.NewEventBus(logger)
		record := func(ctx context.Context, evt events.Event) error {
			pubMu.Lock()
			defer pubMu.Unlock()
			published = append(published, evt)
			return nil
		}
		bus.Subscribe(events.EventTypePaymentSucceeded, record)

		reconciler = payment.NewReconciler(repo, provider, notifier, bus, payment.ReconcilerConfig{
			MaxAttempts: 10,
			Interval:    2 * time.Second,
			Wait: func(ctx context.Context, d time.Duration) error {
				waits = append(waits, d)
				return nil
			},
		}, logger)
		ctx = context.Background()

		repo.put(&payment.Transaction{
			ID:        "tx-1",
			PayID:     "LP-1001",
			AdvanceID: "adv-1",
			PartnerID: "partner-1",
			Amount:    935_000,
			Method:    transactionDatamodel.MethodOrangeMoney,
			Status:    transactionDatamodel.StatusPending,
		})
	})

	Describe("Poll", func() {
		It("stops at the attempt ceiling without touching the transaction", func() {
			_, err := reconciler.Poll(ctx, "LP-1001")

			Expect(err).To(MatchError(internal.ErrPaymentUnresolved))
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.StatusCode).To(Equal(504))
			Expect(provider.calls()).To(Equal(10))
			Expect(waits).To(HaveLen(9))
			Expect(waits[0]).To(Equal(2 * time.Second))
			Expect(repo.status("tx-1")).To(Equal(transactionDatamodel.StatusPending))
			Expect(notifier.succeeded).To(BeEmpty())
			Expect(notifier.failed).To(BeEmpty())
		})

		It("treats unknown statuses as transient", func() {
			provider.statuses = []string{"INITIATED", "success", "PROCESSING", "SUCCESS"}
			res, err := reconciler.Poll(ctx, "LP-1001")

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Attempts).To(Equal(4))
			Expect(res.Applied).To(BeTrue())
			Expect(res.Transaction.Status).To(Equal(transactionDatamodel.StatusSucceeded))
			Expect(res.Transaction.CompletedAt).NotTo(BeNil())
		})

		It("keeps polling through provider outages", func() {
			provider.statusErr = errGatewayDown
			_, err := reconciler.Poll(ctx, "LP-1001")
			Expect(err).To(MatchError(internal.ErrPaymentUnresolved))
			Expect(provider.calls()).To(Equal(10))
		})

		It("marks failed payments cancelled and notifies the failure", func() {
			provider.statuses = []string{"PENDING", "FAILED"}
			res, err := reconciler.Poll(ctx, "LP-1001")

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Transaction.Status).To(Equal(transactionDatamodel.StatusCancelled))
			Expect(res.ProviderStatus).To(Equal(mobilemoney.StatusFailed))
			Expect(notifier.failed).To(Equal([]string{"tx-1"}))
			Expect(notifier.succeeded).To(BeEmpty())
			Expect(published).To(BeEmpty())
		})

		It("returns a settled transaction without calling the provider", func() {
			provider.statuses = []string{"SUCCESS"}
			_, err := reconciler.Poll(ctx, "LP-1001")
			Expect(err).NotTo(HaveOccurred())

			res, err := reconciler.Poll(ctx, "LP-1001")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Applied).To(BeFalse())
			Expect(provider.calls()).To(Equal(1))
		})

		It("refuses overlapping polls for the same payment", func() {
			release := make(chan struct{})
			entered := make(chan struct{})
			blocking := payment.NewReconciler(repo, provider, notifier, bus, payment.ReconcilerConfig{
				MaxAttempts: 2,
				Wait: func(ctx context.Context, d time.Duration) error {
					close(entered)
					<-release
					return nil
				},
			}, slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))

			done := make(chan error, 1)
			go func() {
				defer GinkgoRecover()
				_, err := blocking.Poll(ctx, "LP-1001")
				done <- err
			}()

			Eventually(entered).Should(BeClosed())
			_, err := blocking.Poll(ctx, "LP-1001")
			Expect(err).To(MatchError(internal.ErrPollInProgress))

			close(release)
			Eventually(done).Should(Receive(MatchError(internal.ErrPaymentUnresolved)))
		})

		It("stops when the context is cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			r := payment.NewReconciler(repo, provider, notifier, bus, payment.ReconcilerConfig{MaxAttempts: 5}, slog.Default())
			cancel()
			_, err := r.Poll(cancelled, "LP-1001")
			Expect(err).To(MatchError(context.Canceled))
			Expect(repo.status("tx-1")).To(Equal(transactionDatamodel.StatusPending))
		})
	})

	Describe("exactly once settlement", func() {
		BeforeEach(func() {
			provider.statuses = []string{"SUCCESS"}
		})

		It("settles and notifies once when resolved twice", func() {
			first, err := reconciler.Check(ctx, "LP-1001")
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Applied).To(BeTrue())
			Expect(first.Notification.Success).To(BeTrue())

			second, err := reconciler.Check(ctx, "LP-1001")
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Applied).To(BeFalse())
			Expect(second.Transaction.Status).To(Equal(transactionDatamodel.StatusSucceeded))

			Expect(notifier.successCount()).To(Equal(1))
			Expect(published).To(HaveLen(1))
			evt := published[0].(*events.PaymentEvent)
			Expect(evt.TransactionID).To(Equal("tx-1"))
			Expect(evt.AdvanceID).To(Equal("adv-1"))
		})

		It("still notifies and publishes when the settled row cannot be re-read", func() {
			repo.readFailures = 1
			repo.readErr = errors.New("read timeout")

			first, err := reconciler.Check(ctx, "LP-1001")
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Applied).To(BeTrue())
			Expect(first.Transaction.Status).To(Equal(transactionDatamodel.StatusSucceeded))
			Expect(first.Transaction.ProviderStatus).To(Equal("SUCCESS"))
			Expect(first.Transaction.CompletedAt).NotTo(BeNil())
			Expect(first.Notification.Success).To(BeTrue())

			second, err := reconciler.Check(ctx, "LP-1001")
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Applied).To(BeFalse())

			Expect(repo.status("tx-1")).To(Equal(transactionDatamodel.StatusSucceeded))
			Expect(notifier.successCount()).To(Equal(1))
			Expect(published).To(HaveLen(1))
		})

		It("lets only one of many concurrent resolvers win", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					defer GinkgoRecover()
					var err error
					if i%2 == 0 {
						_, err = reconciler.Check(ctx, "LP-1001")
					} else {
						_, err = reconciler.HandleCallback(ctx, mobilemoney.Callback{PayID: "LP-1001", Status: "SUCCESS"})
					}
					Expect(err).NotTo(HaveOccurred())
				}(i)
			}
			wg.Wait()

			Expect(notifier.successCount()).To(Equal(1))
			Expect(published).To(HaveLen(1))
		})
	})

	Describe("HandleCallback", func() {
		It("confirms the status with the provider before settling", func() {
			provider.statuses = []string{"PENDING"}
			res, err := reconciler.HandleCallback(ctx, mobilemoney.Callback{PayID: "LP-1001", Status: "SUCCESS"})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Applied).To(BeFalse())
			Expect(repo.status("tx-1")).To(Equal(transactionDatamodel.StatusPending))
			Expect(provider.calls()).To(Equal(1))
		})

		It("ignores non terminal callbacks", func() {
			res, err := reconciler.HandleCallback(ctx, mobilemoney.Callback{PayID: "LP-1001", Status: "INITIATED"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Applied).To(BeFalse())
			Expect(provider.calls()).To(Equal(0))
		})

		It("passes the provider failure message to the notification", func() {
			provider.statuses = []string{"CANCELLED"}
			provider.message = "Numéro non enregistré"
			res, err := reconciler.HandleCallback(ctx, mobilemoney.Callback{PayID: "LP-1001", Status: "CANCELLED"})
			Expect(err).NotTo(HaveOccurred())
			Expect(notifier.failed).To(Equal([]string{"tx-1"}))
			Expect(notifier.reasons).To(Equal([]string{"Numéro non enregistré"}))
			Expect(*res.Transaction.ProviderMessage).To(Equal("Numéro non enregistré"))
		})

		It("requires a pay id", func() {
			_, err := reconciler.HandleCallback(ctx, mobilemoney.Callback{Status: "SUCCESS"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("returns not found for unknown pay ids", func() {
			_, err := reconciler.HandleCallback(ctx, mobilemoney.Callback{PayID: "nope", Status: "SUCCESS"})
			Expect(err).To(MatchError(internal.ErrTransactionNotFound))
		})
	})

	Describe("ReconcilePending", func() {
		It("checks each pending transaction once", func() {
			repo.put(&payment.Transaction{ID: "tx-2", PayID: "LP-1002", AdvanceID: "adv-2", Status: transactionDatamodel.StatusPending})
			repo.put(&payment.Transaction{ID: "tx-3", PayID: "LP-1003", AdvanceID: "adv-3", Status: transactionDatamodel.StatusCancelled})
			provider.statuses = []string{"SUCCESS", "PENDING"}

			result, err := reconciler.ReconcilePending(ctx, payment.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Checked).To(Equal(2))
			Expect(result.Settled).To(Equal(1))
			Expect(result.Failures).To(Equal(0))
			Expect(provider.calls()).To(Equal(2))
		})

		It("counts provider failures without stopping", func() {
			provider.statusErr = errGatewayDown
			result, err := reconciler.ReconcilePending(ctx, payment.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Failures).To(Equal(1))
		})
	})
})
