package reimbursement_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/salary-advance/internal"
	advanceDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/advance"
	reimbursementDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/reimbursement"
	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/salary-advance/internal/core/events"
	"github.com/frahmantamala/salary-advance/internal/core/fees"
	"github.com/frahmantamala/salary-advance/internal/reimbursement"
)

var _ = Describe("Service", func() {
	var (
		repo         *fakeRepo
		transactions fakeTransactions
		advances     fakeAdvances
		service      *reimbursement.Service
		logger       *slog.Logger
		ctx          context.Context
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newFakeRepo()
		transactions = fakeTransactions{
			"tx-ok":      {ID: "tx-ok", AdvanceID: "adv-1", EmployeeID: "emp-1", PartnerID: "partner-1", Amount: 935_000, Status: transactionDatamodel.StatusSucceeded},
			"tx-pending": {ID: "tx-pending", AdvanceID: "adv-2", EmployeeID: "emp-1", PartnerID: "partner-1", Amount: 467_500, Status: transactionDatamodel.StatusPending},
		}
		advances = fakeAdvances{
			"adv-1": {ID: "adv-1", Amount: 1_000_000, Status: advanceDatamodel.StatusApproved},
			"adv-2": {ID: "adv-2", Amount: 500_000, Status: advanceDatamodel.StatusApproved},
		}
		service = reimbursement.NewService(repo, fakeSummaries{}, transactions, advances, fees.NewSchedule(fees.DefaultRate), 30, logger)
		ctx = context.Background()
	})

	Describe("CreateForTransaction", func() {
		It("stores the transaction amount, fee and total", func() {
			before := time.Now()
			rec, err := service.CreateForTransaction(ctx, "tx-ok")
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.TransactionAmount).To(Equal(int64(935_000)))
			Expect(rec.ServiceFee).To(Equal(int64(65_000)))
			Expect(rec.TotalAmount).To(Equal(rec.TransactionAmount + rec.ServiceFee))
			Expect(rec.Status).To(Equal(reimbursementDatamodel.StatusPending))
			Expect(rec.PartnerID).To(Equal("partner-1"))
			Expect(rec.DueDate).To(BeTemporally("~", before.Add(30*24*time.Hour), time.Minute))
		})

		It("is idempotent and never recomputes the total", func() {
			first, err := service.CreateForTransaction(ctx, "tx-ok")
			Expect(err).NotTo(HaveOccurred())

			pricier := reimbursement.NewService(repo, fakeSummaries{}, transactions, advances, fees.NewSchedule(decimal.RequireFromString("0.1")), 30, logger)
			second, err := pricier.CreateForTransaction(ctx, "tx-ok")
			Expect(err).NotTo(HaveOccurred())

			Expect(second.ID).To(Equal(first.ID))
			Expect(second.TotalAmount).To(Equal(first.TotalAmount))
			Expect(repo.records).To(HaveLen(1))
		})

		It("requires a settled transaction", func() {
			_, err := service.CreateForTransaction(ctx, "tx-pending")
			Expect(err).To(MatchError(internal.ErrTransactionNotSettled))
			Expect(repo.records).To(BeEmpty())
		})

		It("runs from the payment succeeded event", func() {
			bus := events.NewEventBus(logger)
			reimbursement.NewEventHandler(service, logger).RegisterEventHandlers(bus)
			evt := events.NewPaymentSucceededEvent("tx-ok", "LP-1", "adv-1", "emp-1", "partner-1", 935_000, "orange_money")
			Expect(bus.PublishSync(ctx, evt)).To(Succeed())
			Expect(repo.records).To(HaveLen(1))
		})

		It("does not break the event chain when creation fails", func() {
			bus := events.NewEventBus(logger)
			reimbursement.NewEventHandler(service, logger).RegisterEventHandlers(bus)
			evt := events.NewPaymentSucceededEvent("tx-missing", "LP-1", "adv-1", "emp-1", "partner-1", 935_000, "orange_money")
			Expect(bus.PublishSync(ctx, evt)).To(Succeed())
			Expect(repo.records).To(BeEmpty())
		})
	})

	Describe("CreateManual", func() {
		It("conflicts when a record exists", func() {
			_, err := service.CreateManual(ctx, reimbursement.CreateRequest{TransactionID: "tx-ok"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateManual(ctx, reimbursement.CreateRequest{TransactionID: "tx-ok"})
			Expect(err).To(MatchError(internal.ErrReimbursementExists))
		})

		It("requires a transaction id", func() {
			_, err := service.CreateManual(ctx, reimbursement.CreateRequest{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})
	})

	Describe("status changes", func() {
		var id string

		BeforeEach(func() {
			rec, err := service.CreateForTransaction(ctx, "tx-ok")
			Expect(err).NotTo(HaveOccurred())
			id = rec.ID
		})

		It("records a repayment", func() {
			rec, err := service.RecordRepayment(ctx, id, reimbursement.RepaymentRequest{Method: transactionDatamodel.MethodBankTransfer})
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Status).To(Equal(reimbursementDatamodel.StatusPaid))
			Expect(*rec.Method).To(Equal(transactionDatamodel.MethodBankTransfer))
			Expect(rec.PaidAt).NotTo(BeNil())

			_, err = service.RecordRepayment(ctx, id, reimbursement.RepaymentRequest{Method: transactionDatamodel.MethodCash})
			Expect(err).To(MatchError(internal.ErrInvalidReimbursementStatus))
		})

		It("rejects unknown methods", func() {
			_, err := service.RecordRepayment(ctx, id, reimbursement.RepaymentRequest{Method: "bitcoin"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("cancels with a reason", func() {
			_, err := service.Cancel(ctx, id, reimbursement.CancelRequest{Reason: " "})
			Expect(err).To(HaveOccurred())

			rec, err := service.Cancel(ctx, id, reimbursement.CancelRequest{Reason: "Employé parti"})
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Status).To(Equal(reimbursementDatamodel.StatusCancelled))
			Expect(*rec.CancelReason).To(Equal("Employé parti"))
		})

		It("marks overdue records and derives days late", func() {
			repo.records[id].DueDate = time.Now().Add(-72 * time.Hour)

			n, err := service.MarkOverdue(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(1)))

			view, err := service.Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Status).To(Equal(reimbursementDatamodel.StatusOverdue))
			Expect(view.DaysLate).To(Equal(3))

			rec, err := service.RecordRepayment(ctx, id, reimbursement.RepaymentRequest{Method: transactionDatamodel.MethodCash})
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.DaysLate(time.Now())).To(Equal(0))
		})
	})

	Describe("PayAllForPartner", func() {
		newRecord := func(id, partnerID, status string) *reimbursement.Reimbursement {
			return &reimbursement.Reimbursement{ID: id, TransactionID: "tx-" + id, PartnerID: partnerID, TotalAmount: 100_000, Status: status, DueDate: time.Now().Add(time.Hour)}
		}

		It("pays every unpaid row and reports partial failures", func() {
			repo.put(newRecord("r1", "partner-1", reimbursementDatamodel.StatusPending))
			repo.put(newRecord("r2", "partner-1", reimbursementDatamodel.StatusOverdue))
			repo.put(newRecord("r3", "partner-1", reimbursementDatamodel.StatusPending))
			repo.put(newRecord("r4", "partner-1", reimbursementDatamodel.StatusPaid))
			repo.put(newRecord("r5", "partner-2", reimbursementDatamodel.StatusPending))
			repo.failTransition["r3"] = errors.New("connection reset")

			result, err := service.PayAllForPartner(ctx, "partner-1", reimbursement.PayAllRequest{Method: transactionDatamodel.MethodBankTransfer})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Updated).To(Equal(2))
			Expect(result.SucceededIDs).To(ConsistOf("r1", "r2"))
			Expect(result.Failed).To(ConsistOf(reimbursement.BulkFailure{ID: "r3", Error: "connection reset"}))
			Expect(result.Warning).To(BeEmpty())

			Expect(repo.records["r1"].Status).To(Equal(reimbursementDatamodel.StatusPaid))
			Expect(repo.records["r3"].Status).To(Equal(reimbursementDatamodel.StatusPending))
			Expect(repo.records["r5"].Status).To(Equal(reimbursementDatamodel.StatusPending))
		})

		It("warns when nothing is unpaid", func() {
			result, err := service.PayAllForPartner(ctx, "partner-9", reimbursement.PayAllRequest{Method: transactionDatamodel.MethodCash})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Updated).To(Equal(0))
			Expect(result.SucceededIDs).To(BeEmpty())
			Expect(result.Warning).NotTo(BeEmpty())
		})

		It("validates the method first", func() {
			_, err := service.PayAllForPartner(ctx, "partner-1", reimbursement.PayAllRequest{})
			Expect(err).To(HaveOccurred())
		})
	})

	It("loads the partner summary", func() {
		summary, err := service.Summary(ctx, "partner-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.PartnerID).To(Equal("partner-1"))
	})
})
