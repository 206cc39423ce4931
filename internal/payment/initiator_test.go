package payment_test

import (
	"context"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/salary-advance/internal"
	advanceDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/advance"
	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/salary-advance/internal/core/fees"
	"github.com/frahmantamala/salary-advance/internal/payment"
)

var _ = Describe("Initiator", func() {
	var (
		repo      *fakeRepo
		provider  *fakeProvider
		advances  fakeAdvances
		initiator *payment.Initiator
		ctx       context.Context
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newFakeRepo()
		provider = &fakeProvider{payID: "LP-1001"}
		advances = fakeAdvances{
			"adv-1": {ID: "adv-1", EmployeeID: "emp-1", PartnerID: "partner-1", Amount: 1_000_000, Status: advanceDatamodel.StatusApproved},
			"adv-2": {ID: "adv-2", EmployeeID: "emp-1", PartnerID: "partner-1", Amount: 500_000, Status: advanceDatamodel.StatusPending},
			"adv-3": {ID: "adv-3", EmployeeID: "emp-1", PartnerID: "partner-1", Amount: 500_000, Status: advanceDatamodel.StatusPaid},
		}
		initiator = payment.NewInitiator(repo, advances, provider, fees.NewSchedule(fees.DefaultRate), "224", logger)
		ctx = context.Background()
	})

	validRequest := func() payment.InitiateRequest {
		return payment.InitiateRequest{AdvanceID: "adv-1", Phone: "224622123456", Amount: 935_000}
	}

	It("sends the net amount and stores one pending transaction", func() {
		result, err := initiator.Initiate(ctx, validRequest())
		Expect(err).NotTo(HaveOccurred())
		Expect(result.PayID).To(Equal("LP-1001"))

		Expect(provider.cashOuts).To(HaveLen(1))
		Expect(provider.cashOuts[0].Amount).To(Equal(int64(935_000)))
		Expect(provider.cashOuts[0].Phone).To(Equal("622123456"))
		Expect(provider.cashOuts[0].Reference).NotTo(BeEmpty())

		Expect(repo.txs).To(HaveLen(1))
		tx := repo.txs[result.Transaction.ID]
		Expect(tx.Status).To(Equal(transactionDatamodel.StatusPending))
		Expect(tx.PayID).To(Equal("LP-1001"))
		Expect(tx.Reference).To(Equal(provider.cashOuts[0].Reference))
		Expect(tx.Method).To(Equal(transactionDatamodel.MethodOrangeMoney))
	})

	It("rejects an amount that is not the requested amount minus the fee", func() {
		req := validRequest()
		req.Amount = 1_000_000
		_, err := initiator.Initiate(ctx, req)

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(400))
		Expect(appErr.Details).To(Equal(internal.ValidationErrors{Errors: []internal.ValidationError{{
			Field:   "amount",
			Message: "amount must be 935000 (requested 1000000 minus service fee 65000)",
			Code:    string(internal.ErrCodeAmountMismatch),
		}}}))
		Expect(provider.cashOuts).To(BeEmpty())
	})

	DescribeTable("rejects invalid input before calling the provider",
		func(mutate func(*payment.InitiateRequest)) {
			req := validRequest()
			mutate(&req)
			_, err := initiator.Initiate(ctx, req)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(provider.cashOuts).To(BeEmpty())
			Expect(repo.txs).To(BeEmpty())
		},
		Entry("short phone", func(r *payment.InitiateRequest) { r.Phone = "62212345" }),
		Entry("foreign prefix", func(r *payment.InitiateRequest) { r.Phone = "221622123456" }),
		Entry("letters in phone", func(r *payment.InitiateRequest) { r.Phone = "62212345a" }),
		Entry("zero amount", func(r *payment.InitiateRequest) { r.Amount = 0 }),
		Entry("negative amount", func(r *payment.InitiateRequest) { r.Amount = -935_000 }),
		Entry("missing advance", func(r *payment.InitiateRequest) { r.AdvanceID = "" }),
		Entry("unsupported method", func(r *payment.InitiateRequest) { r.Method = "especes" }),
	)

	It("requires an approved advance", func() {
		req := validRequest()
		req.AdvanceID = "adv-2"
		req.Amount = 467_500
		_, err := initiator.Initiate(ctx, req)
		Expect(err).To(MatchError(internal.ErrInvalidAdvanceStatus))
	})

	It("refuses paid advances", func() {
		req := validRequest()
		req.AdvanceID = "adv-3"
		req.Amount = 467_500
		_, err := initiator.Initiate(ctx, req)
		Expect(err).To(MatchError(internal.ErrAlreadyPaid))
	})

	It("passes the provider error text through and stores nothing", func() {
		provider.cashOutErr = providerRejection("Solde marchand insuffisant")
		_, err := initiator.Initiate(ctx, validRequest())

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeExternal))
		Expect(appErr.StatusCode).To(Equal(502))
		Expect(appErr.Message).To(Equal("Solde marchand insuffisant"))
		Expect(repo.txs).To(BeEmpty())
	})

	It("reports transport failures as provider errors", func() {
		provider.cashOutErr = errGatewayDown
		_, err := initiator.Initiate(ctx, validRequest())
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeExternal))
		Expect(repo.txs).To(BeEmpty())
	})

	Describe("one open payment per advance", func() {
		BeforeEach(func() {
			_, err := initiator.Initiate(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())
			provider.payID = "LP-1002"
		})

		It("blocks a second cash-out while the first is pending", func() {
			_, err := initiator.Initiate(ctx, validRequest())
			Expect(err).To(MatchError(internal.ErrPaymentInFlight))
			Expect(provider.cashOuts).To(HaveLen(1))
			Expect(repo.txs).To(HaveLen(1))
		})

		It("blocks once the first succeeded", func() {
			for _, tx := range repo.txs {
				tx.Status = transactionDatamodel.StatusSucceeded
			}
			_, err := initiator.Initiate(ctx, validRequest())
			Expect(err).To(MatchError(internal.ErrAlreadyPaid))
		})

		It("allows a retry after a cancelled attempt", func() {
			for _, tx := range repo.txs {
				tx.Status = transactionDatamodel.StatusCancelled
			}
			result, err := initiator.Initiate(ctx, validRequest())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.PayID).To(Equal("LP-1002"))
			Expect(repo.txs).To(HaveLen(2))
		})
	})
})
