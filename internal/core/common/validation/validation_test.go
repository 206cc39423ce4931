package validation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/core/common/validation"
)

var _ = Describe("ValidationBuilder", func() {
	It("passes valid input", func() {
		v := validation.NewValidator()
		v.Field("amount", int64(1000)).Required().PositiveInt()
		v.Field("phone", "620123456").Required().Phone("224")
		v.Field("method", "orange_money").OneOf(errors.ErrCodeInvalidMethod, "orange_money", "cash")
		Expect(v.Validate()).To(BeNil())
	})

	It("collects every field error", func() {
		v := validation.NewValidator()
		v.Field("amount", int64(-5)).PositiveInt()
		v.Field("phone", "12").Phone("224")
		v.Field("reason", "  ").Required()

		appErr := v.Validate()
		Expect(appErr).NotTo(BeNil())
		Expect(appErr.StatusCode).To(Equal(400))

		details, ok := appErr.Details.(errors.ValidationErrors)
		Expect(ok).To(BeTrue())
		Expect(details.Errors).To(HaveLen(3))
		Expect(details.Errors[0].Code).To(Equal(string(errors.ErrCodeInvalidAmount)))
		Expect(details.Errors[1].Code).To(Equal(string(errors.ErrCodeInvalidPhone)))
		Expect(details.Errors[2].Message).To(Equal("reason is required"))
	})

	It("rejects values outside the allowed set", func() {
		v := validation.NewValidator()
		v.Field("method", "bitcoin").OneOf(errors.ErrCodeInvalidMethod, "cash", "check")

		appErr := v.Validate()
		Expect(appErr).NotTo(BeNil())
		Expect(appErr.GetDetailedMessage()).To(Equal("method must be one of: cash, check"))
	})

	It("validates amounts and reasons", func() {
		Expect(validation.ValidateAmount("amount", 0)).NotTo(BeNil())
		Expect(validation.ValidateAmount("amount", 1)).To(BeNil())
		Expect(validation.ValidateReason("reason", "")).NotTo(BeNil())
		Expect(validation.ValidateReason("reason", "Frais médicaux")).To(BeNil())
	})
})
