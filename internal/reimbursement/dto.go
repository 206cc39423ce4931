package reimbursement

import (
	"time"

	errors "github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/core/common/validation"
	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
)

type CreateRequest struct {
	TransactionID string `json:"transaction_id"`
}

func (r CreateRequest) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("transaction_id", r.TransactionID).Required()
	return v.Validate()
}

type RepaymentRequest struct {
	Method string     `json:"method"`
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

func (r RepaymentRequest) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("method", r.Method).Required().OneOf(errors.ErrCodeInvalidMethod, transactionDatamodel.Methods...)
	return v.Validate()
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

func (r CancelRequest) Validate() *errors.AppError {
	return validation.ValidateReason("reason", r.Reason)
}

type PayAllRequest struct {
	Method string `json:"method"`
}
