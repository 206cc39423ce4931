package advance

import (
	errors "github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/core/common/validation"
)

type SubmitRequest struct {
	EmployeeID string `json:"employee_id"`
	Amount     int64  `json:"amount"`
	Reason     string `json:"reason"`
	// Phone defaults to the employee's phone when empty.
	Phone string `json:"phone,omitempty"`
}

func (r SubmitRequest) Validate(countryCode string) *errors.AppError {
	v := validation.NewValidator()
	v.Field("employee_id", r.EmployeeID).Required()
	v.Field("amount", r.Amount).Required().PositiveInt()
	v.Field("reason", r.Reason).Required().MaxLength(1000)
	v.Field("phone", r.Phone).Phone(countryCode)
	return v.Validate()
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

func (r RejectRequest) Validate() *errors.AppError {
	return validation.ValidateReason("reason", r.Reason)
}
