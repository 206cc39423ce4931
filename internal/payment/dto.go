package payment

import (
	errors "github.com/frahmantamala/salary-advance/internal"
	"github.com/frahmantamala/salary-advance/internal/core/common/validation"
	"github.com/frahmantamala/salary-advance/internal/core/datamodel/mobilemoney"
	transactionDatamodel "github.com/frahmantamala/salary-advance/internal/core/datamodel/transaction"
	"github.com/frahmantamala/salary-advance/internal/notification"
)

type InitiateRequest struct {
	AdvanceID string `json:"advance_id"`
	Phone     string `json:"phone"`
	// Amount is the net amount to send, i.e. the requested amount minus the
	// service fee.
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
	AccountType string `json:"account_type,omitempty"`
	Method      string `json:"method,omitempty"`
}

func (r InitiateRequest) Validate(countryCode string) *errors.AppError {
	v := validation.NewValidator()
	v.Field("advance_id", r.AdvanceID).Required()
	v.Field("amount", r.Amount).Required().PositiveInt()
	v.Field("phone", r.Phone).Required().Phone(countryCode)
	v.Field("description", r.Description).MaxLength(255)
	v.Field("method", r.Method).OneOf(errors.ErrCodeInvalidMethod,
		transactionDatamodel.MethodOrangeMoney,
		transactionDatamodel.MethodMTNMoney)
	return v.Validate()
}

type InitiateResult struct {
	PayID       string       `json:"pay_id"`
	Transaction *Transaction `json:"transaction"`
}

// Resolution describes one reconciliation of a payment id. Applied is true
// only for the call that moved the transaction to its terminal status; only
// that call dispatches notifications.
type Resolution struct {
	Transaction       *Transaction               `json:"transaction"`
	ProviderStatus    mobilemoney.ProviderStatus `json:"provider_status"`
	Attempts          int                        `json:"attempts,omitempty"`
	Applied           bool                       `json:"applied"`
	Notification      *notification.Result       `json:"notification,omitempty"`
	NotificationError string                     `json:"notification_error,omitempty"`
}

func (r *Resolution) Terminal() bool {
	return r.Transaction != nil && r.Transaction.IsTerminal()
}

type SweepResult struct {
	Checked  int `json:"checked"`
	Settled  int `json:"settled"`
	Failures int `json:"failures"`
}
