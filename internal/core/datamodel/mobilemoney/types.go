package mobilemoney

import (
	"errors"
)

// ProviderStatus is the provider's own settlement status. Values are matched
// case-sensitively.
type ProviderStatus string

const (
	StatusPending   ProviderStatus = "PENDING"
	StatusInitiated ProviderStatus = "INITIATED"
	StatusSuccess   ProviderStatus = "SUCCESS"
	StatusFailed    ProviderStatus = "FAILED"
	StatusCancelled ProviderStatus = "CANCELLED"
	StatusUnknown   ProviderStatus = "UNKNOWN"
)

// ParseStatus maps anything outside the known set to StatusUnknown.
func ParseStatus(raw string) ProviderStatus {
	switch s := ProviderStatus(raw); s {
	case StatusPending, StatusInitiated, StatusSuccess, StatusFailed, StatusCancelled:
		return s
	}
	return StatusUnknown
}

func (s ProviderStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusCancelled
}

type CashOutRequest struct {
	Amount      int64  `json:"amount"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
	AccountType string `json:"account_type"`
	Reference   string `json:"reference"`
	SiteID      string `json:"site_id,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

func (r *CashOutRequest) Validate() error {
	if r.Reference == "" {
		return errors.New("reference is required")
	}
	if r.Amount <= 0 {
		return errors.New("amount must be greater than 0")
	}
	if r.Phone == "" {
		return errors.New("phone is required")
	}
	return nil
}

type CashOutResponse struct {
	Success bool   `json:"success"`
	PayID   string `json:"pay_id"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type StatusRequest struct {
	PayID  string `json:"pay_id"`
	SiteID string `json:"site_id,omitempty"`
}

// StatusResponse carries both provider fields. Only LengoStatus decides the
// outcome; DBStatus is the provider's mirrored copy and is logged only.
type StatusResponse struct {
	LengoStatus string `json:"lengo_status"`
	DBStatus    string `json:"db_status"`
	Message     string `json:"message,omitempty"`
}

func (r StatusResponse) Status() ProviderStatus {
	return ParseStatus(r.LengoStatus)
}

// Callback is the body the provider posts when a cash-out settles.
type Callback struct {
	PayID   string `json:"pay_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Amount  int64  `json:"amount,omitempty"`
}
