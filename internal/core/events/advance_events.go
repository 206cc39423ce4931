package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAdvanceRequestReceived = "advance.request_received"
	EventTypeAdvanceApproved        = "advance.approved"
	EventTypeAdvanceRejected        = "advance.rejected"
	EventTypePaymentSucceeded       = "payment.succeeded"
	EventTypePaymentFailed          = "payment.failed"
)

var AllEventTypes = []string{
	EventTypeAdvanceRequestReceived,
	EventTypeAdvanceApproved,
	EventTypeAdvanceRejected,
	EventTypePaymentSucceeded,
	EventTypePaymentFailed,
}

type AdvanceEvent struct {
	BaseEvent
	AdvanceID  string `json:"advance_id"`
	EmployeeID string `json:"employee_id"`
	PartnerID  string `json:"partner_id"`
	Amount     int64  `json:"amount"`
	Reason     string `json:"reason,omitempty"`
}

func NewAdvanceEvent(eventType, advanceID, employeeID, partnerID string, amount int64, reason string) *AdvanceEvent {
	return &AdvanceEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"advance_id":  advanceID,
				"employee_id": employeeID,
				"partner_id":  partnerID,
				"amount":      amount,
				"reason":      reason,
			},
		},
		AdvanceID:  advanceID,
		EmployeeID: employeeID,
		PartnerID:  partnerID,
		Amount:     amount,
		Reason:     reason,
	}
}

type PaymentEvent struct {
	BaseEvent
	TransactionID string `json:"transaction_id"`
	PayID         string `json:"pay_id"`
	AdvanceID     string `json:"advance_id"`
	EmployeeID    string `json:"employee_id"`
	PartnerID     string `json:"partner_id"`
	Amount        int64  `json:"amount"`
	Method        string `json:"method"`
	FailureReason string `json:"failure_reason,omitempty"`
}

func NewPaymentSucceededEvent(transactionID, payID, advanceID, employeeID, partnerID string, amount int64, method string) *PaymentEvent {
	return newPaymentEvent(EventTypePaymentSucceeded, transactionID, payID, advanceID, employeeID, partnerID, amount, method, "")
}

func NewPaymentFailedEvent(transactionID, payID, advanceID, employeeID, partnerID string, amount int64, method, failureReason string) *PaymentEvent {
	return newPaymentEvent(EventTypePaymentFailed, transactionID, payID, advanceID, employeeID, partnerID, amount, method, failureReason)
}

func newPaymentEvent(eventType, transactionID, payID, advanceID, employeeID, partnerID string, amount int64, method, failureReason string) *PaymentEvent {
	return &PaymentEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transaction_id": transactionID,
				"pay_id":         payID,
				"advance_id":     advanceID,
				"employee_id":    employeeID,
				"partner_id":     partnerID,
				"amount":         amount,
				"method":         method,
				"failure_reason": failureReason,
			},
		},
		TransactionID: transactionID,
		PayID:         payID,
		AdvanceID:     advanceID,
		EmployeeID:    employeeID,
		PartnerID:     partnerID,
		Amount:        amount,
		Method:        method,
		FailureReason: failureReason,
	}
}
