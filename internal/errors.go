package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypePrecondition ErrorType = "PRECONDITION_FAILED"
	ErrorTypeAmbiguous    ErrorType = "AMBIGUOUS_STATE"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount     ErrorCode = "INVALID_AMOUNT"
	ErrCodeAmountMismatch    ErrorCode = "AMOUNT_MISMATCH"
	ErrCodeInvalidPhone      ErrorCode = "INVALID_PHONE"
	ErrCodeInvalidStatus     ErrorCode = "INVALID_STATUS"
	ErrCodeReasonRequired    ErrorCode = "REASON_REQUIRED"
	ErrCodeInvalidMethod     ErrorCode = "INVALID_PAYMENT_METHOD"
	ErrCodeInvalidEventKind  ErrorCode = "INVALID_EVENT_KIND"
	ErrCodeMissingIdentifier ErrorCode = "MISSING_IDENTIFIER"

	ErrCodeAdvanceNotFound       ErrorCode = "ADVANCE_NOT_FOUND"
	ErrCodeEmployeeNotFound      ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeTransactionNotFound   ErrorCode = "TRANSACTION_NOT_FOUND"
	ErrCodeReimbursementNotFound ErrorCode = "REIMBURSEMENT_NOT_FOUND"

	ErrCodeInvalidAdvanceStatus       ErrorCode = "INVALID_ADVANCE_STATUS"
	ErrCodePaymentInFlight            ErrorCode = "PAYMENT_IN_FLIGHT"
	ErrCodeAlreadyPaid                ErrorCode = "ALREADY_PAID"
	ErrCodeReimbursementExists        ErrorCode = "REIMBURSEMENT_EXISTS"
	ErrCodeInvalidReimbursementStatus ErrorCode = "INVALID_REIMBURSEMENT_STATUS"
	ErrCodePollInProgress             ErrorCode = "POLL_IN_PROGRESS"

	ErrCodeNotificationPrecondition ErrorCode = "NOTIFICATION_PRECONDITION"
	ErrCodeTransactionNotSettled    ErrorCode = "TRANSACTION_NOT_SETTLED"

	ErrCodeProviderFailed    ErrorCode = "PROVIDER_FAILED"
	ErrCodePaymentUnresolved ErrorCode = "PAYMENT_STATUS_UNRESOLVED"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches AppErrors by code so sentinel values work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Type == t.Type
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewPreconditionError reports a caller misuse, such as dispatching a
// payment notification for a transaction that has not reached that state.
func NewPreconditionError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypePrecondition,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewUnresolvedError reports that the true state of an operation could not be
// confirmed and needs a human to reconcile it.
func NewUnresolvedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeAmbiguous,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusGatewayTimeout,
	}
}

// NewExternalError keeps the provider message as-is so operators see the
// provider's own wording.
func NewExternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       ErrCodeProviderFailed,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrAdvanceNotFound       = NewNotFoundError("Advance request not found", ErrCodeAdvanceNotFound)
	ErrEmployeeNotFound      = NewNotFoundError("Employee not found", ErrCodeEmployeeNotFound)
	ErrTransactionNotFound   = NewNotFoundError("Transaction not found", ErrCodeTransactionNotFound)
	ErrReimbursementNotFound = NewNotFoundError("Reimbursement not found", ErrCodeReimbursementNotFound)

	ErrInvalidAdvanceStatus       = NewConflictError("advance request status does not allow this operation", ErrCodeInvalidAdvanceStatus)
	ErrPaymentInFlight            = NewConflictError("a payment is already pending for this advance request", ErrCodePaymentInFlight)
	ErrAlreadyPaid                = NewConflictError("this advance request has already been paid", ErrCodeAlreadyPaid)
	ErrReimbursementExists        = NewConflictError("a reimbursement already exists for this transaction", ErrCodeReimbursementExists)
	ErrInvalidReimbursementStatus = NewConflictError("reimbursement status does not allow this operation", ErrCodeInvalidReimbursementStatus)
	ErrPollInProgress             = NewConflictError("a status poll is already running for this payment", ErrCodePollInProgress)
	ErrTransactionNotSettled      = NewPreconditionError("transaction has not succeeded", ErrCodeTransactionNotSettled)

	ErrPaymentUnresolved = NewUnresolvedError("payment status could not be confirmed, manual reconciliation required", ErrCodePaymentUnresolved)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Success bool      `json:"success"`
	Error   string    `json:"error"`
	Code    ErrorCode `json:"code,omitempty"`
	Details any       `json:"details,omitempty"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{
		Success: false,
		Error:   e.GetDetailedMessage(),
		Code:    e.Code,
		Details: e.Details,
	}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
