// Package messaging sends SMS and email through external gateways. Senders
// report failures in Result and never return Go errors.
package messaging

import (
	"context"
	"errors"
	"net"
	"net/url"
)

type ErrorClass string

const (
	ClassNetwork    ErrorClass = "network"
	ClassValidation ErrorClass = "validation"
	ClassProvider   ErrorClass = "provider"
)

// Result is the outcome of one send. Class is for diagnostics only.
type Result struct {
	Success bool       `json:"success"`
	ID      string     `json:"id,omitempty"`
	Error   string     `json:"error,omitempty"`
	Class   ErrorClass `json:"class,omitempty"`
}

func failure(class ErrorClass, msg string) Result {
	return Result{Success: false, Error: msg, Class: class}
}

type SMS struct {
	To      []string
	Message string
}

type Email struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

type SMSSender interface {
	Send(ctx context.Context, sms SMS) Result
}

type EmailSender interface {
	Send(ctx context.Context, email Email) Result
}

// classifyTransportError separates network failures from everything else.
func classifyTransportError(err error) ErrorClass {
	var netErr net.Error
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ClassNetwork
	case errors.As(err, &netErr), errors.As(err, &urlErr):
		return ClassNetwork
	}
	return ClassProvider
}

func classifyStatus(statusCode int) ErrorClass {
	if statusCode >= 400 && statusCode < 500 {
		return ClassValidation
	}
	return ClassProvider
}
