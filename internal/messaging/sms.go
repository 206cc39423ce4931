package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type SMSConfig struct {
	BaseURL    string
	ServiceID  string
	Secret     string
	SenderName string
	Timeout    time.Duration
}

type SMSClient struct {
	baseURL    string
	serviceID  string
	secret     string
	senderName string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewSMSClient(config SMSConfig, logger *slog.Logger) *SMSClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SMSClient{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		serviceID:  config.ServiceID,
		secret:     config.Secret,
		senderName: config.SenderName,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type smsRequest struct {
	To         []string `json:"to"`
	Message    string   `json:"message"`
	SenderName string   `json:"sender_name"`
}

type smsResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func (c *SMSClient) Send(ctx context.Context, sms SMS) Result {
	recipients := make([]string, 0, len(sms.To))
	for _, to := range sms.To {
		if to = strings.TrimSpace(to); to != "" {
			recipients = append(recipients, to)
		}
	}
	if len(recipients) == 0 {
		return failure(ClassValidation, "no SMS recipient")
	}
	if strings.TrimSpace(sms.Message) == "" {
		return failure(ClassValidation, "SMS message is empty")
	}

	body, err := json.Marshal(smsRequest{To: recipients, Message: sms.Message, SenderName: c.senderName})
	if err != nil {
		return failure(ClassValidation, fmt.Sprintf("failed to marshal SMS: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return failure(ClassValidation, fmt.Sprintf("failed to create SMS request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.serviceID, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		class := classifyTransportError(err)
		c.logger.Warn("sms gateway unreachable", "recipients", len(recipients), "class", class, "error", err)
		return failure(class, err.Error())
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var parsed smsResponse
	parseErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := firstNonEmpty(parsed.Error, parsed.Message, strings.TrimSpace(string(raw)), fmt.Sprintf("sms gateway returned status %d", resp.StatusCode))
		class := classifyStatus(resp.StatusCode)
		c.logger.Warn("sms rejected", "status_code", resp.StatusCode, "class", class, "error", msg)
		return failure(class, msg)
	}

	// some gateway deployments answer 200 without a body
	if len(raw) > 0 {
		if msg, failed := replyFailure(parsed.Success, parseErr, raw, parsed.Error, parsed.Message); failed {
			c.logger.Warn("sms rejected", "class", ClassProvider, "error", msg)
			return failure(ClassProvider, msg)
		}
	}

	c.logger.Info("sms sent", "recipients", len(recipients), "message_id", parsed.ID)
	return Result{Success: true, ID: parsed.ID}
}

// replyFailure reads a 2xx gateway reply. Anything but success=true is a
// failure, reported with the gateway's own text when it sent some.
func replyFailure(success bool, parseErr error, raw []byte, texts ...string) (string, bool) {
	if parseErr != nil {
		return fmt.Sprintf("unreadable gateway reply: %s", strings.TrimSpace(string(raw))), true
	}
	if success {
		return "", false
	}
	return firstNonEmpty(append(texts, "gateway reported failure")...), true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
