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

type EmailConfig struct {
	BaseURL string
	APIKey  string
	From    string
	Timeout time.Duration
}

type EmailClient struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewEmailClient(config EmailConfig, logger *slog.Logger) *EmailClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &EmailClient{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		apiKey:     config.APIKey,
		from:       config.From,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

type emailResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func (c *EmailClient) Send(ctx context.Context, email Email) Result {
	recipients := make([]string, 0, len(email.To))
	for _, to := range email.To {
		if to = strings.TrimSpace(to); to != "" {
			recipients = append(recipients, to)
		}
	}
	if len(recipients) == 0 {
		return failure(ClassValidation, "no email recipient")
	}
	for _, to := range recipients {
		if !strings.Contains(to, "@") {
			return failure(ClassValidation, fmt.Sprintf("invalid email address %q", to))
		}
	}
	if email.Subject == "" || email.HTML == "" {
		return failure(ClassValidation, "email subject and html body are required")
	}

	body, err := json.Marshal(emailRequest{
		From:    c.from,
		To:      recipients,
		Subject: email.Subject,
		HTML:    email.HTML,
		Text:    email.Text,
	})
	if err != nil {
		return failure(ClassValidation, fmt.Sprintf("failed to marshal email: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return failure(ClassValidation, fmt.Sprintf("failed to create email request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		class := classifyTransportError(err)
		c.logger.Warn("email gateway unreachable", "class", class, "error", err)
		return failure(class, err.Error())
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var parsed emailResponse
	parseErr := json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := firstNonEmpty(parsed.Message, parsed.Error, strings.TrimSpace(string(raw)), fmt.Sprintf("email gateway returned status %d", resp.StatusCode))
		class := classifyStatus(resp.StatusCode)
		c.logger.Warn("email rejected", "status_code", resp.StatusCode, "class", class, "error", msg)
		return failure(class, msg)
	}

	if len(raw) > 0 {
		if msg, failed := replyFailure(parsed.Success, parseErr, raw, parsed.Error, parsed.Message); failed {
			c.logger.Warn("email rejected", "class", ClassProvider, "error", msg)
			return failure(ClassProvider, msg)
		}
	}

	c.logger.Info("email sent", "recipients", len(recipients), "email_id", parsed.ID)
	return Result{Success: true, ID: parsed.ID}
}
