// Package mobilemoney is the HTTP client for the mobile money cash-out
// provider.
package mobilemoney

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

	types "github.com/frahmantamala/salary-advance/internal/core/datamodel/mobilemoney"
)

// ProviderError carries the provider's message untouched so callers can show
// it to operators.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return e.Message
}

type Config struct {
	BaseURL     string
	APIKey      string
	SiteID      string
	AccountType string
	Currency    string
	Timeout     time.Duration
}

type Client struct {
	baseURL     string
	apiKey      string
	siteID      string
	accountType string
	currency    string
	httpClient  *http.Client
	logger      *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		apiKey:      config.APIKey,
		siteID:      config.SiteID,
		accountType: config.AccountType,
		currency:    config.Currency,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// CashOut asks the provider to send money to a mobile wallet. Any failure,
// including a 2xx body with success=false, is returned as an error.
func (c *Client) CashOut(ctx context.Context, req *types.CashOutRequest) (*types.CashOutResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, &ProviderError{Message: err.Error()}
	}
	if req.AccountType == "" {
		req.AccountType = c.accountType
	}
	if req.SiteID == "" {
		req.SiteID = c.siteID
	}
	if req.Currency == "" {
		req.Currency = c.currency
	}

	c.logger.Info("initiating cash-out",
		"reference", req.Reference,
		"amount", req.Amount,
		"account_type", req.AccountType)

	var resp types.CashOutResponse
	if err := c.post(ctx, "/cashout", req, &resp); err != nil {
		c.logger.Error("cash-out request failed", "reference", req.Reference, "error", err)
		return nil, err
	}

	if !resp.Success || resp.PayID == "" {
		msg := firstNonEmpty(resp.Error, resp.Message, "cash-out was not accepted by the provider")
		c.logger.Warn("cash-out rejected by provider", "reference", req.Reference, "message", msg)
		return nil, &ProviderError{StatusCode: http.StatusOK, Message: msg}
	}

	c.logger.Info("cash-out accepted", "reference", req.Reference, "pay_id", resp.PayID)
	return &resp, nil
}

// Status returns the provider's view of a cash-out.
func (c *Client) Status(ctx context.Context, payID string) (*types.StatusResponse, error) {
	if payID == "" {
		return nil, &ProviderError{Message: "pay_id is required"}
	}

	var resp types.StatusResponse
	if err := c.post(ctx, "/transaction/status", &types.StatusRequest{PayID: payID, SiteID: c.siteID}, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("cash-out status fetched",
		"pay_id", payID,
		"lengo_status", resp.LengoStatus,
		"db_status", resp.DBStatus)

	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Basic "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProviderError{StatusCode: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage extracts the provider's error text, falling back to the raw body.
func errorMessage(raw []byte, statusCode int) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if msg := firstNonEmpty(body.Error, body.Message); msg != "" {
			return msg
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return fmt.Sprintf("provider returned status %d", statusCode)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
