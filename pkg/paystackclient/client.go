/**
 * @description
 * This package provides a minimal client for the payment-verification provider
 * (Paystack). It is used only as the fallback path for recipient verification
 * when the primary aggregator cannot resolve an account name.
 *
 * @notes
 * - Test-mode secret keys can only resolve accounts at one supported bank.
 *   That failure is surfaced as ErrTestModeRestricted so the caller can
 *   message the user accurately instead of reporting a generic failure.
 *
 * @dependencies
 * - context, encoding/json, errors, fmt, io, net/http, strings, time: Standard Go libraries.
 */
package paystackclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrTestModeRestricted means the configured key is a test key and the
// requested bank is outside the sandbox's single supported bank.
var ErrTestModeRestricted = errors.New("paystack test mode only supports one bank for account resolution")

// Client is a client for the Paystack API.
type Client struct {
	BaseURL    string
	SecretKey  string
	httpClient *http.Client
}

// NewClient creates a new Paystack API client.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ResolveResponse is the account resolution payload.
type ResolveResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AccountName   string `json:"account_name"`
		AccountNumber string `json:"account_number"`
	} `json:"data"`
}

// ResolveAccount resolves the registered account name for an account number
// and bank code.
func (c *Client) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*ResolveResponse, error) {
	url := fmt.Sprintf("%s/bank/resolve?account_number=%s&bank_code=%s", c.BaseURL, accountNumber, bankCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolve request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolve request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read resolve response: %w", err)
	}

	var resolved ResolveResponse
	// Paystack returns structured JSON even on 4xx; parse before status checks
	// so the test-mode condition can be recognized.
	if jsonErr := json.Unmarshal(bodyBytes, &resolved); jsonErr == nil {
		if !resolved.Status && strings.Contains(strings.ToLower(resolved.Message), "test mode") {
			return nil, ErrTestModeRestricted
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("paystack resolve failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}
	if !resolved.Status {
		return nil, fmt.Errorf("paystack resolve unsuccessful: %s", resolved.Message)
	}

	return &resolved, nil
}
