/**
 * @description
 * This package provides a client for the bank-data aggregation provider (a
 * Mono-style open-banking API). It covers the operations the assistant needs:
 * account linking sessions, balances, transactions, account-name lookup,
 * customer profile updates, e-mandate creation and mandate debits.
 *
 * Key features:
 * - One authenticated `do` helper shared by every endpoint.
 * - Explicit result structs per call instead of raw maps.
 * - A typed APIError so callers can branch on provider-reported conditions
 *   (notably the "missing phone/address" mandate failure).
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, strings, time: Standard Go libraries.
 */
package monoclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Client is a client for the aggregation provider's API.
type Client struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// NewClient creates a new aggregation API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int    `json:"-"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("aggregator api error (status %d): %s", e.StatusCode, e.Message)
}

// IsProfileIncomplete reports whether err is the provider's "customer profile
// is missing phone/address" mandate creation failure. The mandate manager
// keys its one-shot corrective retry off this exact condition.
func IsProfileIncomplete(err error) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "phone") || strings.Contains(msg, "address")
}

// BalanceResponse is the account balance payload. Amounts are in kobo.
type BalanceResponse struct {
	Status string `json:"status"`
	Data   struct {
		AccountID string `json:"account_id"`
		Balance   int64  `json:"balance"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

// LookupResponse is the account-name lookup payload.
type LookupResponse struct {
	Status string `json:"status"`
	Data   struct {
		AccountName   string `json:"account_name"`
		AccountNumber string `json:"account_number"`
		BankCode      string `json:"bank_code"`
	} `json:"data"`
}

// LinkingSessionResponse is returned when initiating an account connection.
type LinkingSessionResponse struct {
	Status string `json:"status"`
	Data   struct {
		LinkingURL string `json:"mono_url"`
		SessionID  string `json:"session_id"`
	} `json:"data"`
}

// MandateResponse is returned by mandate creation.
type MandateResponse struct {
	Status string `json:"status"`
	Data   struct {
		ID               string `json:"id"`
		MandateStatus    string `json:"status"`
		AuthorizationURL string `json:"authorization_url"`
	} `json:"data"`
}

// DebitResponse is returned by a mandate debit.
type DebitResponse struct {
	Status string `json:"status"`
	Data   struct {
		ID        string `json:"id"`
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Message   string `json:"message"`
	} `json:"data"`
}

// Transaction is a single statement line from the provider.
type Transaction struct {
	ID        string `json:"id"`
	Narration string `json:"narration"`
	Type      string `json:"type"` // debit | credit
	Amount    int64  `json:"amount"`
	Date      string `json:"date"`
	Category  string `json:"category,omitempty"`
}

// TransactionsResponse is the statement payload.
type TransactionsResponse struct {
	Status string        `json:"status"`
	Data   []Transaction `json:"data"`
}

// BankListResponse is the provider's extended bank directory.
type BankListResponse struct {
	Status string `json:"status"`
	Data   []struct {
		Name    string `json:"name"`
		NIPCode string `json:"nip_code"`
	} `json:"data"`
}

// mandateRequest is the mandate creation payload.
type mandateRequest struct {
	Customer    string `json:"customer"`
	Account     string `json:"account"`
	AmountKobo  int64  `json:"amount"`
	MandateType string `json:"mandate_type"`
	Description string `json:"description"`
}

// debitRequest is the mandate debit payload.
type debitRequest struct {
	Mandate     string `json:"mandate"`
	AmountKobo  int64  `json:"amount"`
	Reference   string `json:"reference"`
	Narration   string `json:"narration"`
	Beneficiary struct {
		AccountNumber string `json:"account_number"`
		BankCode      string `json:"bank_code"`
		AccountName   string `json:"account_name,omitempty"`
	} `json:"beneficiary"`
}

// customerUpdateRequest is the corrective profile update payload.
type customerUpdateRequest struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// linkingRequest starts an account connection session for a user.
type linkingRequest struct {
	Customer struct {
		Name  string `json:"name,omitempty"`
		Phone string `json:"phone"`
	} `json:"customer"`
	Scope       string `json:"scope"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// GetAccountBalance fetches the live balance (kobo) for a linked account.
func (c *Client) GetAccountBalance(ctx context.Context, accountID string) (*BalanceResponse, error) {
	var resp BalanceResponse
	url := fmt.Sprintf("%s/v2/accounts/%s/balance", c.BaseURL, accountID)
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LookupAccountName verifies an account number against a bank code and returns
// the registered account name.
func (c *Client) LookupAccountName(ctx context.Context, accountNumber, bankCode string) (*LookupResponse, error) {
	var resp LookupResponse
	url := fmt.Sprintf("%s/v3/lookup/nuban?account_number=%s&nip_code=%s", c.BaseURL, accountNumber, bankCode)
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InitiateAccountLinking starts a linking session and returns the URL the user
// must open to connect their bank account.
func (c *Client) InitiateAccountLinking(ctx context.Context, name, phone string) (*LinkingSessionResponse, error) {
	req := linkingRequest{Scope: "auth"}
	req.Customer.Name = name
	req.Customer.Phone = phone

	var resp LinkingSessionResponse
	url := fmt.Sprintf("%s/v2/accounts/initiate", c.BaseURL)
	if err := c.do(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateMandate asks the provider for a standing debit authorization on the
// given account. The returned authorization URL is only valid while the
// mandate is pending.
func (c *Client) CreateMandate(ctx context.Context, customerID, accountID string, amountKobo int64, description string) (*MandateResponse, error) {
	req := mandateRequest{
		Customer:    customerID,
		Account:     accountID,
		AmountKobo:  amountKobo,
		MandateType: "emandate",
		Description: description,
	}

	var resp MandateResponse
	url := fmt.Sprintf("%s/v3/payments/mandates", c.BaseURL)
	if err := c.do(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateCustomer performs the corrective profile update (phone and address)
// that unblocks mandate creation.
func (c *Client) UpdateCustomer(ctx context.Context, customerID, phone, address string) error {
	req := customerUpdateRequest{Phone: phone, Address: address}
	url := fmt.Sprintf("%s/v2/customers/%s", c.BaseURL, customerID)
	return c.do(ctx, http.MethodPatch, url, req, nil)
}

// DebitMandate moves money under an active mandate. reference must be fresh
// per attempt; the provider uses it for idempotency.
func (c *Client) DebitMandate(ctx context.Context, mandateID string, amountKobo int64, reference, narration, beneficiaryAccount, beneficiaryBankCode, beneficiaryName string) (*DebitResponse, error) {
	req := debitRequest{
		Mandate:    mandateID,
		AmountKobo: amountKobo,
		Reference:  reference,
		Narration:  narration,
	}
	req.Beneficiary.AccountNumber = beneficiaryAccount
	req.Beneficiary.BankCode = beneficiaryBankCode
	req.Beneficiary.AccountName = beneficiaryName

	var resp DebitResponse
	url := fmt.Sprintf("%s/v3/payments/mandates/%s/debit", c.BaseURL, mandateID)
	if err := c.do(ctx, http.MethodPost, url, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransactions fetches up to limit recent statement lines for an account.
func (c *Client) GetTransactions(ctx context.Context, accountID string, limit int) (*TransactionsResponse, error) {
	var resp TransactionsResponse
	url := fmt.Sprintf("%s/v2/accounts/%s/transactions?paginate=false&limit=%d", c.BaseURL, accountID, limit)
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListBanks fetches the provider's extended bank directory.
func (c *Client) ListBanks(ctx context.Context) (*BankListResponse, error) {
	var resp BankListResponse
	url := fmt.Sprintf("%s/v3/banks/list", c.BaseURL)
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do is a helper function to make authenticated HTTP requests to the provider.
func (c *Client) do(ctx context.Context, method, url string, body, target interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("mono-sec-key", c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr != nil {
			log.Printf("level=warn component=mono_client msg=\"non-2xx response (unparsable error body)\" status=%d", resp.StatusCode)
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if target != nil {
		if err := json.Unmarshal(respBody, target); err != nil {
			return fmt.Errorf("failed to unmarshal response body: %w", err)
		}
	}

	return nil
}
