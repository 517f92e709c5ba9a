package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	defaultTimeout       = 30 * time.Second
	linkTokenPath        = "/link/token/create"
	exchangeTokenPath    = "/item/public_token/exchange"
	accountsPath         = "/accounts/balance/get"
	transactionsSyncPath = "/transactions/sync"
)

// Client handles communication with the aggregation provider's API.
// Retries are the provider's concern; the client surfaces every failure
// to the caller unmodified apart from wrapping.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

// NewClient reads provider credentials from the environment.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL:  os.Getenv("PROVIDER_BASE_URL"),
		clientID: os.Getenv("PROVIDER_CLIENT_ID"),
		secret:   os.Getenv("PROVIDER_SECRET"),
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub
// server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// ErrorResponse is the provider's error envelope.
type ErrorResponse struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type LinkTokenResponse struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration"`
}

type ExchangeTokenResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

type AccountsResponse struct {
	Accounts []AccountRecord `json:"accounts"`
}

// FetchPage requests one page of the transaction change feed. An empty
// cursor asks for a full resync from the beginning. Cursors are opaque
// and must not be interpreted.
func (c *Client) FetchPage(ctx context.Context, accessToken, cursor string) (*SyncPage, error) {
	body := map[string]string{
		"access_token": accessToken,
	}
	if cursor != "" {
		body["cursor"] = cursor
	}

	var page SyncPage
	if err := c.post(ctx, transactionsSyncPath, body, &page); err != nil {
		return nil, fmt.Errorf("failed to fetch sync page: %w", err)
	}
	return &page, nil
}

// CreateLinkToken starts the institution-linking flow for a user.
func (c *Client) CreateLinkToken(ctx context.Context, userID string) (*LinkTokenResponse, error) {
	body := map[string]any{
		"client_name":   "finance-aggregation-backend",
		"language":      "en",
		"country_codes": []string{"US"},
		"products":      []string{"transactions"},
		"user": map[string]string{
			"client_user_id": userID,
		},
	}

	var resp LinkTokenResponse
	if err := c.post(ctx, linkTokenPath, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to create link token: %w", err)
	}
	return &resp, nil
}

// ExchangePublicToken trades the public token from a completed link
// flow for a long-lived access token and its item id.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeTokenResponse, error) {
	body := map[string]string{
		"public_token": publicToken,
	}

	var resp ExchangeTokenResponse
	if err := c.post(ctx, exchangeTokenPath, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to exchange public token: %w", err)
	}
	return &resp, nil
}

// GetAccounts fetches current balances for all accounts under an access
// token.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) (*AccountsResponse, error) {
	body := map[string]string{
		"access_token": accessToken,
	}

	var resp AccountsResponse
	if err := c.post(ctx, accountsPath, body, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PROVIDER-CLIENT-ID", c.clientID)
	req.Header.Set("PROVIDER-SECRET", c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil {
			return fmt.Errorf("provider request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("provider error (status %d): %s - %s", resp.StatusCode, errResp.ErrorCode, errResp.ErrorMessage)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
