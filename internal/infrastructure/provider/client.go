package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	accountsPath     = "/accounts/get"
	transactionsPath = "/transactions/get"
)

// Client abstracts the provider API for the sync layer.
type Client interface {
	// GetAccounts fetches the current account snapshots for an access token.
	GetAccounts(ctx context.Context, accessToken string) ([]Account, error)
	// GetTransactions fetches transactions for an access token within the
	// inclusive date window.
	GetTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]Transaction, error)
}

// HTTPClient is the production Client backed by the provider's HTTP API.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a provider API client. A zero timeout falls back to
// the default.
func NewHTTPClient(baseURL, clientID, secret string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		clientID:   clientID,
		secret:     secret,
	}
}

type accountsRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
}

type accountsResponse struct {
	Accounts []Account `json:"accounts"`
}

type transactionsRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	AccessToken string `json:"access_token"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type transactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

// GetAccounts fetches all accounts reachable through an access token
func (c *HTTPClient) GetAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	var resp accountsResponse
	err := c.post(ctx, accountsPath, accountsRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

// GetTransactions fetches transactions within the inclusive date window
func (c *HTTPClient) GetTransactions(ctx context.Context, accessToken string, startDate, endDate time.Time) ([]Transaction, error) {
	var resp transactionsResponse
	err := c.post(ctx, transactionsPath, transactionsRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		AccessToken: accessToken,
		StartDate:   startDate.Format("2006-01-02"),
		EndDate:     endDate.Format("2006-01-02"),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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
