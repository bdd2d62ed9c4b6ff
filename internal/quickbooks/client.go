package quickbooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/checkdesk/checkdesk/internal/logger"
)

const apiRequestTimeout = 10 * time.Second

// APIError is any non-2xx reply from the accounting API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quickbooks api status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the call may succeed if repeated.
// Server-side failures are worth a retry, 4xx (auth, validation,
// stale SyncToken) are terminal.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500
}

// Client talks to the accounting API of one connected company.
// Every call is authenticated with a token from the TokenManager.
type Client struct {
	cfg    Config
	tokens *TokenManager
	client *http.Client
	logger logger.Logger
}

func NewClient(cfg Config, tokens *TokenManager, l logger.Logger) *Client {
	return &Client{
		cfg:    cfg,
		tokens: tokens,
		client: &http.Client{Timeout: apiRequestTimeout},
		logger: l,
	}
}

// Query runs the SQL-like filter language of the remote query endpoint,
// e.g. SELECT * FROM Customer WHERE DisplayName = 'Jane Doe'
func (c *Client) Query(ctx context.Context, query string) (QueryResponse, error) {
	var envelope queryEnvelope
	err := c.do(ctx, http.MethodGet, "/query?query="+url.QueryEscape(query), nil, &envelope)
	if err != nil {
		return QueryResponse{}, err
	}

	return envelope.QueryResponse, nil
}

func (c *Client) CreateCustomer(ctx context.Context, customer Customer) (Customer, error) {
	var envelope customerEnvelope
	err := c.do(ctx, http.MethodPost, "/customer", customer, &envelope)
	if err != nil {
		return Customer{}, err
	}

	return envelope.Customer, nil
}

func (c *Client) CreateItem(ctx context.Context, item Item) (Item, error) {
	var envelope itemEnvelope
	err := c.do(ctx, http.MethodPost, "/item", item, &envelope)
	if err != nil {
		return Item{}, err
	}

	return envelope.Item, nil
}

func (c *Client) CreateInvoice(ctx context.Context, invoice Invoice) (Invoice, error) {
	var envelope invoiceEnvelope
	err := c.do(ctx, http.MethodPost, "/invoice", invoice, &envelope)
	if err != nil {
		return Invoice{}, err
	}

	return envelope.Invoice, nil
}

// UpdateInvoice posts a full or sparse update. The invoice must carry the
// current SyncToken: the remote rejects the update with a 4xx when the token
// is stale, which callers surface as a terminal API error.
func (c *Client) UpdateInvoice(ctx context.Context, invoice Invoice) (Invoice, error) {
	var envelope invoiceEnvelope
	err := c.do(ctx, http.MethodPost, "/invoice", invoice, &envelope)
	if err != nil {
		return Invoice{}, err
	}

	return envelope.Invoice, nil
}

func (c *Client) do(ctx context.Context, method string, path string, body any, into any) error {
	token, err := c.tokens.ValidToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, method, path, body, token)
	if err != nil {
		return err
	}

	// The remote may revoke access tokens early. One forced refresh, one retry.
	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		c.logger.Warn("Got 401 from accounting api, forcing token refresh")

		token, err = c.tokens.Refresh(ctx)
		if err != nil {
			return err
		}

		resp, err = c.send(ctx, method, path, body, token)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if into == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

func (c *Client) send(ctx context.Context, method string, path string, body any, token Token) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	fullURL := c.cfg.apiBaseURL() + "/v3/company/" + token.RealmID + path

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// IsTemporary reports whether err is a retryable remote failure: a network
// error or a 5xx reply. Not-connected and 4xx errors are terminal.
func IsTemporary(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}

	// Network level failures (timeouts, refused connections) wrap url.Error
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
