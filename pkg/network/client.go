package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/ledger"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/shared"
)

type Config struct {
	Network    string
	BaseURL    string
	HTTPClient *http.Client
	Headers    map[string]string
	Logger     zerolog.Logger
}

// Client is the REST submission channel of a ledger node.
type Client struct {
	network    string
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
	logger     zerolog.Logger
}

// NewClient creates a new Client.
func NewClient(config Config) (*Client, error) {
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}

	baseURL, err := shared.ResolveEndpoint(network, config.BaseURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(config.BaseURL) != "" && shared.IsPublicNetwork(network) {
		config.Logger.Warn().
			Str("network", network).
			Str("endpoint", baseURL).
			Msg("explicit endpoint on a public network; make sure the node keeps historical data")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	headers := map[string]string{}
	for key, value := range config.Headers {
		headers[key] = value
	}

	return &Client{
		network:    network,
		baseURL:    baseURL,
		httpClient: httpClient,
		headers:    headers,
		logger:     config.Logger,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Network() string {
	return c.network
}

// Announce submits a signed transaction on the regular channel.
func (c *Client) Announce(ctx context.Context, signed ledger.SignedTransaction) error {
	return c.announce(ctx, "/transaction", signed)
}

// AnnouncePartial submits a signed bonded aggregate on the partial channel,
// where it waits for the missing cosignatures.
func (c *Client) AnnouncePartial(ctx context.Context, signed ledger.SignedTransaction) error {
	if signed.Type != ledger.TransactionTypeAggregateBonded {
		return fmt.Errorf("partial channel only accepts aggregate bonded transactions, got %s", signed.Type)
	}
	return c.announce(ctx, "/transaction/partial", signed)
}

func (c *Client) announce(ctx context.Context, path string, signed ledger.SignedTransaction) error {
	if strings.TrimSpace(signed.Payload) == "" {
		return fmt.Errorf("signed transaction payload is required")
	}
	if signed.Network != "" && signed.Network != c.network {
		return fmt.Errorf("transaction network %s does not match endpoint network %s", signed.Network, c.network)
	}

	var response announceResponse
	if err := c.doJSON(ctx, http.MethodPut, path, announceRequest{Payload: signed.Payload}, &response); err != nil {
		return err
	}
	c.logger.Debug().
		Str("hash", signed.Hash).
		Str("type", signed.Type.String()).
		Str("message", response.Message).
		Msg("transaction announced")
	return nil
}

// AccountTransactions returns the confirmed transactions of the account
// identified by publicKey.
func (c *Client) AccountTransactions(ctx context.Context, publicKey string, limit int) ([]AccountTransaction, error) {
	normalized := strings.TrimPrefix(strings.TrimSpace(publicKey), "0x")
	if normalized == "" {
		return nil, fmt.Errorf("public key is required")
	}

	path := fmt.Sprintf("/account/%s/transactions", url.PathEscape(normalized))
	if limit > 0 {
		path = fmt.Sprintf("%s?pageSize=%d", path, limit)
	}

	transactions := make([]AccountTransaction, 0)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// HasTransactions reports whether the account has any confirmed transaction.
func (c *Client) HasTransactions(ctx context.Context, publicKey string) (bool, error) {
	transactions, err := c.AccountTransactions(ctx, publicKey, 1)
	if err != nil {
		return false, err
	}
	return len(transactions) > 0, nil
}

func (c *Client) doJSON(ctx context.Context, method string, path string, payload any, target any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestURL := c.baseURL + path
	request, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return &RequestError{Method: method, URL: requestURL, Err: err}
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read node response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &RequestError{
			Method:     method,
			URL:        requestURL,
			StatusCode: response.StatusCode,
			Body:       strings.TrimSpace(string(responseBody)),
		}
	}

	if target == nil || len(bytes.TrimSpace(responseBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(responseBody, target); err != nil {
		return fmt.Errorf("failed to decode node response: %w", err)
	}
	return nil
}
