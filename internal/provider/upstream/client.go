// Package upstream is the client for the vendor chat API: catalog fetch,
// chat submission and reassembly of its SSE stream.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/davidbz/chatrelay/internal/domain"
	"github.com/davidbz/chatrelay/internal/observability"
)

const (
	endpointModels = "models"
	endpointChat   = "chat"

	maxCatalogBytes = 8 << 20
	maxDrainBytes   = 64 << 10
)

// Client calls the vendor API. It implements domain.ChatBackend and
// domain.CatalogSource.
type Client struct {
	config     Config
	httpClient *http.Client
	// streamClient has no timeout so long generations are not cut off.
	streamClient *http.Client
}

// NewClient creates a new vendor API client.
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
		streamClient: &http.Client{},
	}
}

// CheckConfigured reports a missing vendor credential.
func (c *Client) CheckConfigured() error {
	if c.config.APIKey == "" {
		return domain.ErrUpstreamNotConfigured
	}
	return nil
}

// FetchModels retrieves the raw vendor model list.
func (c *Client) FetchModels(ctx context.Context) ([]domain.CatalogModel, error) {
	if err := c.CheckConfigured(); err != nil {
		return nil, err
	}

	httpReq, err := c.newRequest(ctx, http.MethodGet, c.config.ModelsURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(c.httpClient, httpReq, endpointModels)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	return ParseCatalog(body)
}

// Chat submits the chat request and streams back the decoded events.
func (c *Client) Chat(ctx context.Context, req *domain.VendorChatRequest) (<-chan domain.StreamEvent, error) {
	if err := c.CheckConfigured(); err != nil {
		return nil, err
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, c.config.ChatURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}

	//nolint:bodyclose // Response body is closed by the StreamEvents goroutine
	resp, err := c.do(c.streamClient, httpReq, endpointChat)
	if err != nil {
		return nil, err
	}

	return StreamEvents(ctx, resp.Body, c.config.StreamBuffer), nil
}

// newRequest builds a vendor request carrying the fixed header set.
func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.config.Host != "" {
		httpReq.Host = c.config.Host
	}
	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	httpReq.Header.Set("Accept", c.config.Accept)
	httpReq.Header.Set("Accept-Language", c.config.AcceptLanguage)
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Connection", "close")
	httpReq.Close = true

	return httpReq, nil
}

// do executes the request. A non-2xx response is drained, closed and reported
// as *domain.UpstreamStatusError; its body never leaves this function.
func (c *Client) do(client *http.Client, httpReq *http.Request, endpoint string) (*http.Response, error) {
	logger := observability.FromContext(httpReq.Context())
	start := time.Now()

	resp, err := client.Do(httpReq)
	observability.UpstreamLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("upstream %s request failed: %w", endpoint, err)
	}
	observability.UpstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxDrainBytes))
		_ = resp.Body.Close()

		logger.Warn("upstream returned non-success status",
			observability.String("endpoint", endpoint),
			observability.Int("status", resp.StatusCode),
			observability.String("body", truncate(body)))

		return nil, &domain.UpstreamStatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	logger.Debug("upstream responded",
		observability.String("endpoint", endpoint),
		observability.Duration("latency", time.Since(start)))

	return resp, nil
}
