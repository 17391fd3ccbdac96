package client

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

	"github.com/bobmcallan/managed-db-mcp/internal/common"
)

// maxResponseSize caps the response body read from the control plane.
// Bodies past the cap are rejected rather than cut short.
var maxResponseSize int64 = 50 << 20 // 50MB

// CorrelationHeader carries the per-invocation correlation ID to the control plane.
const CorrelationHeader = "X-Correlation-ID"

// Request describes one call against the Managed DB API.
// Path is relative to the base URL and must start with "/".
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{} // nil sends no body
}

// Response is a successful (2xx) reply from the Managed DB API.
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the response body as JSON into v.
func (r *Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// ManagedDBClient communicates with the Managed DB control-plane REST API.
// Each call builds its own http.Client; nothing is shared between calls.
type ManagedDBClient struct {
	baseURL string
	timeout time.Duration
	logger  *common.Logger
}

// NewManagedDBClient creates a new client targeting the given API base URL.
func NewManagedDBClient(baseURL string, timeout time.Duration, logger *common.Logger) *ManagedDBClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &ManagedDBClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger,
	}
}

// BaseURL returns the configured API base URL.
func (c *ManagedDBClient) BaseURL() string {
	return c.baseURL
}

// newHTTPClient returns a client scoped to a single request. The caller
// must invoke the returned release func once the response is consumed.
func (c *ManagedDBClient) newHTTPClient() (*http.Client, func()) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	hc := &http.Client{
		Timeout:   c.timeout,
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return hc, transport.CloseIdleConnections
}

// Do sends req and returns the response body for 2xx replies.
// Other statuses are returned as *APIError.
func (c *ManagedDBClient) Do(ctx context.Context, req Request) (*Response, error) {
	logger := c.logger
	correlationID := CorrelationID(ctx)
	if correlationID != "" {
		logger = logger.WithCorrelationId(correlationID)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		jsonData, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if correlationID != "" {
		httpReq.Header.Set(CorrelationHeader, correlationID)
	}

	logger.Debug().Str("method", req.Method).Str("path", req.Path).Msg("managed-db request")

	httpClient, release := c.newHTTPClient()
	defer release()

	start := time.Now()
	resp, err := httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		logger.Error().Str("method", req.Method).Str("path", req.Path).Dur("duration", duration).Str("error", err.Error()).Msg("managed-db request failed")
		return nil, fmt.Errorf("request to managed-db API failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > maxResponseSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrResponseTooLarge, maxResponseSize)
	}

	logger.Debug().Int("status", resp.StatusCode).Dur("duration", duration).Msg("managed-db response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, body)
		logger.Warn().Int("status", resp.StatusCode).Str("detail", apiErr.Detail).Msg("managed-db API rejected request")
		return nil, apiErr
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
