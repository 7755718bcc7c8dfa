package queryservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"agentic-surfer/internal/domain"
)

// DefaultEndpoint is the query service address used when none is configured.
const DefaultEndpoint = "http://localhost:8007/query"

const maxResponseBytes = 8 << 20

// Client is a focused client for the query service's single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client that posts queries to endpoint. The default HTTP
// client has no timeout: an exchange lasts until the service answers or the
// connection fails.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("queryservice: endpoint must not be empty")
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return http.DefaultClient
}

// Query sends req and decodes the response body. The HTTP status is not
// treated as a failure; only transport errors and undecodable bodies are.
func (c *Client) Query(ctx context.Context, req domain.QueryRequest) (domain.Reply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("queryservice: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Reply{}, fmt.Errorf("queryservice: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.resolvedHTTPClient().Do(httpReq)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("queryservice: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.logger.Debug("query service returned non-2xx status",
			zap.Int("status", res.StatusCode),
			zap.String("endpoint", c.endpoint),
		)
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return domain.Reply{}, fmt.Errorf("queryservice: read response body: %w", err)
	}

	reply, err := DecodeReply(raw)
	if err != nil {
		return domain.Reply{}, err
	}
	return reply, nil
}
