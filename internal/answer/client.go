package answer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultEndpoint is the hosted model the demo talks to.
const DefaultEndpoint = "https://skillcaptain.app/unicorn/p/llm/openai"

// Config configures the HTTP answer client.
type Config struct {
	Endpoint string
	// Cookie is sent verbatim as the Cookie header when non-empty.
	Cookie string
	// Timeout of zero leaves the request unbounded (http.Client default).
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client asks a hosted model through a single GET endpoint:
// <endpoint>?userId=<id>&prompt=<percent-encoded prompt>.
type Client struct {
	endpoint *url.URL
	cookie   string
	client   *http.Client
	logger   *zap.Logger
}

// NewClient validates the endpoint and builds a client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse answer endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("answer endpoint must be http(s), got %q", cfg.Endpoint)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		endpoint: u,
		cookie:   cfg.Cookie,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   cfg.Logger,
	}, nil
}

// Ask issues one GET request. A 200 body is returned verbatim; anything else
// becomes an HTTPError or TransportError result. There is no retry.
func (c *Client) Ask(ctx context.Context, prompt, userID string) Result {
	reqURL := c.requestURL(prompt, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return TransportFailure(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	c.logger.Debug("asking model", zap.String("endpoint", c.endpoint.Host), zap.String("user_id", userID), zap.Int("prompt_len", len(prompt)))
	resp, err := c.client.Do(req)
	if err != nil {
		return TransportFailure(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return TransportFailure(fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return HTTPFailure(resp.StatusCode, string(body))
	}
	return SuccessResult(string(body))
}

func (c *Client) requestURL(prompt, userID string) string {
	u := *c.endpoint
	q := "userId=" + escape(userID) + "&prompt=" + escape(prompt)
	if u.RawQuery != "" {
		q = u.RawQuery + "&" + q
	}
	u.RawQuery = q
	return u.String()
}

// escape percent-encodes s for a query value, spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
