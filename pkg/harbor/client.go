package harbor

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// API paths
const (
	APIBasePath     = "/api/v2.0"
	APIPathProjects = "/projects"
)

// Request parameters and headers understood by Harbor
const (
	DefaultScheme   = "https"
	DefaultPageSize = 100

	QueryPage     = "page"
	QueryPageSize = "page_size"

	HeaderTotalCount            = "X-Total-Count"
	HeaderIsResourceName        = "X-Is-Resource-Name"
	HeaderAcceptVulnerabilities = "X-Accept-Vulnerabilities"
)

// Common errors
var (
	ErrNotFound         = fmt.Errorf("resource not found")
	ErrUnauthorized     = fmt.Errorf("unauthorized")
	ErrForbidden        = fmt.Errorf("forbidden")
	ErrBadRequest       = fmt.Errorf("bad request")
	ErrServerError      = fmt.Errorf("server error")
	ErrConnectionFailed = fmt.Errorf("connection failed")
	ErrUnexpectedStatus = fmt.Errorf("unexpected status code")
	ErrInvalidLink      = fmt.Errorf("invalid addition link")
)

// --- Client Configuration ---

// ClientOption represents a functional option for configuring the client
type ClientOption func(*ClientConfig) error

// ClientConfig represents the configuration for the client
type ClientConfig struct {
	BaseURL               string
	Username              string
	Password              string
	Timeout               time.Duration
	UserAgent             string
	HTTPClient            *http.Client
	Headers               map[string]string
	TLSInsecureSkipVerify bool
	Logger                *logrus.Logger
}

// DefaultClientConfig returns the default client configuration.
// A zero Timeout leaves requests without a deadline.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:               0,
		UserAgent:             "harborster/1.0",
		Headers:               make(map[string]string),
		TLSInsecureSkipVerify: false,
	}
}

// WithHostname sets the registry host; the scheme is always https
func WithHostname(hostname string) ClientOption {
	return func(config *ClientConfig) error {
		hostname = strings.TrimSuffix(strings.TrimSpace(hostname), "/")
		if hostname == "" {
			return fmt.Errorf("hostname cannot be empty")
		}
		if strings.Contains(hostname, "://") {
			return fmt.Errorf("hostname must not include a scheme: %s", hostname)
		}
		config.BaseURL = fmt.Sprintf("%s://%s", DefaultScheme, hostname)
		return nil
	}
}

// WithBaseURL sets the base URL (scheme and host)
func WithBaseURL(baseURL string) ClientOption {
	return func(config *ClientConfig) error {
		if baseURL == "" {
			return fmt.Errorf("base URL cannot be empty")
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base URL: %s", baseURL)
		}
		config.BaseURL = strings.TrimSuffix(baseURL, "/")
		return nil
	}
}

// WithBasicAuth sets the credentials sent with every request
func WithBasicAuth(username, password string) ClientOption {
	return func(config *ClientConfig) error {
		config.Username = username
		config.Password = password
		return nil
	}
}

// WithTimeout sets the timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(config *ClientConfig) error {
		if timeout < 0 {
			return fmt.Errorf("timeout must not be negative")
		}
		config.Timeout = timeout
		return nil
	}
}

// WithUserAgent sets the user agent
func WithUserAgent(userAgent string) ClientOption {
	return func(config *ClientConfig) error {
		if userAgent == "" {
			return fmt.Errorf("user agent cannot be empty")
		}
		config.UserAgent = userAgent
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(config *ClientConfig) error {
		if client == nil {
			return fmt.Errorf("HTTP client cannot be nil")
		}
		config.HTTPClient = client
		return nil
	}
}

// WithHeader adds an HTTP header
func WithHeader(key, value string) ClientOption {
	return func(config *ClientConfig) error {
		if key == "" {
			return fmt.Errorf("header key cannot be empty")
		}
		if config.Headers == nil {
			config.Headers = make(map[string]string)
		}
		config.Headers[key] = value
		return nil
	}
}

// WithTLSInsecureSkipVerify sets the TLS insecure skip verify option
func WithTLSInsecureSkipVerify(skip bool) ClientOption {
	return func(config *ClientConfig) error {
		config.TLSInsecureSkipVerify = skip
		return nil
	}
}

// WithLogger sets the logger
func WithLogger(logger *logrus.Logger) ClientOption {
	return func(config *ClientConfig) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		config.Logger = logger
		return nil
	}
}

// Client is a read-only client for the Harbor v2.0 REST API
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Harbor API client
func NewClient(opts ...ClientOption) (*Client, error) {
	config := DefaultClientConfig()

	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, fmt.Errorf("option application failed: %w", err)
		}
	}

	if config.BaseURL == "" {
		return nil, fmt.Errorf("registry hostname or base URL is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: config.TLSInsecureSkipVerify}
		httpClient = &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		}
	} else if config.TLSInsecureSkipVerify {
		if transport, ok := httpClient.Transport.(*http.Transport); ok {
			if transport.TLSClientConfig == nil {
				transport.TLSClientConfig = &tls.Config{}
			}
			transport.TLSClientConfig.InsecureSkipVerify = true
		} else {
			logger.Warn("Cannot set TLSInsecureSkipVerify on custom HTTPClient transport")
		}
	}

	// Copy so the caller's client is left untouched
	wrapped := *httpClient
	wrapped.Transport = newLoggingTransport(httpClient.Transport, logger)

	return &Client{
		config:     config,
		httpClient: &wrapped,
		logger:     logger,
	}, nil
}

// BaseURL returns the scheme and host every request is sent to
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// buildURL builds the full API URL for a given path
func (c *Client) buildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s%s%s", c.config.BaseURL, APIBasePath, path)
}

// resolveLink resolves an href returned by Harbor against the base host.
// Hrefs already carry the API root, so it is not added again.
func (c *Client) resolveLink(href string) string {
	return fmt.Sprintf("%s/%s", c.config.BaseURL, strings.TrimPrefix(href, "/"))
}

// newRequest creates a new GET request. Query values are merged into any
// query already present on rawURL.
func (c *Client) newRequest(ctx context.Context, rawURL string, query url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if len(query) > 0 {
		q := req.URL.Query()
		for key, values := range query {
			q[key] = values
		}
		req.URL.RawQuery = q.Encode()
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	for key, value := range c.config.Headers {
		req.Header.Set(key, value)
	}
	if c.config.Username != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	return req, nil
}

// statusError maps a status code to one of the common errors
func statusError(code int) error {
	switch code {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusBadRequest:
		return ErrBadRequest
	}
	if code >= 500 {
		return ErrServerError
	}
	return nil
}

// handleResponse reads the body and decodes it into out. Any status other
// than 200 is an error wrapping ErrUnexpectedStatus.
func (c *Client) handleResponse(resp *http.Response, out interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		bodySnippet := string(body)
		if len(bodySnippet) > 100 {
			bodySnippet = bodySnippet[:100] + "..."
		}
		if baseErr := statusError(resp.StatusCode); baseErr != nil {
			return fmt.Errorf("%w %d: %w (body: %s)", ErrUnexpectedStatus, resp.StatusCode, baseErr, bodySnippet)
		}
		return fmt.Errorf("%w %d (body: %s)", ErrUnexpectedStatus, resp.StatusCode, bodySnippet)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// get issues an authenticated GET and decodes the JSON body into out.
// The response headers are returned so callers can read pagination totals.
func (c *Client) get(ctx context.Context, rawURL string, query url.Values, headers map[string]string, out interface{}) (http.Header, error) {
	req, err := c.newRequest(ctx, rawURL, query)
	if err != nil {
		return nil, err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if err := c.handleResponse(resp, out); err != nil {
		return nil, err
	}
	return resp.Header, nil
}
