package api

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dynamolabs/oracle-alpha/internal/auth"
)

const (
	// DefaultBaseURL is used when neither the caller nor the environment
	// provides a base URL.
	DefaultBaseURL = "http://localhost:3900"

	// EnvBaseURL is the environment variable consulted by BaseURLFromEnv.
	EnvBaseURL = "ORACLE_API_URL"

	// DefaultTimeout bounds every REST call end to end.
	DefaultTimeout = 10 * time.Second

	// DefaultListLimit is applied when ListSignalsOptions.Limit is zero.
	DefaultListLimit = 20
)

// BaseURLFromEnv resolves the default base URL: ORACLE_API_URL when set,
// DefaultBaseURL otherwise.
func BaseURLFromEnv() string {
	if v := os.Getenv(EnvBaseURL); v != "" {
		return v
	}
	return DefaultBaseURL
}

// RequestMetrics receives one observation per completed HTTP request.
// The status code is 0 for transport failures. Implementations must be
// safe for concurrent use.
type RequestMetrics interface {
	ObserveRequest(op string, statusCode int, elapsed time.Duration)
}

// Client provides access to the ORACLE Alpha REST API.
//
// A Client holds only immutable configuration; one instance may serve
// concurrent callers.
type Client struct {
	baseURL    string
	credential auth.Credential
	httpClient *http.Client
	logger     *slog.Logger
	metrics    RequestMetrics
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a REST API client. An empty baseURL resolves through
// BaseURLFromEnv at construction time; no configuration is read after that.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = BaseURLFromEnv()
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithCredential sets the bearer credential attached to every request.
func WithCredential(cred auth.Credential) ClientOption {
	return func(c *Client) {
		c.credential = cred
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMetrics sets the request metrics sink.
func WithMetrics(m RequestMetrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}
