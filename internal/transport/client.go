package transport

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/errors"
)

// Settings bounds every call made to one external system.
type Settings struct {
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`                 // Total time for one request including the body
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"` // Time to establish the TCP connection
}

// DefaultSettings returns the default per-system bounds.
func DefaultSettings() Settings {
	return Settings{
		Timeout:        constants.DefaultTimeout,
		ConnectTimeout: constants.DefaultConnectTimeout,
	}
}

// withDefaults fills unset bounds from d.
func (s Settings) withDefaults(d Settings) Settings {
	if s.Timeout <= 0 {
		s.Timeout = d.Timeout
	}
	if s.ConnectTimeout <= 0 {
		s.ConnectTimeout = d.ConnectTimeout
	}
	return s
}

// Observer receives one call per completed request.
type Observer interface {
	ObserveRequest(system string, status int, duration time.Duration, err error)
}

// Client performs GET requests against one external system.
type Client struct {
	system     string
	settings   Settings
	http       *http.Client
	userAgent  string
	decorators []Decorator
	observer   Observer
	maxBody    int64
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithDecorators appends request decorators.
func WithDecorators(d ...Decorator) Option {
	return func(c *Client) {
		c.decorators = append(c.decorators, d...)
	}
}

// WithObserver reports request outcomes to o.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithMaxBodySize caps the bytes read from one response body.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// WithHTTPClient replaces the underlying http.Client. The client's own
// timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a client for system with the given bounds.
func New(system string, settings Settings, opts ...Option) *Client {
	settings = settings.withDefaults(DefaultSettings())

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   settings.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = settings.ConnectTimeout

	c := &Client{
		system:    system,
		settings:  settings,
		http:      &http.Client{Timeout: settings.Timeout, Transport: transport},
		userAgent: UserAgent(""),
		maxBody:   constants.MaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// System returns the name of the external system this client talks to.
func (c *Client) System() string {
	return c.system
}

// Settings returns the effective bounds.
func (c *Client) Settings() Settings {
	return c.settings
}

// Get performs a GET request with the common headers and decorators applied.
// The caller closes the response body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewValidationError("url", url, err.Error())
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for _, decorate := range c.decorators {
		decorate(req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.observer != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		c.observer.ObserveRequest(c.system, status, time.Since(start), err)
	}
	if err != nil {
		return nil, c.classify(ctx, url, err)
	}
	return resp, nil
}
