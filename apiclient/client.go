// Package apiclient is the HTTP client wrapper for the forecast API: a fixed
// base origin, default JSON headers, and an interceptor that attaches the
// current bearer token to every outbound request.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// TokenSource returns the token to send, or "" when there is none.
// It is consulted on every request.
type TokenSource func() string

// UnauthorizedHandler is called when a request that carried sentToken was
// answered with 401.
type UnauthorizedHandler func(ctx context.Context, sentToken string)

// Client sends requests to one fixed origin.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	transport  *bearerTransport
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithBaseTransport replaces the transport the interceptor delegates to.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport.base = rt
	}
}

// WithHeader adds a default header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.transport.defaults.Set(key, value)
	}
}

// New creates a Client for baseURL. tokens is required.
func New(baseURL string, tokens TokenSource, options ...Option) (*Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("[apiclient New] token source is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("[apiclient New] invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("[apiclient New] base url %q must be absolute", baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	t := &bearerTransport{
		base:   http.DefaultTransport,
		tokens: tokens,
		defaults: http.Header{
			"Accept":       []string{contentTypeJSON},
			"Content-Type": []string{contentTypeJSON},
		},
	}
	c := &Client{
		baseURL:    u,
		transport:  t,
		httpClient: &http.Client{Transport: t, Timeout: 30 * time.Second},
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// OnUnauthorized registers the handler called for 401 responses to
// requests that carried a bearer token. It replaces any previous handler.
func (c *Client) OnUnauthorized(h UnauthorizedHandler) {
	c.transport.setUnauthorized(h)
}

// HTTPClient returns the intercepted client for callers that build their
// own requests. The interceptor applies to them as well.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// URL resolves path against the base origin.
func (c *Client) URL(path string) string {
	u := *c.baseURL
	p, q, _ := strings.Cut(path, "?")
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(p, "/")
	u.RawQuery = q
	return u.String()
}

// NewRequest builds a request for path on the base origin.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, method, c.URL(path), body)
}

// Do sends req. Errors from the transport are returned unchanged.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// Get sends a GET for path.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// PostForm sends form as application/x-www-form-urlencoded.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	req, err := c.NewRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentTypeForm)
	return c.Do(req)
}

// Post sends body with the given content type.
func (c *Client) Post(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := c.NewRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(req)
}

// DecodeJSON decodes resp's body into v and closes it.
func DecodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("[apiclient DecodeJSON] %s %s: %w", resp.Request.Method, resp.Request.URL.Path, err)
	}
	return nil
}

// IsSuccess reports a 2xx status.
func IsSuccess(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
