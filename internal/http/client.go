// Package http implements the request-dispatch layer: it attaches the
// session cookie and CSRF token, performs the HTTP exchange, and
// classifies the outcome into the pve error taxonomy.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/virtstack-io/pve-client/internal/constants"
	"github.com/virtstack-io/pve-client/internal/session"
	"github.com/virtstack-io/pve-client/pkg/pve"
)

// Request describes a single API call.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
	Headers     map[string]string
}

// Response is the decoded-enough result of an API call: status, headers
// and raw body bytes. Typed decoding happens in the resource clients.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client performs HTTP calls against the API. It reads the shared
// session to attach credentials but never mutates it; only the
// authenticator does that, and only on login.
type Client struct {
	base       *url.URL
	session    *session.Session
	httpClient *http.Client
	userAgent  string
	logger     pve.Logger
	debug      bool
	cache      pve.Cache
	cacheTTL   time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP engine. This is how the
// embedding application injects timeouts, TLS settings, or a retrying
// engine.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent overrides the identifying User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger pve.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging through the logger.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithCache caches successful GET response bodies under the request URL
// for the given TTL. Write verbs always bypass the cache.
func WithCache(cache pve.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// NewClient creates an API client rooted at base, reading credentials
// from sess. sess may be nil for unauthenticated probes.
func NewClient(base *url.URL, sess *session.Session, opts ...Option) *Client {
	client := &Client{
		base:      base,
		session:   sess,
		userAgent: constants.DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request with form-encoded parameters, which is
// how the upstream API accepts write-operation bodies.
func (c *Client) Post(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:      http.MethodPost,
		Path:        path,
		Body:        encodeForm(params),
		ContentType: constants.FormContentType,
	})
}

// Put performs a PUT request with form-encoded parameters.
func (c *Client) Put(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:      http.MethodPut,
		Path:        path,
		Body:        encodeForm(params),
		ContentType: constants.FormContentType,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
	})
}

func encodeForm(params url.Values) []byte {
	if len(params) == 0 {
		return nil
	}

	return []byte(params.Encode())
}

// Do executes a request and classifies the outcome. On a classified
// non-2xx status the raw response is returned alongside the error so
// callers can inspect it.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	target := c.base.ResolveReference(&url.URL{Path: req.Path})
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	cacheable := c.cache != nil && req.Method == http.MethodGet
	if cacheable {
		entry, err := c.cache.Get(ctx, target.String())
		if err == nil {
			return &Response{StatusCode: http.StatusOK, Body: entry.Body}, nil
		}
	}

	httpReq, err := c.buildRequest(ctx, req, target)
	if err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    target.String(),
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &pve.NetworkError{Err: err}
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &pve.NetworkError{Err: err}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"url":         target.String(),
			"status_code": resp.StatusCode,
		})
	}

	err = c.classify(httpReq, resp)
	if err != nil {
		return resp, err
	}

	if cacheable {
		now := time.Now()
		_ = c.cache.Set(ctx, target.String(), &pve.CacheEntry{
			Body:      body,
			StoredAt:  now,
			ExpiresAt: now.Add(c.cacheTTL),
		})
	}

	return resp, nil
}

// buildRequest constructs the outgoing request with the fixed headers,
// the session cookie, and - on write verbs only - the CSRF token.
func (c *Client) buildRequest(ctx context.Context, req *Request, target *url.URL) (*http.Request, error) {
	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", constants.JSONContentType)
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.session != nil {
		// The upstream API requires the CSRF token on state-changing
		// verbs and rejects nothing for its absence on GET; the
		// asymmetry is part of the protocol contract.
		if req.Method != http.MethodGet {
			token, ok := c.session.CSRFToken()
			if ok {
				httpReq.Header.Set(constants.CSRFHeaderName, token)
			}
		}

		cookie, ok := c.session.CookieHeaderValue(target.Hostname())
		if ok {
			httpReq.Header.Set("Cookie", cookie)
		}
	}

	return httpReq, nil
}

// classify maps an HTTP status onto the error taxonomy. 2xx yields nil.
func (c *Client) classify(httpReq *http.Request, resp *Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil

	case resp.StatusCode == http.StatusUnauthorized:
		reason := "unauthorized"
		if c.session != nil {
			reason = fmt.Sprintf("unauthorized (session: %s)", c.session.Diagnose())
		}

		return &pve.AuthenticationError{Reason: reason}

	case resp.StatusCode == http.StatusForbidden:
		csrfAttached := httpReq.Header.Get(constants.CSRFHeaderName) != ""

		return &pve.AuthenticationError{
			Reason: fmt.Sprintf("forbidden (csrf token attached: %t)", csrfAttached),
		}

	case resp.StatusCode == http.StatusNotFound:
		return &pve.NotFoundError{}

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &pve.APIError{StatusCode: resp.StatusCode, Message: "Client error"}

	case resp.StatusCode >= 500 && resp.StatusCode < 600:
		return &pve.APIError{StatusCode: resp.StatusCode, Message: "Server error"}

	default:
		return &pve.APIError{StatusCode: resp.StatusCode, Message: "Unknown error"}
	}
}
