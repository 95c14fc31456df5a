// Package pveclient provides the main entry point for creating Proxmox
// VE API clients.
package pveclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/virtstack-io/pve-client/internal/client"
	"github.com/virtstack-io/pve-client/internal/constants"
	internalhttp "github.com/virtstack-io/pve-client/internal/http"
	"github.com/virtstack-io/pve-client/pkg/pve"
)

// New creates a new Proxmox VE API client from the configuration. The
// returned client is unauthenticated until Login is called.
func New(ctx context.Context, config *pve.Config) (pve.Client, error) {
	if config == nil {
		return nil, pve.ErrConfigRequired
	}

	base, err := normalizeEndpoint(config.BaseURL)
	if err != nil {
		return nil, err
	}

	httpOpts, err := buildHTTPOptions(config)
	if err != nil {
		return nil, err
	}

	return client.New(base, config, httpOpts...), nil
}

// NewWithCredentials creates a client and immediately performs the
// login exchange.
func NewWithCredentials(ctx context.Context, endpoint, username, password string) (pve.Client, error) {
	cli, err := New(ctx, &pve.Config{
		BaseURL:  endpoint,
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	_, err = cli.Login(ctx)
	if err != nil {
		return nil, err
	}

	return cli, nil
}

// normalizeEndpoint validates the base URL and applies the same
// conveniences users expect from the CLI: default https scheme, no
// trailing slash.
func normalizeEndpoint(endpoint string) (*url.URL, error) {
	if endpoint == "" {
		return nil, &pve.ConfigurationError{Message: "base URL is required"}
	}

	endpoint = strings.TrimSuffix(endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, &pve.ConfigurationError{Message: fmt.Sprintf("parsing base URL: %v", err)}
	}

	if base.Host == "" {
		return nil, &pve.ConfigurationError{Message: "base URL has no host"}
	}

	return base, nil
}

// buildHTTPOptions assembles the transport options from the config.
func buildHTTPOptions(config *pve.Config) ([]internalhttp.Option, error) {
	opts := []internalhttp.Option{
		internalhttp.WithHTTPClient(buildHTTPEngine(config)),
	}

	if config.UserAgent != "" {
		opts = append(opts, internalhttp.WithUserAgent(config.UserAgent))
	}

	if config.Logger != nil {
		opts = append(opts, internalhttp.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, internalhttp.WithDebug(true))
	}

	if config.Cache != nil {
		cache, err := pve.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("building response cache: %w", err)
		}

		ttl := config.Cache.TTL
		if ttl <= 0 {
			ttl = constants.DefaultCacheTTL
		}

		opts = append(opts, internalhttp.WithCache(cache, ttl))
	}

	return opts, nil
}

// buildHTTPEngine constructs the HTTP engine the transport dispatches
// through. The core never retries classified failures; when Retries is
// set, retrying happens here, underneath the transport, at the
// embedding-application boundary the retry budget is reserved for.
func buildHTTPEngine(config *pve.Config) *http.Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	var transport http.RoundTripper
	if config.SkipTLSVerify {
		// Certificate trust verification only; the connection stays on
		// TLS.
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- explicit opt-in for self-signed cluster certificates
		}
	}

	if config.Retries > 0 {
		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = config.Retries
		retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
		retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
		retryClient.Logger = nil

		if transport != nil {
			retryClient.HTTPClient.Transport = transport
		}

		engine := retryClient.StandardClient()
		engine.Timeout = timeout

		return engine
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
