// Package constants defines client-wide constants for the wire
// protocol, timeouts, and defaults.
package constants

import "time"

// Wire protocol.
const (
	// APIBasePath prefixes every API resource path.
	APIBasePath = "/api2/json"

	// LoginPath is the ticket endpoint, relative to the base URL.
	LoginPath = APIBasePath + "/access/ticket"

	// AuthCookieName is the session cookie replayed on every request
	// once authenticated.
	AuthCookieName = "PVEAuthCookie"

	// CSRFHeaderName carries the CSRF prevention token on every
	// state-changing request.
	CSRFHeaderName = "CSRFPreventionToken"

	// FormContentType is the body encoding for the login exchange and
	// for write-operation parameters.
	FormContentType = "application/x-www-form-urlencoded"

	// JSONContentType is the accepted response encoding.
	JSONContentType = "application/json"
)

// Session.
const (
	// TicketLifetime is the client-side guess for how long an issued
	// ticket stays valid. The server does not report an expiry; the 401
	// response is the authoritative signal that re-authentication is
	// needed, so this value is advisory metadata only.
	TicketLifetime = 3600 * time.Second

	// CookiePath is the path attribute of the session cookie.
	CookiePath = "/"
)

// HTTP defaults.
const (
	// DefaultUserAgent identifies the client on every request.
	DefaultUserAgent = "pve-client/1.0"

	// DefaultHTTPTimeout bounds requests when the config does not set a
	// timeout of its own.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRetryWaitMin is the minimum backoff of the optional
	// retrying HTTP engine.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum backoff of the optional
	// retrying HTTP engine.
	DefaultRetryWaitMax = 30 * time.Second
)

// Cache defaults.
const (
	// DefaultCacheSize is the default entry cap of the in-memory cache.
	DefaultCacheSize = 1024

	// DefaultCacheTTL is applied to cached GET responses when no TTL is
	// configured.
	DefaultCacheTTL = time.Minute
)
