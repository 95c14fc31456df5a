// Package session holds the authentication state shared by the
// transport and the resource clients: the current ticket and the
// session cookie derived from it.
package session

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/virtstack-io/pve-client/internal/constants"
	"github.com/virtstack-io/pve-client/pkg/pve"
)

// Session is the thread-safe holder of the current ticket and derived
// session cookie. One Session is shared by the transport and every
// resource client of a pve.Client; independent clients in the same
// process each carry their own.
//
// The ticket and the cookie set are always read and written together
// under one lock, so concurrent readers never observe a ticket without
// its cookie or vice versa.
type Session struct {
	// mu guards ticket and cookies as one unit.
	mu      sync.RWMutex
	ticket  *pve.Ticket
	cookies []*http.Cookie

	// Endpoint attributes the derived cookie is scoped to.
	host   string
	secure bool
}

// New creates a session scoped to the given base endpoint. The
// endpoint's host becomes the cookie domain and its scheme decides the
// cookie's Secure flag.
func New(endpoint *url.URL) *Session {
	return &Session{
		host:   endpoint.Hostname(),
		secure: endpoint.Scheme == "https",
	}
}

// IsAuthenticated reports whether both a usable ticket and a session
// cookie are held.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ticket.Valid() && len(s.cookies) > 0
}

// Store derives the session cookie from the ticket and atomically
// replaces the prior ticket and any cookie matching the same
// (name, domain, path) triple. This is the single transition into the
// authenticated state; storing over an existing ticket refreshes the
// session.
func (s *Session) Store(ticket *pve.Ticket) {
	cookie := &http.Cookie{
		Name:    constants.AuthCookieName,
		Value:   ticket.Ticket,
		Domain:  s.host,
		Path:    constants.CookiePath,
		Secure:  s.secure,
		Expires: time.Now().Add(constants.TicketLifetime),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticket = ticket
	s.setCookie(cookie)
}

// setCookie inserts a cookie, replacing any held cookie with the same
// (name, domain, path) triple. Callers must hold mu.
func (s *Session) setCookie(cookie *http.Cookie) {
	for i, held := range s.cookies {
		if held.Name == cookie.Name && held.Domain == cookie.Domain && held.Path == cookie.Path {
			s.cookies[i] = cookie

			return
		}
	}

	s.cookies = append(s.cookies, cookie)
}

// Clear atomically drops the ticket and the cookie set, returning the
// session to the unauthenticated state. Clearing an already-clear
// session is a no-op.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticket = nil
	s.cookies = nil
}

// CookieHeaderValue computes the Cookie header value for the target
// host. A held cookie matches when its domain equals the host exactly,
// or - for domains starting with a dot - when the host ends with that
// suffix. The second return value is false when no cookie matches, in
// which case no Cookie header should be attached.
func (s *Session) CookieHeaderValue(host string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pairs []string

	for _, cookie := range s.cookies {
		if domainMatches(cookie.Domain, host) {
			pairs = append(pairs, fmt.Sprintf("%s=%s", cookie.Name, cookie.Value))
		}
	}

	if len(pairs) == 0 {
		return "", false
	}

	return strings.Join(pairs, "; "), true
}

// domainMatches implements the cookie domain-match rule: exact match,
// or suffix match for dot-prefixed domains.
func domainMatches(domain, host string) bool {
	if domain == host {
		return true
	}

	return strings.HasPrefix(domain, ".") && strings.HasSuffix(host, domain)
}

// CSRFToken returns the CSRF prevention token of the current ticket.
// The second return value is false when the session is unauthenticated
// or the ticket carries no token.
func (s *Session) CSRFToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ticket.Valid() || s.ticket.CSRFPreventionToken == "" {
		return "", false
	}

	return s.ticket.CSRFPreventionToken, true
}

// Diagnostics is a point-in-time description of the session, used to
// enrich 401/403 error messages.
type Diagnostics struct {
	HasTicket   bool
	CookieCount int
	HasCSRF     bool
}

func (d Diagnostics) String() string {
	return fmt.Sprintf("ticket=%t cookies=%d csrf=%t", d.HasTicket, d.CookieCount, d.HasCSRF)
}

// Diagnose captures a consistent snapshot of the session state.
func (s *Session) Diagnose() Diagnostics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Diagnostics{
		HasTicket:   s.ticket.Valid(),
		CookieCount: len(s.cookies),
		HasCSRF:     s.ticket.Valid() && s.ticket.CSRFPreventionToken != "",
	}
}
