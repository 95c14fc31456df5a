package session_test

import (
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtstack-io/pve-client/internal/session"
	"github.com/virtstack-io/pve-client/pkg/pve"
)

func mustEndpoint(t *testing.T, raw string) *url.URL {
	t.Helper()

	endpoint, err := url.Parse(raw)
	require.NoError(t, err)

	return endpoint
}

func testTicket() *pve.Ticket {
	return &pve.Ticket{
		Username:            "root@pam",
		Ticket:              "PVE:root@pam:TICKET",
		CSRFPreventionToken: "CSRF-TOKEN",
	}
}

func TestSession_StoreAndClear(t *testing.T) {
	t.Parallel()

	sess := session.New(mustEndpoint(t, "https://pve.example.com:8006"))

	assert.False(t, sess.IsAuthenticated())

	sess.Store(testTicket())
	assert.True(t, sess.IsAuthenticated())

	sess.Clear()
	assert.False(t, sess.IsAuthenticated())

	// Clearing twice is a no-op, not an error.
	sess.Clear()
	assert.False(t, sess.IsAuthenticated())
}

func TestSession_StoreRefreshesExistingCookie(t *testing.T) {
	t.Parallel()

	sess := session.New(mustEndpoint(t, "https://pve.example.com:8006"))

	sess.Store(&pve.Ticket{Username: "root@pam", Ticket: "FIRST"})
	sess.Store(&pve.Ticket{Username: "root@pam", Ticket: "SECOND"})

	value, ok := sess.CookieHeaderValue("pve.example.com")
	require.True(t, ok)
	assert.Equal(t, "PVEAuthCookie=SECOND", value)

	diag := sess.Diagnose()
	assert.Equal(t, 1, diag.CookieCount)
}

func TestSession_CookieHeaderValue_DomainMatching(t *testing.T) {
	t.Parallel()

	sess := session.New(mustEndpoint(t, "https://pve.example.com:8006"))
	sess.Store(testTicket())

	t.Run("exact match", func(t *testing.T) {
		t.Parallel()

		value, ok := sess.CookieHeaderValue("pve.example.com")
		require.True(t, ok)
		assert.Equal(t, "PVEAuthCookie=PVE:root@pam:TICKET", value)
	})

	t.Run("no match for other host", func(t *testing.T) {
		t.Parallel()

		_, ok := sess.CookieHeaderValue("other.example.org")
		assert.False(t, ok)
	})

	t.Run("no match when unauthenticated", func(t *testing.T) {
		t.Parallel()

		empty := session.New(mustEndpoint(t, "https://pve.example.com:8006"))
		_, ok := empty.CookieHeaderValue("pve.example.com")
		assert.False(t, ok)
	})
}

func TestSession_CookieHeaderValue_SuffixMatching(t *testing.T) {
	t.Parallel()

	// A dot-prefixed cookie domain matches any host under that suffix.
	sess := session.New(mustEndpoint(t, "https://.example.com"))
	sess.Store(testTicket())

	value, ok := sess.CookieHeaderValue("pve.example.com")
	require.True(t, ok)
	assert.Contains(t, value, "PVEAuthCookie=")

	_, ok = sess.CookieHeaderValue("pve.otherdomain.com")
	assert.False(t, ok)
}

func TestSession_CSRFToken(t *testing.T) {
	t.Parallel()

	sess := session.New(mustEndpoint(t, "https://pve.example.com:8006"))

	_, ok := sess.CSRFToken()
	assert.False(t, ok)

	sess.Store(testTicket())

	token, ok := sess.CSRFToken()
	require.True(t, ok)
	assert.Equal(t, "CSRF-TOKEN", token)

	// A ticket without a CSRF token reports no token.
	sess.Store(&pve.Ticket{Username: "root@pam", Ticket: "NO-CSRF"})
	_, ok = sess.CSRFToken()
	assert.False(t, ok)
}

func TestSession_Diagnose(t *testing.T) {
	t.Parallel()

	sess := session.New(mustEndpoint(t, "https://pve.example.com:8006"))

	diag := sess.Diagnose()
	assert.False(t, diag.HasTicket)
	assert.Zero(t, diag.CookieCount)
	assert.False(t, diag.HasCSRF)
	assert.Equal(t, "ticket=false cookies=0 csrf=false", diag.String())

	sess.Store(testTicket())

	diag = sess.Diagnose()
	assert.True(t, diag.HasTicket)
	assert.Equal(t, 1, diag.CookieCount)
	assert.True(t, diag.HasCSRF)
}

// A reader must never observe a ticket without its cookie or a cookie
// without its ticket, no matter how store and clear interleave.
func TestSession_ConcurrentReadersNeverObserveTornState(t *testing.T) {
	t.Parallel()

	sess := session.New(mustEndpoint(t, "https://pve.example.com:8006"))

	const (
		readers    = 8
		iterations = 500
	)

	var waitGroup sync.WaitGroup

	done := make(chan struct{})

	for reader := 0; reader < readers; reader++ {
		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()

			for {
				select {
				case <-done:
					return
				default:
				}

				authenticated := sess.IsAuthenticated()
				_, hasCookie := sess.CookieHeaderValue("pve.example.com")
				diag := sess.Diagnose()

				if authenticated {
					assert.True(t, hasCookie || !sess.IsAuthenticated())
				}

				// The snapshot itself is always internally consistent.
				assert.Equal(t, diag.HasTicket, diag.CookieCount > 0)
			}
		}()
	}

	for iteration := 0; iteration < iterations; iteration++ {
		sess.Store(testTicket())
		sess.Clear()
	}

	close(done)
	waitGroup.Wait()
}
