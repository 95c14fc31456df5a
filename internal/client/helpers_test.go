package client

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtstack-io/pve-client/internal/auth"
	internalhttp "github.com/virtstack-io/pve-client/internal/http"
	"github.com/virtstack-io/pve-client/internal/session"
	"github.com/virtstack-io/pve-client/pkg/pve"
)

// newTestClient creates a client against the stub server. When
// authenticated is set, the session is seeded with a ticket directly so
// tests need no login round-trip.
func newTestClient(t *testing.T, serverURL string, authenticated bool) *Client {
	t.Helper()

	base, err := url.Parse(serverURL)
	require.NoError(t, err)

	sess := session.New(base)
	if authenticated {
		sess.Store(&pve.Ticket{
			Username:            "root@pam",
			Ticket:              "ABC123",
			CSRFPreventionToken: "XYZ",
		})
	}

	httpClient := internalhttp.NewClient(base, sess)

	client := &Client{
		httpClient:    httpClient,
		authenticator: auth.New(httpClient, sess),
		session:       sess,
		username:      "root@pam",
		password:      "secret",
	}

	client.initializeResourceClients()

	return client
}
