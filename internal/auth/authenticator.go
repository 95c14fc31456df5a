// Package auth implements the ticket-based login exchange. It is the
// only component that mutates the session.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"

	"github.com/virtstack-io/pve-client/internal/constants"
	internalhttp "github.com/virtstack-io/pve-client/internal/http"
	"github.com/virtstack-io/pve-client/internal/session"
	"github.com/virtstack-io/pve-client/pkg/pve"
)

// Authenticator performs the login exchange against the ticket endpoint
// and populates the session from the response.
type Authenticator struct {
	httpClient *internalhttp.Client
	session    *session.Session
}

// New creates an authenticator bound to the given transport and session.
func New(httpClient *internalhttp.Client, sess *session.Session) *Authenticator {
	return &Authenticator{
		httpClient: httpClient,
		session:    sess,
	}
}

// Login exchanges the credentials for a ticket and stores it in the
// session. In the login context every HTTP-level failure is an
// authentication failure from the caller's point of view, so non-2xx
// statuses, empty bodies and decode failures all surface as
// AuthenticationError. Transport-level failures (DNS, refused
// connection, timeout) keep their NetworkError identity - no request
// reached the server, so nothing was authenticated or rejected.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*pve.Ticket, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := a.httpClient.Post(ctx, constants.LoginPath, form)
	if err != nil {
		netErr := &pve.NetworkError{}
		if errors.As(err, &netErr) {
			return nil, err
		}

		authErr := &pve.AuthenticationError{}
		if errors.As(err, &authErr) {
			return nil, err
		}

		return nil, &pve.AuthenticationError{Reason: "login request rejected", Err: err}
	}

	if len(resp.Body) == 0 {
		return nil, &pve.AuthenticationError{Reason: "empty response body from ticket endpoint"}
	}

	var envelope pve.Response[pve.Ticket]

	err = json.Unmarshal(resp.Body, &envelope)
	if err != nil {
		return nil, &pve.AuthenticationError{Reason: "malformed ticket response", Err: err}
	}

	if !envelope.Data.Valid() {
		return nil, &pve.AuthenticationError{Reason: "ticket response contained no ticket"}
	}

	a.session.Store(envelope.Data)

	return envelope.Data, nil
}

// Logout drops the session ticket and cookie. The server-side ticket is
// not revoked; it simply stops being replayed and ages out.
func (a *Authenticator) Logout() {
	a.session.Clear()
}
