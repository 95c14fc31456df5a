// Package client implements the pve.Client interface: the aggregate
// client plus the per-resource clients that decode API envelopes into
// typed models.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/virtstack-io/pve-client/internal/auth"
	"github.com/virtstack-io/pve-client/internal/constants"
	internalhttp "github.com/virtstack-io/pve-client/internal/http"
	"github.com/virtstack-io/pve-client/internal/session"
	"github.com/virtstack-io/pve-client/pkg/pve"
)

// Client implements the pve.Client interface.
type Client struct {
	httpClient    *internalhttp.Client
	authenticator *auth.Authenticator
	session       *session.Session
	username      string
	password      string

	nodes           pve.NodesClient
	virtualMachines pve.VirtualMachinesClient
	containers      pve.ContainersClient
	cluster         pve.ClusterClient
}

// New creates a client rooted at the given (already validated) base
// endpoint. httpOpts are passed through to the transport.
func New(base *url.URL, config *pve.Config, httpOpts ...internalhttp.Option) *Client {
	sess := session.New(base)
	httpClient := internalhttp.NewClient(base, sess, httpOpts...)

	client := &Client{
		httpClient:    httpClient,
		authenticator: auth.New(httpClient, sess),
		session:       sess,
		username:      config.Username,
		password:      config.Password,
	}

	client.initializeResourceClients()

	return client
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.nodes = NewNodesClient(c.httpClient, c.session)
	c.virtualMachines = NewVirtualMachinesClient(c.httpClient, c.session)
	c.containers = NewContainersClient(c.httpClient, c.session)
	c.cluster = NewClusterClient(c.httpClient, c.session)
}

// Login implements pve.Client.Login using the configured credentials.
func (c *Client) Login(ctx context.Context) (*pve.Ticket, error) {
	return c.authenticator.Login(ctx, c.username, c.password)
}

// LoginWithCredentials implements pve.Client.LoginWithCredentials.
func (c *Client) LoginWithCredentials(ctx context.Context, username, password string) (*pve.Ticket, error) {
	return c.authenticator.Login(ctx, username, password)
}

// Resume implements pve.Client.Resume.
func (c *Client) Resume(ticket *pve.Ticket) {
	if !ticket.Valid() {
		return
	}

	c.session.Store(ticket)
}

// Logout implements pve.Client.Logout.
func (c *Client) Logout() {
	c.authenticator.Logout()
}

// IsAuthenticated implements pve.Client.IsAuthenticated.
func (c *Client) IsAuthenticated() bool {
	return c.session.IsAuthenticated()
}

// Version implements pve.Client.Version. The version payload promises
// no stable schema, so it is returned as an opaque JSON object.
func (c *Client) Version(ctx context.Context) (pve.Payload, error) {
	err := requireAuth(c.session)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, constants.APIBasePath+"/version", nil)
	if err != nil {
		return nil, fmt.Errorf("getting version: %w", err)
	}

	payload, err := decodeItem[pve.Payload](resp.Body, "version")
	if err != nil {
		return nil, fmt.Errorf("parsing version response: %w", err)
	}

	return *payload, nil
}

// Nodes implements pve.Client.Nodes.
func (c *Client) Nodes() pve.NodesClient {
	return c.nodes
}

// VirtualMachines implements pve.Client.VirtualMachines.
func (c *Client) VirtualMachines() pve.VirtualMachinesClient {
	return c.virtualMachines
}

// Containers implements pve.Client.Containers.
func (c *Client) Containers() pve.ContainersClient {
	return c.containers
}

// Cluster implements pve.Client.Cluster.
func (c *Client) Cluster() pve.ClusterClient {
	return c.cluster
}

// requireAuth is the local pre-flight check every resource operation
// runs before touching the wire. An unauthenticated session fails here,
// with zero network calls, instead of bouncing off a 401.
func requireAuth(sess *session.Session) error {
	if !sess.IsAuthenticated() {
		return pve.ErrNotAuthenticated
	}

	return nil
}

// decodeList decodes the generic list envelope. An empty body on a 2xx
// response is an invalid response, not an authentication problem - the
// caller already knows it is authenticated at this point.
func decodeList[T any](body []byte) ([]T, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", pve.ErrInvalidResponse)
	}

	var envelope pve.ListResponse[T]

	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, &pve.DecodingError{Err: err}
	}

	return envelope.Data, nil
}

// decodeItem decodes the generic single-item envelope. A null or absent
// data field on a lookup is the upstream signal that the resource does
// not exist.
func decodeItem[T any](body []byte, identifier string) (*T, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", pve.ErrInvalidResponse)
	}

	var envelope pve.Response[T]

	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, &pve.DecodingError{Err: err}
	}

	if envelope.Data == nil {
		return nil, &pve.NotFoundError{Identifier: identifier}
	}

	return envelope.Data, nil
}

// decodeUPID decodes the {"data": "UPID:..."} envelope returned by
// asynchronous guest operations.
func decodeUPID(body []byte, identifier string) (pve.UPID, error) {
	upid, err := decodeItem[string](body, identifier)
	if err != nil {
		return "", err
	}

	return pve.UPID(*upid), nil
}
