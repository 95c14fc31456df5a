package client

import (
	"context"
	"fmt"

	"github.com/virtstack-io/pve-client/internal/constants"
	internalhttp "github.com/virtstack-io/pve-client/internal/http"
	"github.com/virtstack-io/pve-client/internal/session"
	"github.com/virtstack-io/pve-client/pkg/pve"
)

// NodesClient implements pve.NodesClient.
type NodesClient struct {
	httpClient *internalhttp.Client
	session    *session.Session
}

// NewNodesClient creates a new nodes client.
func NewNodesClient(httpClient *internalhttp.Client, sess *session.Session) *NodesClient {
	return &NodesClient{
		httpClient: httpClient,
		session:    sess,
	}
}

// List implements pve.NodesClient.List.
func (c *NodesClient) List(ctx context.Context) ([]pve.Node, error) {
	err := requireAuth(c.session)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, constants.APIBasePath+"/nodes", nil)
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}

	nodes, err := decodeList[pve.Node](resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing nodes list response: %w", err)
	}

	return nodes, nil
}

// Get implements pve.NodesClient.Get. The API has no single-node
// summary endpoint, so the node is selected from the listing.
func (c *NodesClient) Get(ctx context.Context, node string) (*pve.Node, error) {
	nodes, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range nodes {
		if nodes[i].Node == node {
			return &nodes[i], nil
		}
	}

	return nil, &pve.NotFoundError{Identifier: fmt.Sprintf("node %s", node)}
}

// Status implements pve.NodesClient.Status.
func (c *NodesClient) Status(ctx context.Context, node string) (*pve.NodeStatus, error) {
	err := requireAuth(c.session)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("%s/nodes/%s/status", constants.APIBasePath, node)

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		if pve.IsNotFound(err) {
			return nil, &pve.NotFoundError{Identifier: fmt.Sprintf("node %s", node)}
		}

		return nil, fmt.Errorf("getting node status: %w", err)
	}

	status, err := decodeItem[pve.NodeStatus](resp.Body, fmt.Sprintf("node %s", node))
	if err != nil {
		return nil, fmt.Errorf("parsing node status response: %w", err)
	}

	return status, nil
}
