package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/virtstack-io/pve-client/internal/constants"
	internalhttp "github.com/virtstack-io/pve-client/internal/http"
	"github.com/virtstack-io/pve-client/internal/session"
	"github.com/virtstack-io/pve-client/pkg/pve"
)

// ClusterClient implements pve.ClusterClient.
type ClusterClient struct {
	httpClient *internalhttp.Client
	session    *session.Session
}

// NewClusterClient creates a new cluster client.
func NewClusterClient(httpClient *internalhttp.Client, sess *session.Session) *ClusterClient {
	return &ClusterClient{
		httpClient: httpClient,
		session:    sess,
	}
}

// Resources implements pve.ClusterClient.Resources. resourceType, when
// non-empty, filters server-side ("vm", "storage", "node", "sdn").
func (c *ClusterClient) Resources(ctx context.Context, resourceType string) ([]pve.ClusterResource, error) {
	err := requireAuth(c.session)
	if err != nil {
		return nil, err
	}

	var query url.Values
	if resourceType != "" {
		query = url.Values{"type": []string{resourceType}}
	}

	resp, err := c.httpClient.Get(ctx, constants.APIBasePath+"/cluster/resources", query)
	if err != nil {
		return nil, fmt.Errorf("listing cluster resources: %w", err)
	}

	resources, err := decodeList[pve.ClusterResource](resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing cluster resources response: %w", err)
	}

	return resources, nil
}

// Status implements pve.ClusterClient.Status.
func (c *ClusterClient) Status(ctx context.Context) ([]pve.ClusterStatusEntry, error) {
	err := requireAuth(c.session)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, constants.APIBasePath+"/cluster/status", nil)
	if err != nil {
		return nil, fmt.Errorf("getting cluster status: %w", err)
	}

	entries, err := decodeList[pve.ClusterStatusEntry](resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing cluster status response: %w", err)
	}

	return entries, nil
}

// Tasks implements pve.ClusterClient.Tasks.
func (c *ClusterClient) Tasks(ctx context.Context) ([]pve.Task, error) {
	err := requireAuth(c.session)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, constants.APIBasePath+"/cluster/tasks", nil)
	if err != nil {
		return nil, fmt.Errorf("listing cluster tasks: %w", err)
	}

	tasks, err := decodeList[pve.Task](resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing cluster tasks response: %w", err)
	}

	return tasks, nil
}

// NextID implements pve.ClusterClient.NextID. The endpoint returns the
// id as a JSON string on current releases and as a number on older
// ones; both are accepted.
func (c *ClusterClient) NextID(ctx context.Context) (int, error) {
	err := requireAuth(c.session)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Get(ctx, constants.APIBasePath+"/cluster/nextid", nil)
	if err != nil {
		return 0, fmt.Errorf("getting next free vmid: %w", err)
	}

	id, err := decodeItem[pve.FlexibleInt](resp.Body, "next free vmid")
	if err != nil {
		return 0, fmt.Errorf("parsing next free vmid response: %w", err)
	}

	return int(*id), nil
}
