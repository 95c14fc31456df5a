package client

import (
	"context"
	"fmt"

	"github.com/virtstack-io/pve-client/internal/constants"
	internalhttp "github.com/virtstack-io/pve-client/internal/http"
	"github.com/virtstack-io/pve-client/internal/session"
	"github.com/virtstack-io/pve-client/pkg/pve"
)

// ContainersClient implements pve.ContainersClient.
type ContainersClient struct {
	httpClient *internalhttp.Client
	session    *session.Session
}

// NewContainersClient creates a new LXC guest client.
func NewContainersClient(httpClient *internalhttp.Client, sess *session.Session) *ContainersClient {
	return &ContainersClient{
		httpClient: httpClient,
		session:    sess,
	}
}

func lxcPath(node string) string {
	return fmt.Sprintf("%s/nodes/%s/lxc", constants.APIBasePath, node)
}

func ctIdentifier(node string, vmid int) string {
	return fmt.Sprintf("container %d on node %s", vmid, node)
}

// List implements pve.ContainersClient.List.
func (c *ContainersClient) List(ctx context.Context, node string) ([]pve.Container, error) {
	err := requireAuth(c.session)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, lxcPath(node), nil)
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}

	containers, err := decodeList[pve.Container](resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing containers list response: %w", err)
	}

	return containers, nil
}

// Get implements pve.ContainersClient.Get. There is no
// single-container listing endpoint, so the entry is selected from
// the listing.
func (c *ContainersClient) Get(ctx context.Context, node string, vmid int) (*pve.Container, error) {
	containers, err := c.List(ctx, node)
	if err != nil {
		return nil, err
	}

	for i := range containers {
		if int(containers[i].VMID) == vmid {
			return &containers[i], nil
		}
	}

	return nil, &pve.NotFoundError{Identifier: ctIdentifier(node, vmid)}
}

// Current implements pve.ContainersClient.Current.
func (c *ContainersClient) Current(ctx context.Context, node string, vmid int) (*pve.ContainerStatus, error) {
	err := requireAuth(c.session)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("%s/%d/status/current", lxcPath(node), vmid)

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		if pve.IsNotFound(err) {
			return nil, &pve.NotFoundError{Identifier: ctIdentifier(node, vmid)}
		}

		return nil, fmt.Errorf("getting container: %w", err)
	}

	status, err := decodeItem[pve.ContainerStatus](resp.Body, ctIdentifier(node, vmid))
	if err != nil {
		return nil, fmt.Errorf("parsing container response: %w", err)
	}

	return status, nil
}

// statusAction posts to one of the status/{action} endpoints and
// returns the task UPID.
func (c *ContainersClient) statusAction(ctx context.Context, node string, vmid int, action string) (pve.UPID, error) {
	err := requireAuth(c.session)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("%s/%d/status/%s", lxcPath(node), vmid, action)

	resp, err := c.httpClient.Post(ctx, path, nil)
	if err != nil {
		if pve.IsNotFound(err) {
			return "", &pve.NotFoundError{Identifier: ctIdentifier(node, vmid)}
		}

		return "", fmt.Errorf("%s container: %w", action, err)
	}

	upid, err := decodeUPID(resp.Body, ctIdentifier(node, vmid))
	if err != nil {
		return "", fmt.Errorf("parsing %s response: %w", action, err)
	}

	return upid, nil
}

// Start implements pve.ContainersClient.Start.
func (c *ContainersClient) Start(ctx context.Context, node string, vmid int) (pve.UPID, error) {
	return c.statusAction(ctx, node, vmid, "start")
}

// Stop implements pve.ContainersClient.Stop.
func (c *ContainersClient) Stop(ctx context.Context, node string, vmid int) (pve.UPID, error) {
	return c.statusAction(ctx, node, vmid, "stop")
}

// Shutdown implements pve.ContainersClient.Shutdown.
func (c *ContainersClient) Shutdown(ctx context.Context, node string, vmid int) (pve.UPID, error) {
	return c.statusAction(ctx, node, vmid, "shutdown")
}

// Create implements pve.ContainersClient.Create. params carries the
// form-encoded container configuration; it must include "vmid" and
// "ostemplate".
func (c *ContainersClient) Create(ctx context.Context, node string, params map[string]string) (pve.UPID, error) {
	err := requireAuth(c.session)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Post(ctx, lxcPath(node), toValues(params))
	if err != nil {
		return "", fmt.Errorf("creating container: %w", err)
	}

	upid, err := decodeUPID(resp.Body, fmt.Sprintf("container %s on node %s", params["vmid"], node))
	if err != nil {
		return "", fmt.Errorf("parsing create response: %w", err)
	}

	return upid, nil
}

// Update implements pve.ContainersClient.Update.
func (c *ContainersClient) Update(ctx context.Context, node string, vmid int, params map[string]string) error {
	err := requireAuth(c.session)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("%s/%d/config", lxcPath(node), vmid)

	_, err = c.httpClient.Put(ctx, path, toValues(params))
	if err != nil {
		if pve.IsNotFound(err) {
			return &pve.NotFoundError{Identifier: ctIdentifier(node, vmid)}
		}

		return fmt.Errorf("updating container: %w", err)
	}

	return nil
}

// Delete implements pve.ContainersClient.Delete.
func (c *ContainersClient) Delete(ctx context.Context, node string, vmid int) (pve.UPID, error) {
	err := requireAuth(c.session)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("%s/%d", lxcPath(node), vmid)

	resp, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		if pve.IsNotFound(err) {
			return "", &pve.NotFoundError{Identifier: ctIdentifier(node, vmid)}
		}

		return "", fmt.Errorf("deleting container: %w", err)
	}

	upid, err := decodeUPID(resp.Body, ctIdentifier(node, vmid))
	if err != nil {
		return "", fmt.Errorf("parsing delete response: %w", err)
	}

	return upid, nil
}
