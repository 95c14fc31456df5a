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

// VirtualMachinesClient implements pve.VirtualMachinesClient.
type VirtualMachinesClient struct {
	httpClient *internalhttp.Client
	session    *session.Session
}

// NewVirtualMachinesClient creates a new QEMU guest client.
func NewVirtualMachinesClient(httpClient *internalhttp.Client, sess *session.Session) *VirtualMachinesClient {
	return &VirtualMachinesClient{
		httpClient: httpClient,
		session:    sess,
	}
}

func qemuPath(node string) string {
	return fmt.Sprintf("%s/nodes/%s/qemu", constants.APIBasePath, node)
}

func vmIdentifier(node string, vmid int) string {
	return fmt.Sprintf("vm %d on node %s", vmid, node)
}

// List implements pve.VirtualMachinesClient.List.
func (c *VirtualMachinesClient) List(ctx context.Context, node string) ([]pve.VirtualMachine, error) {
	err := requireAuth(c.session)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, qemuPath(node), nil)
	if err != nil {
		return nil, fmt.Errorf("listing virtual machines: %w", err)
	}

	vms, err := decodeList[pve.VirtualMachine](resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing virtual machines list response: %w", err)
	}

	return vms, nil
}

// Get implements pve.VirtualMachinesClient.Get. There is no
// single-guest listing endpoint, so the entry is selected from the
// listing.
func (c *VirtualMachinesClient) Get(ctx context.Context, node string, vmid int) (*pve.VirtualMachine, error) {
	vms, err := c.List(ctx, node)
	if err != nil {
		return nil, err
	}

	for i := range vms {
		if vms[i].VMID == vmid {
			return &vms[i], nil
		}
	}

	return nil, &pve.NotFoundError{Identifier: vmIdentifier(node, vmid)}
}

// Current implements pve.VirtualMachinesClient.Current.
func (c *VirtualMachinesClient) Current(ctx context.Context, node string, vmid int) (*pve.VMStatus, error) {
	err := requireAuth(c.session)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("%s/%d/status/current", qemuPath(node), vmid)

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		if pve.IsNotFound(err) {
			return nil, &pve.NotFoundError{Identifier: vmIdentifier(node, vmid)}
		}

		return nil, fmt.Errorf("getting virtual machine: %w", err)
	}

	status, err := decodeItem[pve.VMStatus](resp.Body, vmIdentifier(node, vmid))
	if err != nil {
		return nil, fmt.Errorf("parsing virtual machine response: %w", err)
	}

	return status, nil
}

// statusAction posts to one of the status/{action} endpoints and
// returns the task UPID.
func (c *VirtualMachinesClient) statusAction(ctx context.Context, node string, vmid int, action string) (pve.UPID, error) {
	err := requireAuth(c.session)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("%s/%d/status/%s", qemuPath(node), vmid, action)

	resp, err := c.httpClient.Post(ctx, path, nil)
	if err != nil {
		if pve.IsNotFound(err) {
			return "", &pve.NotFoundError{Identifier: vmIdentifier(node, vmid)}
		}

		return "", fmt.Errorf("%s virtual machine: %w", action, err)
	}

	upid, err := decodeUPID(resp.Body, vmIdentifier(node, vmid))
	if err != nil {
		return "", fmt.Errorf("parsing %s response: %w", action, err)
	}

	return upid, nil
}

// Start implements pve.VirtualMachinesClient.Start.
func (c *VirtualMachinesClient) Start(ctx context.Context, node string, vmid int) (pve.UPID, error) {
	return c.statusAction(ctx, node, vmid, "start")
}

// Stop implements pve.VirtualMachinesClient.Stop.
func (c *VirtualMachinesClient) Stop(ctx context.Context, node string, vmid int) (pve.UPID, error) {
	return c.statusAction(ctx, node, vmid, "stop")
}

// Shutdown implements pve.VirtualMachinesClient.Shutdown.
func (c *VirtualMachinesClient) Shutdown(ctx context.Context, node string, vmid int) (pve.UPID, error) {
	return c.statusAction(ctx, node, vmid, "shutdown")
}

// Reboot implements pve.VirtualMachinesClient.Reboot.
func (c *VirtualMachinesClient) Reboot(ctx context.Context, node string, vmid int) (pve.UPID, error) {
	return c.statusAction(ctx, node, vmid, "reboot")
}

// Create implements pve.VirtualMachinesClient.Create. params carries
// the form-encoded guest configuration; it must include "vmid".
func (c *VirtualMachinesClient) Create(ctx context.Context, node string, params map[string]string) (pve.UPID, error) {
	err := requireAuth(c.session)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Post(ctx, qemuPath(node), toValues(params))
	if err != nil {
		return "", fmt.Errorf("creating virtual machine: %w", err)
	}

	upid, err := decodeUPID(resp.Body, fmt.Sprintf("vm %s on node %s", params["vmid"], node))
	if err != nil {
		return "", fmt.Errorf("parsing create response: %w", err)
	}

	return upid, nil
}

// Update implements pve.VirtualMachinesClient.Update. The config
// endpoint returns a null data field on success, so only the error is
// meaningful.
func (c *VirtualMachinesClient) Update(ctx context.Context, node string, vmid int, params map[string]string) error {
	err := requireAuth(c.session)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("%s/%d/config", qemuPath(node), vmid)

	_, err = c.httpClient.Put(ctx, path, toValues(params))
	if err != nil {
		if pve.IsNotFound(err) {
			return &pve.NotFoundError{Identifier: vmIdentifier(node, vmid)}
		}

		return fmt.Errorf("updating virtual machine: %w", err)
	}

	return nil
}

// Delete implements pve.VirtualMachinesClient.Delete.
func (c *VirtualMachinesClient) Delete(ctx context.Context, node string, vmid int) (pve.UPID, error) {
	err := requireAuth(c.session)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("%s/%d", qemuPath(node), vmid)

	resp, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		if pve.IsNotFound(err) {
			return "", &pve.NotFoundError{Identifier: vmIdentifier(node, vmid)}
		}

		return "", fmt.Errorf("deleting virtual machine: %w", err)
	}

	upid, err := decodeUPID(resp.Body, vmIdentifier(node, vmid))
	if err != nil {
		return "", fmt.Errorf("parsing delete response: %w", err)
	}

	return upid, nil
}

// toValues converts a string map into form parameters.
func toValues(params map[string]string) url.Values {
	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}

	return values
}
