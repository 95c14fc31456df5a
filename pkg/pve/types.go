package pve

import (
	"fmt"
	"strconv"
	"strings"
)

// FlexibleInt decodes from either a JSON number or a quoted number.
// Several API fields changed between those shapes across releases.
type FlexibleInt int

func (i *FlexibleInt) UnmarshalJSON(data []byte) error {
	value, err := strconv.Atoi(strings.Trim(string(data), `"`))
	if err != nil {
		return fmt.Errorf("parsing %s as integer: %w", string(data), err)
	}

	*i = FlexibleInt(value)

	return nil
}

// Ticket is the authentication artifact issued by the access/ticket
// endpoint. A ticket without a ticket string is not usable for
// authenticated calls.
type Ticket struct {
	Username            string `json:"username"                      yaml:"username"`
	Ticket              string `json:"ticket"                        yaml:"ticket"`
	CSRFPreventionToken string `json:"CSRFPreventionToken,omitempty" yaml:"csrf_prevention_token,omitempty"`
	ClusterName         string `json:"clustername,omitempty"         yaml:"clustername,omitempty"`
}

// Valid reports whether the ticket can back authenticated calls.
func (t *Ticket) Valid() bool {
	return t != nil && t.Ticket != ""
}

// ListResponse is the generic list envelope returned by collection
// endpoints.
type ListResponse[T any] struct {
	Data    []T      `json:"data"              yaml:"data"`
	Errors  []string `json:"errors,omitempty"  yaml:"errors,omitempty"`
	Success *bool    `json:"success,omitempty" yaml:"success,omitempty"`
	Total   *int     `json:"total,omitempty"   yaml:"total,omitempty"`
}

// Response is the generic single-item envelope. A null Data on a
// lookup-by-id call signals that the resource does not exist.
type Response[T any] struct {
	Data *T `json:"data" yaml:"data"`
}

// Payload is an opaque JSON object, used only for endpoints with no
// stable schema (version info, cluster config).
type Payload map[string]interface{}

// Node represents an entry from /nodes.
type Node struct {
	Node           string  `json:"node"                      yaml:"node"`
	Status         string  `json:"status"                    yaml:"status"`
	ID             string  `json:"id,omitempty"              yaml:"id,omitempty"`
	Level          string  `json:"level,omitempty"           yaml:"level,omitempty"`
	CPU            float64 `json:"cpu,omitempty"             yaml:"cpu,omitempty"`
	MaxCPU         int     `json:"maxcpu,omitempty"          yaml:"maxcpu,omitempty"`
	Mem            int64   `json:"mem,omitempty"             yaml:"mem,omitempty"`
	MaxMem         int64   `json:"maxmem,omitempty"          yaml:"maxmem,omitempty"`
	Disk           int64   `json:"disk,omitempty"            yaml:"disk,omitempty"`
	MaxDisk        int64   `json:"maxdisk,omitempty"         yaml:"maxdisk,omitempty"`
	Uptime         int64   `json:"uptime,omitempty"          yaml:"uptime,omitempty"`
	SSLFingerprint string  `json:"ssl_fingerprint,omitempty" yaml:"ssl_fingerprint,omitempty"`
}

// NodeStatus represents /nodes/{node}/status.
type NodeStatus struct {
	Uptime     int64       `json:"uptime"               yaml:"uptime"`
	CPU        float64     `json:"cpu"                  yaml:"cpu"`
	LoadAvg    []string    `json:"loadavg,omitempty"    yaml:"loadavg,omitempty"`
	KVersion   string      `json:"kversion,omitempty"   yaml:"kversion,omitempty"`
	PVEVersion string      `json:"pveversion,omitempty" yaml:"pveversion,omitempty"`
	Memory     MemoryUsage `json:"memory"               yaml:"memory"`
	Swap       MemoryUsage `json:"swap"                 yaml:"swap"`
	RootFS     DiskUsage   `json:"rootfs"               yaml:"rootfs"`
}

// MemoryUsage holds a total/used/free triple in bytes.
type MemoryUsage struct {
	Total int64 `json:"total" yaml:"total"`
	Used  int64 `json:"used"  yaml:"used"`
	Free  int64 `json:"free"  yaml:"free"`
}

// DiskUsage holds filesystem usage in bytes.
type DiskUsage struct {
	Total int64 `json:"total" yaml:"total"`
	Used  int64 `json:"used"  yaml:"used"`
	Avail int64 `json:"avail" yaml:"avail"`
	Free  int64 `json:"free"  yaml:"free"`
}

// VirtualMachine represents an entry from /nodes/{node}/qemu.
type VirtualMachine struct {
	VMID      int     `json:"vmid"                yaml:"vmid"`
	Name      string  `json:"name,omitempty"      yaml:"name,omitempty"`
	Status    string  `json:"status"              yaml:"status"`
	CPU       float64 `json:"cpu,omitempty"       yaml:"cpu,omitempty"`
	CPUs      int     `json:"cpus,omitempty"      yaml:"cpus,omitempty"`
	Mem       int64   `json:"mem,omitempty"       yaml:"mem,omitempty"`
	MaxMem    int64   `json:"maxmem,omitempty"    yaml:"maxmem,omitempty"`
	Disk      int64   `json:"disk,omitempty"      yaml:"disk,omitempty"`
	MaxDisk   int64   `json:"maxdisk,omitempty"   yaml:"maxdisk,omitempty"`
	Uptime    int64   `json:"uptime,omitempty"    yaml:"uptime,omitempty"`
	NetIn     int64   `json:"netin,omitempty"     yaml:"netin,omitempty"`
	NetOut    int64   `json:"netout,omitempty"    yaml:"netout,omitempty"`
	DiskRead  int64   `json:"diskread,omitempty"  yaml:"diskread,omitempty"`
	DiskWrite int64   `json:"diskwrite,omitempty" yaml:"diskwrite,omitempty"`
	Template  int     `json:"template,omitempty"  yaml:"template,omitempty"`
	PID       int     `json:"pid,omitempty"       yaml:"pid,omitempty"`
}

// VMStatus represents /nodes/{node}/qemu/{vmid}/status/current.
type VMStatus struct {
	VirtualMachine `yaml:",inline"`

	QMPStatus string `json:"qmpstatus,omitempty" yaml:"qmpstatus,omitempty"`
	HA        *HA    `json:"ha,omitempty"        yaml:"ha,omitempty"`
}

// HA describes high-availability management state of a guest.
type HA struct {
	Managed int `json:"managed" yaml:"managed"`
}

// Container represents an entry from /nodes/{node}/lxc. The listing
// reports vmid as a string on current releases and as a number on
// older ones.
type Container struct {
	VMID      FlexibleInt `json:"vmid"           yaml:"vmid"`
	Name      string      `json:"name,omitempty"      yaml:"name,omitempty"`
	Status    string      `json:"status"              yaml:"status"`
	CPU       float64     `json:"cpu,omitempty"       yaml:"cpu,omitempty"`
	CPUs      int         `json:"cpus,omitempty"      yaml:"cpus,omitempty"`
	Mem       int64       `json:"mem,omitempty"       yaml:"mem,omitempty"`
	MaxMem    int64       `json:"maxmem,omitempty"    yaml:"maxmem,omitempty"`
	Swap      int64       `json:"swap,omitempty"      yaml:"swap,omitempty"`
	MaxSwap   int64       `json:"maxswap,omitempty"   yaml:"maxswap,omitempty"`
	Disk      int64       `json:"disk,omitempty"      yaml:"disk,omitempty"`
	MaxDisk   int64       `json:"maxdisk,omitempty"   yaml:"maxdisk,omitempty"`
	Uptime    int64       `json:"uptime,omitempty"    yaml:"uptime,omitempty"`
	Template  int         `json:"template,omitempty"  yaml:"template,omitempty"`
	Tags      string      `json:"tags,omitempty"      yaml:"tags,omitempty"`
	LockState string      `json:"lock,omitempty"      yaml:"lock,omitempty"`
}

// ContainerStatus represents /nodes/{node}/lxc/{vmid}/status/current.
type ContainerStatus struct {
	Container `yaml:",inline"`

	HA *HA `json:"ha,omitempty" yaml:"ha,omitempty"`
}

// ClusterResource represents an entry from /cluster/resources.
type ClusterResource struct {
	ID      string  `json:"id"                yaml:"id"`
	Type    string  `json:"type"              yaml:"type"`
	Node    string  `json:"node,omitempty"    yaml:"node,omitempty"`
	Status  string  `json:"status,omitempty"  yaml:"status,omitempty"`
	Name    string  `json:"name,omitempty"    yaml:"name,omitempty"`
	VMID    int     `json:"vmid,omitempty"    yaml:"vmid,omitempty"`
	Pool    string  `json:"pool,omitempty"    yaml:"pool,omitempty"`
	Storage string  `json:"storage,omitempty" yaml:"storage,omitempty"`
	CPU     float64 `json:"cpu,omitempty"     yaml:"cpu,omitempty"`
	MaxCPU  int     `json:"maxcpu,omitempty"  yaml:"maxcpu,omitempty"`
	Mem     int64   `json:"mem,omitempty"     yaml:"mem,omitempty"`
	MaxMem  int64   `json:"maxmem,omitempty"  yaml:"maxmem,omitempty"`
	Disk    int64   `json:"disk,omitempty"    yaml:"disk,omitempty"`
	MaxDisk int64   `json:"maxdisk,omitempty" yaml:"maxdisk,omitempty"`
	Uptime  int64   `json:"uptime,omitempty"  yaml:"uptime,omitempty"`
	Level   string  `json:"level,omitempty"   yaml:"level,omitempty"`
}

// ClusterStatusEntry represents an entry from /cluster/status.
type ClusterStatusEntry struct {
	ID      string `json:"id"                yaml:"id"`
	Name    string `json:"name"              yaml:"name"`
	Type    string `json:"type"              yaml:"type"`
	IP      string `json:"ip,omitempty"      yaml:"ip,omitempty"`
	Online  int    `json:"online,omitempty"  yaml:"online,omitempty"`
	Local   int    `json:"local,omitempty"   yaml:"local,omitempty"`
	NodeID  int    `json:"nodeid,omitempty"  yaml:"nodeid,omitempty"`
	Quorate int    `json:"quorate,omitempty" yaml:"quorate,omitempty"`
	Version int    `json:"version,omitempty" yaml:"version,omitempty"`
}

// Task represents an entry from /cluster/tasks or a node task listing.
type Task struct {
	UPID       string `json:"upid"                 yaml:"upid"`
	Node       string `json:"node"                 yaml:"node"`
	Type       string `json:"type"                 yaml:"type"`
	ID         string `json:"id,omitempty"         yaml:"id,omitempty"`
	User       string `json:"user,omitempty"       yaml:"user,omitempty"`
	Status     string `json:"status,omitempty"     yaml:"status,omitempty"`
	ExitStatus string `json:"exitstatus,omitempty" yaml:"exitstatus,omitempty"`
	PID        int    `json:"pid,omitempty"        yaml:"pid,omitempty"`
	StartTime  int64  `json:"starttime,omitempty"  yaml:"starttime,omitempty"`
	EndTime    int64  `json:"endtime,omitempty"    yaml:"endtime,omitempty"`
}

// UPID is the task identifier returned by asynchronous guest
// operations (start, stop, create, delete).
type UPID string
