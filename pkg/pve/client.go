package pve

import (
	"context"
	"time"
)

// Client is the aggregate typed client for a Proxmox VE cluster.
type Client interface {
	// Login performs the ticket exchange and moves the session to the
	// authenticated state. Subsequent calls replay the session cookie and
	// CSRF token automatically.
	Login(ctx context.Context) (*Ticket, error)
	// LoginWithCredentials authenticates with explicit credentials,
	// overriding the ones from Config.
	LoginWithCredentials(ctx context.Context, username, password string) (*Ticket, error)
	// Resume seeds the session with a previously issued ticket, skipping
	// the login round-trip. Tickets without a ticket string are ignored.
	// The caller is responsible for the ticket still being valid
	// server-side.
	Resume(ticket *Ticket)
	// Logout drops the session ticket and cookie. It does not call the
	// API; the ticket simply stops being replayed.
	Logout()
	// IsAuthenticated reports whether a usable ticket and session cookie
	// are currently held.
	IsAuthenticated() bool
	// Version returns the API version payload. The endpoint promises no
	// stable schema, so the result is an opaque JSON object.
	Version(ctx context.Context) (Payload, error)

	Nodes() NodesClient
	VirtualMachines() VirtualMachinesClient
	Containers() ContainersClient
	Cluster() ClusterClient
}

// NodesClient provides access to cluster nodes.
type NodesClient interface {
	List(ctx context.Context) ([]Node, error)
	Get(ctx context.Context, node string) (*Node, error)
	Status(ctx context.Context, node string) (*NodeStatus, error)
}

// VirtualMachinesClient provides access to QEMU guests. Get returns
// the listing entry of a single guest; Current returns its live
// status from the status/current endpoint.
type VirtualMachinesClient interface {
	List(ctx context.Context, node string) ([]VirtualMachine, error)
	Get(ctx context.Context, node string, vmid int) (*VirtualMachine, error)
	Current(ctx context.Context, node string, vmid int) (*VMStatus, error)
	Start(ctx context.Context, node string, vmid int) (UPID, error)
	Stop(ctx context.Context, node string, vmid int) (UPID, error)
	Shutdown(ctx context.Context, node string, vmid int) (UPID, error)
	Reboot(ctx context.Context, node string, vmid int) (UPID, error)
	Create(ctx context.Context, node string, params map[string]string) (UPID, error)
	Update(ctx context.Context, node string, vmid int, params map[string]string) error
	Delete(ctx context.Context, node string, vmid int) (UPID, error)
}

// ContainersClient provides access to LXC guests. Get and Current
// split the same way as on VirtualMachinesClient.
type ContainersClient interface {
	List(ctx context.Context, node string) ([]Container, error)
	Get(ctx context.Context, node string, vmid int) (*Container, error)
	Current(ctx context.Context, node string, vmid int) (*ContainerStatus, error)
	Start(ctx context.Context, node string, vmid int) (UPID, error)
	Stop(ctx context.Context, node string, vmid int) (UPID, error)
	Shutdown(ctx context.Context, node string, vmid int) (UPID, error)
	Create(ctx context.Context, node string, params map[string]string) (UPID, error)
	Update(ctx context.Context, node string, vmid int, params map[string]string) error
	Delete(ctx context.Context, node string, vmid int) (UPID, error)
}

// ClusterClient provides access to cluster-wide resources.
type ClusterClient interface {
	Resources(ctx context.Context, resourceType string) ([]ClusterResource, error)
	Status(ctx context.Context) ([]ClusterStatusEntry, error)
	Tasks(ctx context.Context) ([]Task, error)
	NextID(ctx context.Context) (int, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a pve.Client.
//
// # Authentication
//
// Username must carry its realm suffix ("root@pam", "monitor@pve").
// Credentials are held only long enough to perform the ticket exchange;
// the client keeps the issued ticket, never the password.
//
// # Timeouts, retries, and TLS
//
// Per-request deadlines are controlled via the context passed to client
// methods; Timeout, when set, additionally bounds every request at the
// HTTP engine level. Retries is stored for the embedding application:
// the core never retries a classified failure, but pveclient.New wires
// a retrying HTTP engine underneath the transport when Retries > 0.
// SkipTLSVerify disables certificate trust verification only - the
// connection itself stays on TLS.
type Config struct {
	// BaseURL: base URL for the API (e.g. "https://pve.example.com:8006").
	// pveclient.New normalizes this value by trimming a trailing slash and
	// adding "https://" if no scheme is present.
	BaseURL string

	// Username: account name including realm, e.g. "root@pam".
	Username string
	// Password: account password, used only during the login exchange.
	Password string

	// Timeout: optional HTTP engine timeout applied to every request.
	Timeout time.Duration
	// Retries: retry budget reserved for caller-level wrapping. Zero
	// disables the retrying engine entirely.
	Retries int
	// SkipTLSVerify: skip certificate trust verification. Encryption is
	// not affected.
	SkipTLSVerify bool
	// Debug: enables verbose HTTP request/response logging when a Logger
	// is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Cache: optional GET-response cache configuration. Nil disables
	// caching.
	Cache *CacheConfig
}
