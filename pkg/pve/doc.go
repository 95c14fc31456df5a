// Package pve provides types, interfaces, and helpers for working with
// the Proxmox VE REST API.
//
// # Overview
//
// The pve package defines the domain types (Node, VirtualMachine,
// Container, ClusterResource, Task) and the interfaces for
// resource-oriented clients (NodesClient, VirtualMachinesClient,
// ContainersClient, ClusterClient). A concrete implementation is
// provided by the pveclient package, which wires configuration,
// transport, and the ticket-based authentication exchange. Most
// consumers should import pveclient to construct a client and then
// interact with the resource interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/virtstack-io/pve-client/pkg/pve"
//	  "github.com/virtstack-io/pve-client/pkg/pveclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := pveclient.New(ctx, &pve.Config{
//	    BaseURL:  "https://pve.example.com:8006",
//	    Username: "root@pam",
//	    Password: "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  if _, err := cli.Login(ctx); err != nil { log.Fatal(err) }
//
//	  nodes, err := cli.Nodes().List(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = nodes
//	}
//
// # Sessions
//
// Login performs the ticket exchange against access/ticket and stores
// the issued ticket in the client's session. From then on every request
// replays the PVEAuthCookie session cookie, and every write request
// additionally carries the CSRFPreventionToken header. Logout drops the
// session locally; the server-side ticket simply ages out.
//
// # Errors
//
// Failures are classified into a closed taxonomy: AuthenticationError,
// NetworkError, APIError, DecodingError, NotFoundError,
// ConfigurationError, plus the sentinels ErrNotAuthenticated and
// ErrInvalidResponse. Helpers such as IsNotFound, IsAuthenticationFailed
// and IsAPIError make it easy to branch on common cases. Nothing is
// retried by the client itself; see Config.Retries for the opt-in
// retrying HTTP engine wired by pveclient.
//
// # Caching
//
// The package includes a pluggable Cache abstraction for GET responses
// with in-memory and NATS JetStream KV backends. pveclient composes a
// cache into the transport when Config.Cache is set.
package pve
