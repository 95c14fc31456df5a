// Package pveclient provides the primary entry point for constructing
// a Proxmox VE API client that implements the pve.Client interface.
//
// It layers configuration, HTTP transport, session state, and the
// ticket-based authentication exchange on top of the resource
// interfaces and types defined in the pve package. Most applications
// should import pveclient to build a client, then use the returned
// pve.Client to access resource-specific clients, for example Nodes(),
// VirtualMachines(), Containers(), Cluster().
//
// Quick start
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
//	  vms, err := cli.VirtualMachines().List(ctx, "pve1")
//	  if err != nil { log.Fatal(err) }
//	  _ = vms
//	}
//
// # TLS
//
// Clusters commonly run on self-signed certificates. Setting
// Config.SkipTLSVerify disables certificate trust verification only;
// the connection itself stays encrypted.
//
// # Retries
//
// The client never retries a classified failure on its own.
// Config.Retries wires a retrying HTTP engine (hashicorp/go-
// retryablehttp) underneath the transport for transient transport-level
// failures and 5xx responses; leave it at zero to disable.
package pveclient
