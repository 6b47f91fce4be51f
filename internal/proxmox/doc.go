// Package proxmox provides a client for the Proxmox VE REST API.
//
// The package defines the Client interface used by the rest of the
// application and an HTTP implementation that authenticates with API
// tokens (PVEAPIToken authorization scheme) against the /api2/json
// endpoint of a Proxmox VE cluster.
//
// A Client is always bound to exactly one cluster. Multi-cluster
// routing, caching, and selection live in the cluster package; this
// package only knows how to talk to a single API endpoint.
//
// # Authentication
//
// Proxmox API tokens have the form "user@realm!tokenname" plus a
// separate secret. The client sends them as:
//
//	Authorization: PVEAPIToken=user@realm!tokenname=secret
//
// Token material is never logged by this package.
package proxmox
