// Package cluster implements the multi-cluster registry at the heart
// of mcp-proxmox.
//
// A Registry holds the set of configured Proxmox clusters and is the
// sole entry point tool handlers use to obtain a ready-to-use API
// client. Each request is routed by a deterministic selection policy
// (explicit cluster name beats resource-name pattern matching beats
// the default cluster), and resolved clients are cached with a TTL so
// repeated tool calls do not rebuild connections.
//
// # Components
//
//   - ClusterConfig / RegistryConfig: immutable configuration loaded
//     once at startup (config.go).
//   - SelectCluster: the pure selection policy (selection.go).
//   - ClientCache: TTL-based client cache with singleflight
//     construction dedup (cache.go).
//   - Registry: the façade composing the above (registry.go).
//
// # Concurrency
//
// The RegistryConfig is immutable after load and needs no locking.
// The ClientCache is the only mutable shared state; it is safe for
// concurrent use and concurrent construction requests for the same
// cluster are collapsed into a single in-flight construction.
//
// # Errors
//
// All failures surface as one of the sentinel errors in errors.go
// (ErrClusterNotFound, ErrAmbiguousSelection, ErrConnectionFailed,
// ErrRegistryClosed), matchable with errors.Is. Aggregate operations
// (ValidateAll, AggregateStatus) never fail as a whole; per-cluster
// failures are embedded in their result maps.
package cluster
