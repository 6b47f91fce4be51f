package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/giantswarm/mcp-proxmox/internal/cluster"
	"github.com/giantswarm/mcp-proxmox/internal/proxmox"
	"github.com/giantswarm/mcp-proxmox/internal/server"
)

// ResolveClient resolves a Proxmox client for a tool request. The cluster
// argument wins when present; otherwise the resource name is matched against
// configured name patterns, falling back to the default cluster.
//
// # Return Values
//
// Returns (client, selectedCluster, "") on success or (nil, "", errorMessage)
// on failure. The error message is suitable for direct use in MCP tool
// responses and never contains credentials.
func ResolveClient(ctx context.Context, sc *server.ServerContext, clusterName, resourceName string) (proxmox.Client, string, string) {
	client, selected, err := sc.ClientFor(ctx, clusterName, resourceName)
	if err != nil {
		return nil, "", FormatClusterError(err, clusterName)
	}
	return client, selected, ""
}

// FormatClusterError formats a cluster registry error into a user-friendly
// message for MCP tool responses. Struct errors carry enough context to tell
// the caller how to fix the request; everything else degrades to a generic
// message with the underlying cause.
func FormatClusterError(err error, clusterName string) string {
	if err == nil {
		return ""
	}

	var notFound *cluster.ClusterNotFoundError
	if errors.As(err, &notFound) {
		return fmt.Sprintf("cluster '%s' not found - use 'pve_list_clusters' to see available clusters", notFound.ClusterName)
	}

	var ambiguous *cluster.AmbiguousSelectionError
	if errors.As(err, &ambiguous) {
		return err.Error()
	}

	var connErr *cluster.ConnectionError
	if errors.As(err, &connErr) {
		return fmt.Sprintf("cannot connect to cluster '%s' - check endpoint and credentials: %v", connErr.ClusterName, connErr.Err)
	}

	switch {
	case errors.Is(err, cluster.ErrClusterNotFound):
		if clusterName != "" {
			return fmt.Sprintf("cluster '%s' not found - use 'pve_list_clusters' to see available clusters", clusterName)
		}
		return "cluster not found"
	case errors.Is(err, cluster.ErrAmbiguousSelection):
		return "resource name matches multiple clusters - specify the cluster explicitly"
	case errors.Is(err, cluster.ErrConnectionFailed):
		return fmt.Sprintf("cluster '%s' is unreachable - check network connectivity", clusterName)
	case errors.Is(err, cluster.ErrRegistryClosed):
		return "cluster registry is shutting down"
	}

	return fmt.Sprintf("failed to access cluster: %v", err)
}
