package cluster

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-proxmox/internal/server"
	"github.com/giantswarm/mcp-proxmox/internal/tools"
)

// RegisterClusterTools registers all cluster registry tools with the MCP server
func RegisterClusterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// pve_list_clusters tool
	listTool := mcp.NewTool("pve_list_clusters",
		mcp.WithDescription("List all configured Proxmox clusters with their metadata and routing patterns"),
	)

	s.AddTool(listTool, tools.WrapWithInstrumentation("pve_list_clusters", handleListClusters, sc))

	// pve_describe_cluster tool
	describeTool := mcp.NewTool("pve_describe_cluster",
		mcp.WithDescription("Show the configuration of one Proxmox cluster (credentials redacted)"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Cluster name"),
		),
	)

	s.AddTool(describeTool, tools.WrapWithInstrumentation("pve_describe_cluster", handleDescribeCluster, sc))

	// pve_validate_clusters tool
	validateTool := mcp.NewTool("pve_validate_clusters",
		mcp.WithDescription("Check connectivity to every configured Proxmox cluster"),
	)

	s.AddTool(validateTool, tools.WrapWithInstrumentation("pve_validate_clusters", handleValidateClusters, sc))

	// pve_cluster_status tool
	statusTool := mcp.NewTool("pve_cluster_status",
		mcp.WithDescription("Aggregate status across all Proxmox clusters: nodes, VMs, containers and storage counts"),
	)

	s.AddTool(statusTool, tools.WrapWithInstrumentation("pve_cluster_status", handleClusterStatus, sc))

	// pve_invalidate_cache tool
	invalidateTool := mcp.NewTool("pve_invalidate_cache",
		mcp.WithDescription("Drop cached Proxmox API clients so the next call reconnects (all clusters unless one is named)"),
		mcp.WithString("name",
			mcp.Description("Cluster whose cached client should be dropped (optional, all clusters when omitted)"),
		),
	)

	s.AddTool(invalidateTool, tools.WrapWithInstrumentation("pve_invalidate_cache", handleInvalidateCache, sc))

	return nil
}
