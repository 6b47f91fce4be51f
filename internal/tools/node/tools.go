package node

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-proxmox/internal/server"
	"github.com/giantswarm/mcp-proxmox/internal/tools"
)

// RegisterNodeTools registers all node tools with the MCP server
func RegisterNodeTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// pve_list_nodes tool
	listOpts := []mcp.ToolOption{
		mcp.WithDescription("List all nodes in a Proxmox cluster with CPU, memory and uptime"),
	}
	listOpts = append(listOpts, tools.AddClusterParam(sc)...)

	listTool := mcp.NewTool("pve_list_nodes", listOpts...)
	s.AddTool(listTool, tools.WrapWithInstrumentation("pve_list_nodes", handleListNodes, sc))

	// pve_node_status tool
	statusOpts := []mcp.ToolOption{
		mcp.WithDescription("Show detailed status of one Proxmox node: load, memory, swap and root filesystem"),
	}
	statusOpts = append(statusOpts, tools.AddClusterParam(sc)...)
	statusOpts = append(statusOpts,
		mcp.WithString("node",
			mcp.Required(),
			mcp.Description("Node name"),
		),
	)

	statusTool := mcp.NewTool("pve_node_status", statusOpts...)
	s.AddTool(statusTool, tools.WrapWithInstrumentation("pve_node_status", handleNodeStatus, sc))

	// pve_list_bridges tool
	bridgeOpts := []mcp.ToolOption{
		mcp.WithDescription("List network bridges on a Proxmox node, for picking a guest network bridge"),
	}
	bridgeOpts = append(bridgeOpts, tools.AddClusterParam(sc)...)
	bridgeOpts = append(bridgeOpts,
		mcp.WithString("node",
			mcp.Required(),
			mcp.Description("Node name"),
		),
	)

	bridgeTool := mcp.NewTool("pve_list_bridges", bridgeOpts...)
	s.AddTool(bridgeTool, tools.WrapWithInstrumentation("pve_list_bridges", handleListBridges, sc))

	return nil
}
