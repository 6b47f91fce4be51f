package storage

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-proxmox/internal/server"
	"github.com/giantswarm/mcp-proxmox/internal/tools"
)

// RegisterStorageTools registers all storage tools with the MCP server
func RegisterStorageTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// pve_list_storage tool
	listOpts := []mcp.ToolOption{
		mcp.WithDescription("List all storage backends defined in a Proxmox cluster"),
	}
	listOpts = append(listOpts, tools.AddClusterParam(sc)...)

	s.AddTool(mcp.NewTool("pve_list_storage", listOpts...),
		tools.WrapWithInstrumentation("pve_list_storage", handleListStorage, sc))

	// pve_storage_status tool
	statusOpts := []mcp.ToolOption{
		mcp.WithDescription("Show usage and status of one storage on one node"),
	}
	statusOpts = append(statusOpts, tools.AddClusterParam(sc)...)
	statusOpts = append(statusOpts,
		mcp.WithString("node",
			mcp.Required(),
			mcp.Description("Node name"),
		),
		mcp.WithString("storage",
			mcp.Required(),
			mcp.Description("Storage identifier"),
		),
	)

	s.AddTool(mcp.NewTool("pve_storage_status", statusOpts...),
		tools.WrapWithInstrumentation("pve_storage_status", handleStorageStatus, sc))

	// pve_storage_content tool
	contentOpts := []mcp.ToolOption{
		mcp.WithDescription("List volumes stored on one storage backend: disk images, ISOs, templates and backups"),
	}
	contentOpts = append(contentOpts, tools.AddClusterParam(sc)...)
	contentOpts = append(contentOpts,
		mcp.WithString("node",
			mcp.Required(),
			mcp.Description("Node name"),
		),
		mcp.WithString("storage",
			mcp.Required(),
			mcp.Description("Storage identifier"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of volumes to return (default 100)"),
		),
	)

	s.AddTool(mcp.NewTool("pve_storage_content", contentOpts...),
		tools.WrapWithInstrumentation("pve_storage_content", handleStorageContent, sc))

	return nil
}
