package task

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-proxmox/internal/server"
	"github.com/giantswarm/mcp-proxmox/internal/tools"
)

// RegisterTaskTools registers all task tools with the MCP server
func RegisterTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// pve_list_tasks tool
	listOpts := []mcp.ToolOption{
		mcp.WithDescription("List recent tasks on a Proxmox node, newest first"),
	}
	listOpts = append(listOpts, tools.AddClusterParam(sc)...)
	listOpts = append(listOpts,
		mcp.WithString("node",
			mcp.Required(),
			mcp.Description("Node name"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of tasks to return (server default when omitted)"),
		),
	)

	s.AddTool(mcp.NewTool("pve_list_tasks", listOpts...),
		tools.WrapWithInstrumentation("pve_list_tasks", handleListTasks, sc))

	// pve_task_status tool
	statusOpts := []mcp.ToolOption{
		mcp.WithDescription("Show the current status of a Proxmox task by its UPID"),
	}
	statusOpts = append(statusOpts, tools.AddClusterParam(sc)...)
	statusOpts = append(statusOpts,
		mcp.WithString("upid",
			mcp.Required(),
			mcp.Description("Task identifier, e.g. 'UPID:pve1:0000C2A1:...'"),
		),
		mcp.WithString("node",
			mcp.Description("Node the task ran on (derived from the UPID when omitted)"),
		),
	)

	s.AddTool(mcp.NewTool("pve_task_status", statusOpts...),
		tools.WrapWithInstrumentation("pve_task_status", handleTaskStatus, sc))

	// pve_wait_task tool
	waitOpts := []mcp.ToolOption{
		mcp.WithDescription("Wait for a Proxmox task to finish and report its final status"),
	}
	waitOpts = append(waitOpts, tools.AddClusterParam(sc)...)
	waitOpts = append(waitOpts,
		mcp.WithString("upid",
			mcp.Required(),
			mcp.Description("Task identifier to wait for"),
		),
		mcp.WithString("node",
			mcp.Description("Node the task runs on (derived from the UPID when omitted)"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Seconds to wait before giving up (default 300)"),
		),
	)

	s.AddTool(mcp.NewTool("pve_wait_task", waitOpts...),
		tools.WrapWithInstrumentation("pve_wait_task", handleWaitTask, sc))

	return nil
}
