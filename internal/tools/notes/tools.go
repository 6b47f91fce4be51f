package notes

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-proxmox/internal/server"
	"github.com/giantswarm/mcp-proxmox/internal/tools"
)

// RegisterNotesTools registers the guest notes tools with the MCP server
func RegisterNotesTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// pve_get_notes tool
	getOpts := []mcp.ToolOption{
		mcp.WithDescription("Read the notes of a VM or container, with detected format and secret references"),
	}
	getOpts = append(getOpts, tools.AddClusterParam(sc)...)
	getOpts = append(getOpts, guestParams()...)

	s.AddTool(mcp.NewTool("pve_get_notes", getOpts...),
		tools.WrapWithInstrumentation("pve_get_notes", handleGetNotes, sc))

	// pve_set_notes tool
	setOpts := []mcp.ToolOption{
		mcp.WithDescription("Replace the notes of a VM or container; plaintext credentials are rejected"),
	}
	setOpts = append(setOpts, tools.AddClusterParam(sc)...)
	setOpts = append(setOpts, guestParams()...)
	setOpts = append(setOpts,
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Note content in HTML, Markdown or plain text; empty clears the notes"),
		),
	)

	s.AddTool(mcp.NewTool("pve_set_notes", setOpts...),
		tools.WrapWithInstrumentation("pve_set_notes", handleSetNotes, sc))

	return nil
}

func guestParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("type",
			mcp.Description("Guest type: vm (default) or lxc"),
		),
		mcp.WithString("node",
			mcp.Required(),
			mcp.Description("Node the guest runs on"),
		),
		mcp.WithNumber("vmid",
			mcp.Required(),
			mcp.Description("Numeric guest ID"),
		),
	}
}
