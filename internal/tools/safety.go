package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/giantswarm/mcp-proxmox/internal/server"
)

// CheckMutatingOperation verifies if a mutating operation is allowed given the current
// server configuration. Returns an error result if blocked, nil if allowed.
//
// This centralizes the non-destructive mode check to avoid code duplication across
// all tool handlers that perform mutating operations.
//
// Operations are allowed if:
//   - NonDestructiveMode is disabled, OR
//   - The operation is explicitly listed in AllowedOperations
//
// Protected operations include: create, clone, start, stop, shutdown, reboot,
// migrate, delete, resize, configure
func CheckMutatingOperation(sc *server.ServerContext, operation string) *mcp.CallToolResult {
	config := sc.Config()
	if !config.NonDestructiveMode {
		return nil
	}

	for _, op := range config.AllowedOperations {
		if op == operation {
			return nil
		}
	}

	return mcp.NewToolResultError(fmt.Sprintf(
		"%s operations are not allowed in non-destructive mode (start the server with --non-destructive=false to enable them)",
		cases.Title(language.English).String(operation),
	))
}

// CheckConfirmation gates irreversible operations behind an explicit
// confirm argument. When the server requires confirmation and the
// request does not carry confirm=true, an error result naming the
// operation and target is returned; nil means the operation may proceed.
func CheckConfirmation(sc *server.ServerContext, args map[string]interface{}, operation, target string) *mcp.CallToolResult {
	if !sc.Config().RequireConfirmation {
		return nil
	}

	if confirmed, _ := args["confirm"].(bool); confirmed {
		return nil
	}

	return mcp.NewToolResultError(fmt.Sprintf(
		"%s of %s requires confirmation: re-run with confirm=true",
		cases.Title(language.English).String(operation), target,
	))
}

// RequireConfirm gates irreversible operations behind an explicit
// confirm=true argument regardless of server configuration. Deletions
// cannot be undone, so the caller must always opt in.
func RequireConfirm(args map[string]interface{}, operation, target string) *mcp.CallToolResult {
	if confirmed, _ := args["confirm"].(bool); confirmed {
		return nil
	}

	return mcp.NewToolResultError(fmt.Sprintf(
		"%s of %s requires confirmation: re-run with confirm=true",
		cases.Title(language.English).String(operation), target,
	))
}

// CheckRestrictedNode rejects operations targeting a node the server
// was configured to protect. Returns nil when the node is allowed.
func CheckRestrictedNode(sc *server.ServerContext, node string) *mcp.CallToolResult {
	if node == "" {
		return nil
	}
	for _, restricted := range sc.Config().RestrictedNodes {
		if restricted == node {
			return mcp.NewToolResultError(fmt.Sprintf(
				"node %q is restricted by server configuration", node,
			))
		}
	}
	return nil
}
