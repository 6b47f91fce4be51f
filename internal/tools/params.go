package tools

import (
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-proxmox/internal/server"
)

// AddClusterParam returns tool options for the cluster parameter based on the
// server's operating mode. The parameter is only added when more than one
// cluster is configured, keeping single-cluster deployments uncluttered.
//
// Usage in tool registration:
//
//	opts := []mcp.ToolOption{
//	    mcp.WithDescription("..."),
//	}
//	opts = append(opts, tools.AddClusterParam(sc)...)
//	opts = append(opts, /* tool-specific params */...)
//	tool := mcp.NewTool("tool_name", opts...)
func AddClusterParam(sc *server.ServerContext) []mcp.ToolOption {
	var opts []mcp.ToolOption

	if sc.MultiCluster() {
		opts = append(opts, mcp.WithString("cluster",
			mcp.Description("Target Proxmox cluster name (optional, resolved from the resource name or the default cluster when omitted)"),
		))
	}

	return opts
}

// ExtractClusterParam extracts the cluster parameter from request arguments.
// Returns an empty string if not provided.
func ExtractClusterParam(args map[string]interface{}) string {
	if cluster, ok := args["cluster"].(string); ok {
		return cluster
	}
	return ""
}

// RequiredString extracts a required string argument. The second return
// value is false when the argument is missing or empty.
func RequiredString(args map[string]interface{}, key string) (string, bool) {
	value, ok := args[key].(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// OptionalString extracts an optional string argument, returning the
// fallback when absent.
func OptionalString(args map[string]interface{}, key, fallback string) string {
	if value, ok := args[key].(string); ok && value != "" {
		return value
	}
	return fallback
}

// RequiredInt extracts a required integer argument. JSON numbers arrive
// as float64; the second return value is false when the argument is
// missing or not a number.
func RequiredInt(args map[string]interface{}, key string) (int, bool) {
	value, ok := args[key].(float64)
	if !ok {
		return 0, false
	}
	return int(value), true
}

// OptionalInt extracts an optional integer argument, returning the
// fallback when absent.
func OptionalInt(args map[string]interface{}, key string, fallback int) int {
	if value, ok := args[key].(float64); ok {
		return int(value)
	}
	return fallback
}

// OptionalBool extracts an optional boolean argument.
func OptionalBool(args map[string]interface{}, key string) bool {
	value, _ := args[key].(bool)
	return value
}
