package lxc

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-proxmox/internal/server"
	"github.com/giantswarm/mcp-proxmox/internal/tools"
)

// RegisterContainerTools registers all LXC container tools with the MCP server
func RegisterContainerTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// pve_list_containers tool
	listOpts := []mcp.ToolOption{
		mcp.WithDescription("List LXC containers with optional filtering by node, status or name"),
	}
	listOpts = append(listOpts, tools.AddClusterParam(sc)...)
	listOpts = append(listOpts,
		mcp.WithString("node",
			mcp.Description("Only show containers on this node"),
		),
		mcp.WithString("status",
			mcp.Description("Only show containers with this status (running, stopped)"),
		),
		mcp.WithString("search",
			mcp.Description("Case-insensitive substring match on the container name"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of containers to return (default 100)"),
		),
	)

	s.AddTool(mcp.NewTool("pve_list_containers", listOpts...),
		tools.WrapWithInstrumentation("pve_list_containers", handleListContainers, sc))

	// pve_resolve_container tool
	resolveOpts := []mcp.ToolOption{
		mcp.WithDescription("Resolve an LXC container by name or vmid to its node and vmid"),
	}
	resolveOpts = append(resolveOpts, tools.AddClusterParam(sc)...)
	resolveOpts = append(resolveOpts,
		mcp.WithString("name",
			mcp.Description("Exact container name (case-insensitive); either name or vmid is required"),
		),
		mcp.WithNumber("vmid",
			mcp.Description("Numeric container ID; either name or vmid is required"),
		),
		mcp.WithString("node",
			mcp.Description("Only consider containers on this node"),
		),
	)

	s.AddTool(mcp.NewTool("pve_resolve_container", resolveOpts...),
		tools.WrapWithInstrumentation("pve_resolve_container", handleResolveContainer, sc))

	// pve_container_config tool
	configOpts := []mcp.ToolOption{
		mcp.WithDescription("Show the configuration of an LXC container"),
	}
	configOpts = append(configOpts, tools.AddClusterParam(sc)...)
	configOpts = append(configOpts, containerTargetParams()...)

	s.AddTool(mcp.NewTool("pve_container_config", configOpts...),
		tools.WrapWithInstrumentation("pve_container_config", handleContainerConfig, sc))

	// pve_create_container tool
	createOpts := []mcp.ToolOption{
		mcp.WithDescription("Create a new LXC container from an OS template"),
	}
	createOpts = append(createOpts, tools.AddClusterParam(sc)...)
	createOpts = append(createOpts,
		mcp.WithNumber("vmid",
			mcp.Required(),
			mcp.Description("Numeric ID for the new container"),
		),
		mcp.WithString("ostemplate",
			mcp.Required(),
			mcp.Description("OS template volume, e.g. 'local:vztmpl/debian-12-standard_12.2-1_amd64.tar.zst'"),
		),
		mcp.WithString("node",
			mcp.Description("Node to create the container on (cluster default node when omitted)"),
		),
		mcp.WithString("hostname",
			mcp.Description("Container hostname"),
		),
		mcp.WithNumber("cores",
			mcp.Description("CPU cores (default 1)"),
		),
		mcp.WithNumber("memory_mb",
			mcp.Description("Memory in MiB (default 512)"),
		),
		mcp.WithNumber("rootfs_gb",
			mcp.Description("Root filesystem size in GiB"),
		),
		mcp.WithString("storage",
			mcp.Description("Storage for the root filesystem (cluster default storage when omitted)"),
		),
		mcp.WithString("bridge",
			mcp.Description("Network bridge (cluster default bridge when omitted)"),
		),
		mcp.WithString("net_ip",
			mcp.Description("IP configuration for eth0, e.g. 'dhcp' or '192.168.1.50/24'"),
		),
		mcp.WithString("password",
			mcp.Description("Root password for the container"),
		),
	)

	s.AddTool(mcp.NewTool("pve_create_container", createOpts...),
		tools.WrapWithInstrumentation("pve_create_container", handleCreateContainer, sc))

	// pve_start_container tool
	s.AddTool(mcp.NewTool("pve_start_container", lifecycleParams(sc, "Start an LXC container")...),
		tools.WrapWithInstrumentation("pve_start_container", handleStartContainer, sc))

	// pve_stop_container tool
	s.AddTool(mcp.NewTool("pve_stop_container", lifecycleParams(sc, "Hard-stop an LXC container")...),
		tools.WrapWithInstrumentation("pve_stop_container", handleStopContainer, sc))

	// pve_shutdown_container tool
	shutdownOpts := lifecycleParams(sc, "Shut down an LXC container cleanly")
	shutdownOpts = append(shutdownOpts,
		mcp.WithNumber("timeout",
			mcp.Description("Seconds to wait for the container before giving up"),
		),
	)

	s.AddTool(mcp.NewTool("pve_shutdown_container", shutdownOpts...),
		tools.WrapWithInstrumentation("pve_shutdown_container", handleShutdownContainer, sc))

	// pve_reboot_container tool
	s.AddTool(mcp.NewTool("pve_reboot_container", lifecycleParams(sc, "Reboot an LXC container")...),
		tools.WrapWithInstrumentation("pve_reboot_container", handleRebootContainer, sc))

	// pve_migrate_container tool
	migrateOpts := lifecycleParams(sc, "Migrate an LXC container to another node")
	migrateOpts = append(migrateOpts,
		mcp.WithString("target_node",
			mcp.Required(),
			mcp.Description("Node to migrate the container to"),
		),
		mcp.WithBoolean("restart",
			mcp.Description("Restart a running container on the target after migration"),
		),
	)

	s.AddTool(mcp.NewTool("pve_migrate_container", migrateOpts...),
		tools.WrapWithInstrumentation("pve_migrate_container", handleMigrateContainer, sc))

	// pve_delete_container tool
	deleteOpts := lifecycleParams(sc, "Destroy an LXC container. Irreversible; requires confirm=true")
	deleteOpts = append(deleteOpts,
		mcp.WithBoolean("purge",
			mcp.Description("Also remove the container from backup jobs and HA resources"),
		),
		mcp.WithBoolean("confirm",
			mcp.Description("Must be true to actually delete the container"),
		),
	)

	s.AddTool(mcp.NewTool("pve_delete_container", deleteOpts...),
		tools.WrapWithInstrumentation("pve_delete_container", handleDeleteContainer, sc))

	// pve_configure_container tool
	configureOpts := lifecycleParams(sc, "Apply configuration changes to an LXC container")
	configureOpts = append(configureOpts,
		mcp.WithObject("params",
			mcp.Required(),
			mcp.Description("Configuration parameters as key/value pairs, e.g. {\"cores\": \"2\", \"memory\": \"1024\"}"),
		),
	)

	s.AddTool(mcp.NewTool("pve_configure_container", configureOpts...),
		tools.WrapWithInstrumentation("pve_configure_container", handleConfigureContainer, sc))

	return nil
}

// containerTargetParams returns the node and vmid parameters shared by
// all tools addressing one container.
func containerTargetParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("node",
			mcp.Required(),
			mcp.Description("Node the container runs on"),
		),
		mcp.WithNumber("vmid",
			mcp.Required(),
			mcp.Description("Numeric container ID"),
		),
	}
}

// lifecycleParams returns the common parameter set of the container
// lifecycle tools.
func lifecycleParams(sc *server.ServerContext, description string) []mcp.ToolOption {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
	}
	opts = append(opts, tools.AddClusterParam(sc)...)
	opts = append(opts, containerTargetParams()...)
	return opts
}
