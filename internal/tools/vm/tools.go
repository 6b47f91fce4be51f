package vm

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-proxmox/internal/server"
	"github.com/giantswarm/mcp-proxmox/internal/tools"
)

// RegisterVMTools registers all QEMU VM tools with the MCP server
func RegisterVMTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// pve_list_vms tool
	listOpts := []mcp.ToolOption{
		mcp.WithDescription("List QEMU virtual machines with optional filtering by node, status or name"),
	}
	listOpts = append(listOpts, tools.AddClusterParam(sc)...)
	listOpts = append(listOpts,
		mcp.WithString("node",
			mcp.Description("Only show VMs on this node"),
		),
		mcp.WithString("status",
			mcp.Description("Only show VMs with this status (running, stopped)"),
		),
		mcp.WithString("search",
			mcp.Description("Case-insensitive substring match on the VM name"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of VMs to return (default 100)"),
		),
	)

	s.AddTool(mcp.NewTool("pve_list_vms", listOpts...),
		tools.WrapWithInstrumentation("pve_list_vms", handleListVMs, sc))

	// pve_resolve_vm tool
	resolveOpts := []mcp.ToolOption{
		mcp.WithDescription("Resolve a QEMU virtual machine by name or vmid to its node and vmid"),
	}
	resolveOpts = append(resolveOpts, tools.AddClusterParam(sc)...)
	resolveOpts = append(resolveOpts,
		mcp.WithString("name",
			mcp.Description("Exact VM name (case-insensitive); either name or vmid is required"),
		),
		mcp.WithNumber("vmid",
			mcp.Description("Numeric VM ID; either name or vmid is required"),
		),
		mcp.WithString("node",
			mcp.Description("Only consider VMs on this node"),
		),
	)

	s.AddTool(mcp.NewTool("pve_resolve_vm", resolveOpts...),
		tools.WrapWithInstrumentation("pve_resolve_vm", handleResolveVM, sc))

	// pve_vm_config tool
	configOpts := []mcp.ToolOption{
		mcp.WithDescription("Show the configuration of a QEMU virtual machine"),
	}
	configOpts = append(configOpts, tools.AddClusterParam(sc)...)
	configOpts = append(configOpts, vmTargetParams()...)

	s.AddTool(mcp.NewTool("pve_vm_config", configOpts...),
		tools.WrapWithInstrumentation("pve_vm_config", handleVMConfig, sc))

	// pve_create_vm tool
	createOpts := []mcp.ToolOption{
		mcp.WithDescription("Create a new QEMU virtual machine"),
	}
	createOpts = append(createOpts, tools.AddClusterParam(sc)...)
	createOpts = append(createOpts,
		mcp.WithNumber("vmid",
			mcp.Required(),
			mcp.Description("Numeric ID for the new VM"),
		),
		mcp.WithString("node",
			mcp.Description("Node to create the VM on (cluster default node when omitted)"),
		),
		mcp.WithString("name",
			mcp.Description("VM name"),
		),
		mcp.WithNumber("cores",
			mcp.Description("CPU cores (default 1)"),
		),
		mcp.WithNumber("memory_mb",
			mcp.Description("Memory in MiB (default 512)"),
		),
		mcp.WithNumber("disk_gb",
			mcp.Description("Disk size in GiB"),
		),
		mcp.WithString("storage",
			mcp.Description("Storage for the VM disk (cluster default storage when omitted)"),
		),
		mcp.WithString("bridge",
			mcp.Description("Network bridge (cluster default bridge when omitted)"),
		),
		mcp.WithString("iso",
			mcp.Description("ISO volume to attach, e.g. 'local:iso/debian-12.iso'"),
		),
		mcp.WithString("ostype",
			mcp.Description("Guest OS type, e.g. 'l26' for Linux"),
		),
		mcp.WithBoolean("agent",
			mcp.Description("Enable the QEMU guest agent"),
		),
	)

	s.AddTool(mcp.NewTool("pve_create_vm", createOpts...),
		tools.WrapWithInstrumentation("pve_create_vm", handleCreateVM, sc))

	// pve_clone_vm tool
	cloneOpts := []mcp.ToolOption{
		mcp.WithDescription("Clone a QEMU virtual machine or template"),
	}
	cloneOpts = append(cloneOpts, tools.AddClusterParam(sc)...)
	cloneOpts = append(cloneOpts, vmTargetParams()...)
	cloneOpts = append(cloneOpts,
		mcp.WithNumber("new_vmid",
			mcp.Required(),
			mcp.Description("Numeric ID for the clone"),
		),
		mcp.WithString("name",
			mcp.Description("Name for the clone"),
		),
		mcp.WithString("target_node",
			mcp.Description("Node to place the clone on (source node when omitted)"),
		),
		mcp.WithBoolean("full",
			mcp.Description("Make a full copy instead of a linked clone"),
		),
		mcp.WithString("storage",
			mcp.Description("Target storage for a full clone"),
		),
	)

	s.AddTool(mcp.NewTool("pve_clone_vm", cloneOpts...),
		tools.WrapWithInstrumentation("pve_clone_vm", handleCloneVM, sc))

	// pve_start_vm tool
	s.AddTool(mcp.NewTool("pve_start_vm", lifecycleParams(sc, "Start a QEMU virtual machine")...),
		tools.WrapWithInstrumentation("pve_start_vm", handleStartVM, sc))

	// pve_stop_vm tool
	s.AddTool(mcp.NewTool("pve_stop_vm", lifecycleParams(sc, "Hard-stop a QEMU virtual machine (like pulling the power cord)")...),
		tools.WrapWithInstrumentation("pve_stop_vm", handleStopVM, sc))

	// pve_shutdown_vm tool
	shutdownOpts := lifecycleParams(sc, "Shut down a QEMU virtual machine cleanly via the guest OS")
	shutdownOpts = append(shutdownOpts,
		mcp.WithNumber("timeout",
			mcp.Description("Seconds to wait for the guest before giving up"),
		),
	)

	s.AddTool(mcp.NewTool("pve_shutdown_vm", shutdownOpts...),
		tools.WrapWithInstrumentation("pve_shutdown_vm", handleShutdownVM, sc))

	// pve_reboot_vm tool
	s.AddTool(mcp.NewTool("pve_reboot_vm", lifecycleParams(sc, "Reboot a QEMU virtual machine")...),
		tools.WrapWithInstrumentation("pve_reboot_vm", handleRebootVM, sc))

	// pve_migrate_vm tool
	migrateOpts := lifecycleParams(sc, "Migrate a QEMU virtual machine to another node")
	migrateOpts = append(migrateOpts,
		mcp.WithString("target_node",
			mcp.Required(),
			mcp.Description("Node to migrate the VM to"),
		),
		mcp.WithBoolean("online",
			mcp.Description("Migrate without stopping the VM"),
		),
	)

	s.AddTool(mcp.NewTool("pve_migrate_vm", migrateOpts...),
		tools.WrapWithInstrumentation("pve_migrate_vm", handleMigrateVM, sc))

	// pve_delete_vm tool
	deleteOpts := lifecycleParams(sc, "Destroy a QEMU virtual machine. Irreversible; requires confirm=true")
	deleteOpts = append(deleteOpts,
		mcp.WithBoolean("purge",
			mcp.Description("Also remove the VM from backup jobs and HA resources"),
		),
		mcp.WithBoolean("confirm",
			mcp.Description("Must be true to actually delete the VM"),
		),
	)

	s.AddTool(mcp.NewTool("pve_delete_vm", deleteOpts...),
		tools.WrapWithInstrumentation("pve_delete_vm", handleDeleteVM, sc))

	// pve_resize_vm_disk tool
	resizeOpts := lifecycleParams(sc, "Grow a QEMU virtual machine disk")
	resizeOpts = append(resizeOpts,
		mcp.WithString("disk",
			mcp.Required(),
			mcp.Description("Disk to grow, e.g. 'scsi0'"),
		),
		mcp.WithNumber("size_gb",
			mcp.Required(),
			mcp.Description("Number of GiB to add to the disk"),
		),
	)

	s.AddTool(mcp.NewTool("pve_resize_vm_disk", resizeOpts...),
		tools.WrapWithInstrumentation("pve_resize_vm_disk", handleResizeVMDisk, sc))

	// pve_configure_vm tool
	configureOpts := lifecycleParams(sc, "Apply configuration changes to a QEMU virtual machine")
	configureOpts = append(configureOpts,
		mcp.WithObject("params",
			mcp.Required(),
			mcp.Description("Configuration parameters as key/value pairs, e.g. {\"cores\": \"4\", \"memory\": \"8192\"}"),
		),
	)

	s.AddTool(mcp.NewTool("pve_configure_vm", configureOpts...),
		tools.WrapWithInstrumentation("pve_configure_vm", handleConfigureVM, sc))

	return nil
}

// vmTargetParams returns the node and vmid parameters shared by all
// tools addressing one VM.
func vmTargetParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("node",
			mcp.Required(),
			mcp.Description("Node the VM runs on"),
		),
		mcp.WithNumber("vmid",
			mcp.Required(),
			mcp.Description("Numeric VM ID"),
		),
	}
}

// lifecycleParams returns the common parameter set of the VM lifecycle
// tools: the optional cluster selector plus the node and vmid target.
func lifecycleParams(sc *server.ServerContext, description string) []mcp.ToolOption {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
	}
	opts = append(opts, tools.AddClusterParam(sc)...)
	opts = append(opts, vmTargetParams()...)
	return opts
}
