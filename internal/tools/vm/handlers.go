package vm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-proxmox/internal/proxmox"
	"github.com/giantswarm/mcp-proxmox/internal/server"
	"github.com/giantswarm/mcp-proxmox/internal/tools"
	"github.com/giantswarm/mcp-proxmox/internal/tools/output"
)

// resolveTarget extracts the node and vmid target parameters and
// resolves the API client for the selected cluster. The returned
// result is non-nil when the request is invalid.
func resolveTarget(ctx context.Context, sc *server.ServerContext, args map[string]interface{}) (proxmox.Client, string, string, int, *mcp.CallToolResult) {
	node, ok := tools.RequiredString(args, "node")
	if !ok {
		return nil, "", "", 0, mcp.NewToolResultError("node parameter is required")
	}

	vmid, ok := tools.RequiredInt(args, "vmid")
	if !ok {
		return nil, "", "", 0, mcp.NewToolResultError("vmid parameter is required")
	}

	clusterName := tools.ExtractClusterParam(args)
	client, selected, errMsg := tools.ResolveClient(ctx, sc, clusterName, node)
	if errMsg != "" {
		return nil, "", "", 0, mcp.NewToolResultError(errMsg)
	}

	return client, selected, node, vmid, nil
}

// handleListVMs lists QEMU VMs with optional filtering.
func handleListVMs(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	clusterName := tools.ExtractClusterParam(args)

	client, selected, errMsg := tools.ResolveClient(ctx, sc, clusterName, "")
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	filter := proxmox.ListFilter{
		Node:   tools.OptionalString(args, "node", ""),
		Status: tools.OptionalString(args, "status", ""),
		Search: tools.OptionalString(args, "search", ""),
	}

	vms, err := client.ListVMs(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list VMs: %v", err)), nil
	}

	limit := output.EffectiveLimit(tools.OptionalInt(args, "limit", 0))
	shown, truncation := output.Truncate(vms, limit)

	response := struct {
		Cluster    string                    `json:"cluster"`
		VMs        []proxmox.VM              `json:"vms"`
		Total      int                       `json:"total"`
		Truncation *output.TruncationWarning `json:"truncation,omitempty"`
	}{
		Cluster:    selected,
		VMs:        shown,
		Total:      len(vms),
		Truncation: truncation,
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal VM list: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleResolveVM locates a VM by name or vmid and reports where it
// runs. Name matches must be unambiguous.
func handleResolveVM(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	clusterName := tools.ExtractClusterParam(args)

	name := tools.OptionalString(args, "name", "")
	vmid := tools.OptionalInt(args, "vmid", 0)
	node := tools.OptionalString(args, "node", "")
	if name == "" && vmid == 0 {
		return mcp.NewToolResultError("either name or vmid parameter is required"), nil
	}

	client, selected, errMsg := tools.ResolveClient(ctx, sc, clusterName, node)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	vms, err := client.ListVMs(ctx, proxmox.ListFilter{Node: node})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list VMs: %v", err)), nil
	}

	matches := matchVMs(vms, name, vmid)
	switch len(matches) {
	case 0:
		if name != "" {
			return mcp.NewToolResultError(fmt.Sprintf("No VM named '%s' found on cluster '%s'", name, selected)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("No VM with ID %d found on cluster '%s'", vmid, selected)), nil
	case 1:
	default:
		ids := make([]string, len(matches))
		for i, vm := range matches {
			ids[i] = fmt.Sprintf("%d (node %s)", vm.VMID, vm.Node)
		}
		return mcp.NewToolResultError(fmt.Sprintf("VM name '%s' is ambiguous, matches: %s; resolve by vmid instead", name, strings.Join(ids, ", "))), nil
	}

	vm := matches[0]
	response := struct {
		Cluster string `json:"cluster"`
		VMID    int    `json:"vmid"`
		Node    string `json:"node"`
		Name    string `json:"name"`
		Status  string `json:"status"`
	}{
		Cluster: selected,
		VMID:    vm.VMID,
		Node:    vm.Node,
		Name:    vm.Name,
		Status:  vm.Status,
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal resolved VM: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// matchVMs filters by vmid when given, otherwise by case-insensitive
// exact name.
func matchVMs(vms []proxmox.VM, name string, vmid int) []proxmox.VM {
	var matches []proxmox.VM
	for _, vm := range vms {
		if vmid != 0 {
			if vm.VMID == vmid {
				matches = append(matches, vm)
			}
			continue
		}
		if strings.EqualFold(vm.Name, name) {
			matches = append(matches, vm)
		}
	}
	return matches
}

// handleVMConfig shows the configuration of one VM.
func handleVMConfig(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	client, selected, node, vmid, errResult := resolveTarget(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	config, err := client.VMConfig(ctx, node, vmid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get config of VM %d: %v", vmid, err)), nil
	}

	response := struct {
		Cluster string                 `json:"cluster"`
		Node    string                 `json:"node"`
		VMID    int                    `json:"vmid"`
		Config  map[string]interface{} `json:"config"`
	}{
		Cluster: selected,
		Node:    node,
		VMID:    vmid,
		Config:  config,
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal VM config: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleCreateVM creates a new QEMU VM. The node, storage and bridge
// fall back to the cluster's configured defaults when omitted.
func handleCreateVM(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if result := tools.CheckMutatingOperation(sc, "create"); result != nil {
		return result, nil
	}

	vmid, ok := tools.RequiredInt(args, "vmid")
	if !ok {
		return mcp.NewToolResultError("vmid parameter is required"), nil
	}

	clusterName := tools.ExtractClusterParam(args)
	node := tools.OptionalString(args, "node", "")

	client, selected, errMsg := tools.ResolveClient(ctx, sc, clusterName, node)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	clusterConfig, err := sc.Registry().ClusterFor(selected, "")
	if err != nil {
		return mcp.NewToolResultError(tools.FormatClusterError(err, selected)), nil
	}

	if node == "" {
		node = clusterConfig.DefaultNode
	}
	if node == "" {
		return mcp.NewToolResultError("node parameter is required (the cluster has no default node configured)"), nil
	}

	if result := tools.CheckRestrictedNode(sc, node); result != nil {
		return result, nil
	}

	opts := proxmox.CreateVMOptions{
		Name:     tools.OptionalString(args, "name", ""),
		Cores:    tools.OptionalInt(args, "cores", 0),
		MemoryMB: tools.OptionalInt(args, "memory_mb", 0),
		DiskGB:   tools.OptionalInt(args, "disk_gb", 0),
		Storage:  tools.OptionalString(args, "storage", clusterConfig.DefaultStorage),
		Bridge:   tools.OptionalString(args, "bridge", clusterConfig.DefaultBridge),
		ISO:      tools.OptionalString(args, "iso", ""),
		OSType:   tools.OptionalString(args, "ostype", ""),
		Agent:    tools.OptionalBool(args, "agent"),
	}

	upid, err := client.CreateVM(ctx, node, vmid, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create VM %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Creating VM %d on node '%s' of cluster '%s' (task %s)", vmid, node, selected, upid)), nil
}

// handleCloneVM clones a VM or template.
func handleCloneVM(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if result := tools.CheckMutatingOperation(sc, "clone"); result != nil {
		return result, nil
	}

	client, selected, node, vmid, errResult := resolveTarget(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	newVMID, ok := tools.RequiredInt(args, "new_vmid")
	if !ok {
		return mcp.NewToolResultError("new_vmid parameter is required"), nil
	}

	if result := tools.CheckRestrictedNode(sc, node); result != nil {
		return result, nil
	}

	opts := proxmox.CloneVMOptions{
		TargetNode: tools.OptionalString(args, "target_node", ""),
		Name:       tools.OptionalString(args, "name", ""),
		Full:       tools.OptionalBool(args, "full"),
		Storage:    tools.OptionalString(args, "storage", ""),
	}

	upid, err := client.CloneVM(ctx, node, vmid, newVMID, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to clone VM %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Cloning VM %d to %d on cluster '%s' (task %s)", vmid, newVMID, selected, upid)), nil
}

// handleStartVM starts a VM.
func handleStartVM(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if result := tools.CheckMutatingOperation(sc, "start"); result != nil {
		return result, nil
	}

	client, selected, node, vmid, errResult := resolveTarget(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	if result := tools.CheckRestrictedNode(sc, node); result != nil {
		return result, nil
	}

	upid, err := client.StartVM(ctx, node, vmid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to start VM %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Starting VM %d on node '%s' of cluster '%s' (task %s)", vmid, node, selected, upid)), nil
}

// handleStopVM hard-stops a VM.
func handleStopVM(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if result := tools.CheckMutatingOperation(sc, "stop"); result != nil {
		return result, nil
	}

	client, selected, node, vmid, errResult := resolveTarget(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	if result := tools.CheckRestrictedNode(sc, node); result != nil {
		return result, nil
	}

	if result := tools.CheckConfirmation(sc, args, "stop", fmt.Sprintf("VM %d", vmid)); result != nil {
		return result, nil
	}

	upid, err := client.StopVM(ctx, node, vmid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to stop VM %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Stopping VM %d on node '%s' of cluster '%s' (task %s)", vmid, node, selected, upid)), nil
}

// handleShutdownVM requests a clean guest shutdown.
func handleShutdownVM(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if result := tools.CheckMutatingOperation(sc, "shutdown"); result != nil {
		return result, nil
	}

	client, selected, node, vmid, errResult := resolveTarget(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	if result := tools.CheckRestrictedNode(sc, node); result != nil {
		return result, nil
	}

	timeout := tools.OptionalInt(args, "timeout", 0)

	upid, err := client.ShutdownVM(ctx, node, vmid, timeout)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to shut down VM %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Shutting down VM %d on node '%s' of cluster '%s' (task %s)", vmid, node, selected, upid)), nil
}

// handleRebootVM reboots a VM.
func handleRebootVM(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if result := tools.CheckMutatingOperation(sc, "reboot"); result != nil {
		return result, nil
	}

	client, selected, node, vmid, errResult := resolveTarget(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	if result := tools.CheckRestrictedNode(sc, node); result != nil {
		return result, nil
	}

	upid, err := client.RebootVM(ctx, node, vmid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to reboot VM %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Rebooting VM %d on node '%s' of cluster '%s' (task %s)", vmid, node, selected, upid)), nil
}

// handleMigrateVM migrates a VM to another node.
func handleMigrateVM(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if result := tools.CheckMutatingOperation(sc, "migrate"); result != nil {
		return result, nil
	}

	client, selected, node, vmid, errResult := resolveTarget(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	targetNode, ok := tools.RequiredString(args, "target_node")
	if !ok {
		return mcp.NewToolResultError("target_node parameter is required"), nil
	}

	if result := tools.CheckRestrictedNode(sc, node); result != nil {
		return result, nil
	}
	if result := tools.CheckRestrictedNode(sc, targetNode); result != nil {
		return result, nil
	}

	if result := tools.CheckConfirmation(sc, args, "migration", fmt.Sprintf("VM %d", vmid)); result != nil {
		return result, nil
	}

	online := tools.OptionalBool(args, "online")

	upid, err := client.MigrateVM(ctx, node, vmid, targetNode, online)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to migrate VM %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Migrating VM %d from node '%s' to node '%s' on cluster '%s' (task %s)", vmid, node, targetNode, selected, upid)), nil
}

// handleDeleteVM destroys a VM. Requires an explicit confirm=true.
func handleDeleteVM(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if result := tools.CheckMutatingOperation(sc, "delete"); result != nil {
		return result, nil
	}

	client, selected, node, vmid, errResult := resolveTarget(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	if result := tools.CheckRestrictedNode(sc, node); result != nil {
		return result, nil
	}

	if result := tools.RequireConfirm(args, "deletion", fmt.Sprintf("VM %d", vmid)); result != nil {
		return result, nil
	}

	purge := tools.OptionalBool(args, "purge")

	upid, err := client.DeleteVM(ctx, node, vmid, purge)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete VM %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleting VM %d on node '%s' of cluster '%s' (task %s)", vmid, node, selected, upid)), nil
}

// handleResizeVMDisk grows a VM disk.
func handleResizeVMDisk(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if result := tools.CheckMutatingOperation(sc, "resize"); result != nil {
		return result, nil
	}

	client, selected, node, vmid, errResult := resolveTarget(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	disk, ok := tools.RequiredString(args, "disk")
	if !ok {
		return mcp.NewToolResultError("disk parameter is required"), nil
	}

	sizeGB, ok := tools.RequiredInt(args, "size_gb")
	if !ok {
		return mcp.NewToolResultError("size_gb parameter is required"), nil
	}
	if sizeGB <= 0 {
		return mcp.NewToolResultError("size_gb must be a positive number of GiB to add"), nil
	}

	if result := tools.CheckRestrictedNode(sc, node); result != nil {
		return result, nil
	}

	if err := client.ResizeVMDisk(ctx, node, vmid, disk, sizeGB); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to resize disk '%s' of VM %d: %v", disk, vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Grew disk '%s' of VM %d on cluster '%s' by %dG", disk, vmid, selected, sizeGB)), nil
}

// handleConfigureVM applies configuration parameters to a VM.
func handleConfigureVM(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if result := tools.CheckMutatingOperation(sc, "configure"); result != nil {
		return result, nil
	}

	client, selected, node, vmid, errResult := resolveTarget(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	rawParams, ok := args["params"].(map[string]interface{})
	if !ok || len(rawParams) == 0 {
		return mcp.NewToolResultError("params parameter is required and must be a non-empty object"), nil
	}

	params := make(map[string]string, len(rawParams))
	for key, value := range rawParams {
		params[key] = fmt.Sprintf("%v", value)
	}

	if result := tools.CheckRestrictedNode(sc, node); result != nil {
		return result, nil
	}

	if err := client.ConfigureVM(ctx, node, vmid, params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to configure VM %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Applied %d configuration parameters to VM %d on cluster '%s'", len(params), vmid, selected)), nil
}
