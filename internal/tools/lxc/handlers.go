package lxc

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
// resolves the API client for the selected cluster.
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

// handleResolveContainer locates a container by name or vmid and
// reports where it runs. Name matches must be unambiguous.
func handleResolveContainer(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	containers, err := client.ListContainers(ctx, proxmox.ListFilter{Node: node})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list containers: %v", err)), nil
	}

	matches := matchContainers(containers, name, vmid)
	switch len(matches) {
	case 0:
		if name != "" {
			return mcp.NewToolResultError(fmt.Sprintf("No container named '%s' found on cluster '%s'", name, selected)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("No container with ID %d found on cluster '%s'", vmid, selected)), nil
	case 1:
	default:
		ids := make([]string, len(matches))
		for i, ct := range matches {
			ids[i] = fmt.Sprintf("%d (node %s)", ct.VMID, ct.Node)
		}
		return mcp.NewToolResultError(fmt.Sprintf("Container name '%s' is ambiguous, matches: %s; resolve by vmid instead", name, strings.Join(ids, ", "))), nil
	}

	ct := matches[0]
	response := struct {
		Cluster string `json:"cluster"`
		VMID    int    `json:"vmid"`
		Node    string `json:"node"`
		Name    string `json:"name"`
		Status  string `json:"status"`
	}{
		Cluster: selected,
		VMID:    ct.VMID,
		Node:    ct.Node,
		Name:    ct.Name,
		Status:  ct.Status,
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal resolved container: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// matchContainers filters by vmid when given, otherwise by
// case-insensitive exact name.
func matchContainers(containers []proxmox.Container, name string, vmid int) []proxmox.Container {
	var matches []proxmox.Container
	for _, ct := range containers {
		if vmid != 0 {
			if ct.VMID == vmid {
				matches = append(matches, ct)
			}
			continue
		}
		if strings.EqualFold(ct.Name, name) {
			matches = append(matches, ct)
		}
	}
	return matches
}

// handleListContainers lists LXC containers with optional filtering.
func handleListContainers(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	containers, err := client.ListContainers(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list containers: %v", err)), nil
	}

	limit := output.EffectiveLimit(tools.OptionalInt(args, "limit", 0))
	shown, truncation := output.Truncate(containers, limit)

	response := struct {
		Cluster    string                    `json:"cluster"`
		Containers []proxmox.Container       `json:"containers"`
		Total      int                       `json:"total"`
		Truncation *output.TruncationWarning `json:"truncation,omitempty"`
	}{
		Cluster:    selected,
		Containers: shown,
		Total:      len(containers),
		Truncation: truncation,
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal container list: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleContainerConfig shows the configuration of one container.
func handleContainerConfig(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	client, selected, node, vmid, errResult := resolveTarget(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	config, err := client.ContainerConfig(ctx, node, vmid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get config of container %d: %v", vmid, err)), nil
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
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal container config: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleCreateContainer creates a new LXC container. The node, storage
// and bridge fall back to the cluster's configured defaults.
func handleCreateContainer(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if result := tools.CheckMutatingOperation(sc, "create"); result != nil {
		return result, nil
	}

	vmid, ok := tools.RequiredInt(args, "vmid")
	if !ok {
		return mcp.NewToolResultError("vmid parameter is required"), nil
	}

	ostemplate, ok := tools.RequiredString(args, "ostemplate")
	if !ok {
		return mcp.NewToolResultError("ostemplate parameter is required"), nil
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

	opts := proxmox.CreateContainerOptions{
		Hostname:   tools.OptionalString(args, "hostname", ""),
		OSTemplate: ostemplate,
		Cores:      tools.OptionalInt(args, "cores", 0),
		MemoryMB:   tools.OptionalInt(args, "memory_mb", 0),
		RootFSGB:   tools.OptionalInt(args, "rootfs_gb", 0),
		Storage:    tools.OptionalString(args, "storage", clusterConfig.DefaultStorage),
		Bridge:     tools.OptionalString(args, "bridge", clusterConfig.DefaultBridge),
		NetIP:      tools.OptionalString(args, "net_ip", ""),
		Password:   tools.OptionalString(args, "password", ""),
	}

	upid, err := client.CreateContainer(ctx, node, vmid, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create container %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Creating container %d on node '%s' of cluster '%s' (task %s)", vmid, node, selected, upid)), nil
}

// handleStartContainer starts a container.
func handleStartContainer(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	upid, err := client.StartContainer(ctx, node, vmid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to start container %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Starting container %d on node '%s' of cluster '%s' (task %s)", vmid, node, selected, upid)), nil
}

// handleStopContainer hard-stops a container.
func handleStopContainer(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	if result := tools.CheckConfirmation(sc, args, "stop", fmt.Sprintf("container %d", vmid)); result != nil {
		return result, nil
	}

	upid, err := client.StopContainer(ctx, node, vmid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to stop container %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Stopping container %d on node '%s' of cluster '%s' (task %s)", vmid, node, selected, upid)), nil
}

// handleShutdownContainer requests a clean container shutdown.
func handleShutdownContainer(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	upid, err := client.ShutdownContainer(ctx, node, vmid, timeout)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to shut down container %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Shutting down container %d on node '%s' of cluster '%s' (task %s)", vmid, node, selected, upid)), nil
}

// handleRebootContainer reboots a container.
func handleRebootContainer(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	upid, err := client.RebootContainer(ctx, node, vmid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to reboot container %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Rebooting container %d on node '%s' of cluster '%s' (task %s)", vmid, node, selected, upid)), nil
}

// handleMigrateContainer migrates a container to another node.
func handleMigrateContainer(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	if result := tools.CheckConfirmation(sc, args, "migration", fmt.Sprintf("container %d", vmid)); result != nil {
		return result, nil
	}

	restart := tools.OptionalBool(args, "restart")

	upid, err := client.MigrateContainer(ctx, node, vmid, targetNode, restart)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to migrate container %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Migrating container %d from node '%s' to node '%s' on cluster '%s' (task %s)", vmid, node, targetNode, selected, upid)), nil
}

// handleDeleteContainer destroys a container. Requires confirm=true.
func handleDeleteContainer(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	if result := tools.RequireConfirm(args, "deletion", fmt.Sprintf("container %d", vmid)); result != nil {
		return result, nil
	}

	purge := tools.OptionalBool(args, "purge")

	upid, err := client.DeleteContainer(ctx, node, vmid, purge)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete container %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleting container %d on node '%s' of cluster '%s' (task %s)", vmid, node, selected, upid)), nil
}

// handleConfigureContainer applies configuration parameters to a
// container.
func handleConfigureContainer(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	if err := client.ConfigureContainer(ctx, node, vmid, params); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to configure container %d: %v", vmid, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Applied %d configuration parameters to container %d on cluster '%s'", len(params), vmid, selected)), nil
}
