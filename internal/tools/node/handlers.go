package node

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-proxmox/internal/proxmox"
	"github.com/giantswarm/mcp-proxmox/internal/server"
	"github.com/giantswarm/mcp-proxmox/internal/tools"
)

// handleListNodes lists all nodes in the selected cluster.
func handleListNodes(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	clusterName := tools.ExtractClusterParam(args)

	client, selected, errMsg := tools.ResolveClient(ctx, sc, clusterName, "")
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	nodes, err := client.ListNodes(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list nodes: %v", err)), nil
	}

	response := struct {
		Cluster string         `json:"cluster"`
		Nodes   []proxmox.Node `json:"nodes"`
		Total   int            `json:"total"`
	}{
		Cluster: selected,
		Nodes:   nodes,
		Total:   len(nodes),
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal node list: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleNodeStatus shows detailed status of one node.
func handleNodeStatus(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	clusterName := tools.ExtractClusterParam(args)

	node, ok := tools.RequiredString(args, "node")
	if !ok {
		return mcp.NewToolResultError("node parameter is required"), nil
	}

	client, selected, errMsg := tools.ResolveClient(ctx, sc, clusterName, node)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	status, err := client.NodeStatus(ctx, node)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get status of node '%s': %v", node, err)), nil
	}

	response := struct {
		Cluster string              `json:"cluster"`
		Node    string              `json:"node"`
		Status  *proxmox.NodeStatus `json:"status"`
	}{
		Cluster: selected,
		Node:    node,
		Status:  status,
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal node status: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleListBridges lists the network bridges of one node.
func handleListBridges(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	clusterName := tools.ExtractClusterParam(args)

	node, ok := tools.RequiredString(args, "node")
	if !ok {
		return mcp.NewToolResultError("node parameter is required"), nil
	}

	client, selected, errMsg := tools.ResolveClient(ctx, sc, clusterName, node)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	bridges, err := client.ListBridges(ctx, node)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list bridges on node '%s': %v", node, err)), nil
	}

	response := struct {
		Cluster string                  `json:"cluster"`
		Node    string                  `json:"node"`
		Bridges []proxmox.NetworkBridge `json:"bridges"`
		Total   int                     `json:"total"`
	}{
		Cluster: selected,
		Node:    node,
		Bridges: bridges,
		Total:   len(bridges),
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal bridge list: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}
