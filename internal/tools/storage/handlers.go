package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-proxmox/internal/proxmox"
	"github.com/giantswarm/mcp-proxmox/internal/server"
	"github.com/giantswarm/mcp-proxmox/internal/tools"
	"github.com/giantswarm/mcp-proxmox/internal/tools/output"
)

// handleListStorage lists all storage backends of the selected cluster.
func handleListStorage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	clusterName := tools.ExtractClusterParam(args)

	client, selected, errMsg := tools.ResolveClient(ctx, sc, clusterName, "")
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	storages, err := client.ListStorage(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list storage: %v", err)), nil
	}

	response := struct {
		Cluster  string            `json:"cluster"`
		Storages []proxmox.Storage `json:"storages"`
		Total    int               `json:"total"`
	}{
		Cluster:  selected,
		Storages: storages,
		Total:    len(storages),
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal storage list: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleStorageStatus shows usage of one storage on one node.
func handleStorageStatus(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	node, ok := tools.RequiredString(args, "node")
	if !ok {
		return mcp.NewToolResultError("node parameter is required"), nil
	}

	storageID, ok := tools.RequiredString(args, "storage")
	if !ok {
		return mcp.NewToolResultError("storage parameter is required"), nil
	}

	clusterName := tools.ExtractClusterParam(args)
	client, selected, errMsg := tools.ResolveClient(ctx, sc, clusterName, node)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	status, err := client.StorageStatus(ctx, node, storageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get status of storage '%s': %v", storageID, err)), nil
	}

	response := struct {
		Cluster string           `json:"cluster"`
		Node    string           `json:"node"`
		Status  *proxmox.Storage `json:"status"`
	}{
		Cluster: selected,
		Node:    node,
		Status:  status,
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal storage status: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleStorageContent lists the volumes on one storage backend.
func handleStorageContent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	node, ok := tools.RequiredString(args, "node")
	if !ok {
		return mcp.NewToolResultError("node parameter is required"), nil
	}

	storageID, ok := tools.RequiredString(args, "storage")
	if !ok {
		return mcp.NewToolResultError("storage parameter is required"), nil
	}

	clusterName := tools.ExtractClusterParam(args)
	client, selected, errMsg := tools.ResolveClient(ctx, sc, clusterName, node)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	content, err := client.StorageContent(ctx, node, storageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list content of storage '%s': %v", storageID, err)), nil
	}

	limit := output.EffectiveLimit(tools.OptionalInt(args, "limit", 0))
	shown, truncation := output.Truncate(content, limit)

	response := struct {
		Cluster    string                    `json:"cluster"`
		Node       string                    `json:"node"`
		Storage    string                    `json:"storage"`
		Content    []proxmox.StorageContent  `json:"content"`
		Total      int                       `json:"total"`
		Truncation *output.TruncationWarning `json:"truncation,omitempty"`
	}{
		Cluster:    selected,
		Node:       node,
		Storage:    storageID,
		Content:    shown,
		Total:      len(content),
		Truncation: truncation,
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal storage content: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}
