package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-proxmox/internal/proxmox"
	"github.com/giantswarm/mcp-proxmox/internal/server"
	"github.com/giantswarm/mcp-proxmox/internal/tools"
)

// defaultWaitTimeout bounds pve_wait_task when the caller gives no
// timeout. Most Proxmox tasks finish well within five minutes.
const defaultWaitTimeout = 5 * time.Minute

// handleListTasks lists recent tasks on one node.
func handleListTasks(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	node, ok := tools.RequiredString(args, "node")
	if !ok {
		return mcp.NewToolResultError("node parameter is required"), nil
	}

	clusterName := tools.ExtractClusterParam(args)
	client, selected, errMsg := tools.ResolveClient(ctx, sc, clusterName, node)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	limit := tools.OptionalInt(args, "limit", 0)

	taskList, err := client.ListTasks(ctx, node, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list tasks on node '%s': %v", node, err)), nil
	}

	response := struct {
		Cluster string         `json:"cluster"`
		Node    string         `json:"node"`
		Tasks   []proxmox.Task `json:"tasks"`
		Total   int            `json:"total"`
	}{
		Cluster: selected,
		Node:    node,
		Tasks:   taskList,
		Total:   len(taskList),
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal task list: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleTaskStatus shows the current status of one task.
func handleTaskStatus(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	upid, ok := tools.RequiredString(args, "upid")
	if !ok {
		return mcp.NewToolResultError("upid parameter is required"), nil
	}

	node := tools.OptionalString(args, "node", "")

	clusterName := tools.ExtractClusterParam(args)
	client, selected, errMsg := tools.ResolveClient(ctx, sc, clusterName, node)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	status, err := client.TaskStatus(ctx, node, upid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get status of task '%s': %v", upid, err)), nil
	}

	response := struct {
		Cluster string        `json:"cluster"`
		Task    *proxmox.Task `json:"task"`
	}{
		Cluster: selected,
		Task:    status,
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal task status: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleWaitTask blocks until the task finishes or the timeout
// elapses, then reports the final status.
func handleWaitTask(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	upid, ok := tools.RequiredString(args, "upid")
	if !ok {
		return mcp.NewToolResultError("upid parameter is required"), nil
	}

	node := tools.OptionalString(args, "node", "")

	clusterName := tools.ExtractClusterParam(args)
	client, selected, errMsg := tools.ResolveClient(ctx, sc, clusterName, node)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	timeout := defaultWaitTimeout
	if seconds := tools.OptionalInt(args, "timeout", 0); seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	finished, err := client.WaitForTask(waitCtx, node, upid, 0)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return mcp.NewToolResultError(fmt.Sprintf("Task '%s' did not finish within %s", upid, timeout)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to wait for task '%s': %v", upid, err)), nil
	}

	response := struct {
		Cluster   string        `json:"cluster"`
		Task      *proxmox.Task `json:"task"`
		Succeeded bool          `json:"succeeded"`
	}{
		Cluster:   selected,
		Task:      finished,
		Succeeded: finished.Succeeded(),
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal task result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}
