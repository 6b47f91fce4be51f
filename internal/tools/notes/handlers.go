package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-proxmox/internal/server"
	"github.com/giantswarm/mcp-proxmox/internal/tools"
)

// guestTarget extracts the guest type, node and vmid parameters and
// resolves the API client for the selected cluster.
func guestTarget(ctx context.Context, sc *server.ServerContext, args map[string]interface{}) (client guestClient, selected, guestType, node string, vmid int, errResult *mcp.CallToolResult) {
	guestType = tools.OptionalString(args, "type", "vm")
	if guestType != "vm" && guestType != "lxc" {
		return nil, "", "", "", 0, mcp.NewToolResultError("type parameter must be 'vm' or 'lxc'")
	}

	node, ok := tools.RequiredString(args, "node")
	if !ok {
		return nil, "", "", "", 0, mcp.NewToolResultError("node parameter is required")
	}

	vmid, ok = tools.RequiredInt(args, "vmid")
	if !ok {
		return nil, "", "", "", 0, mcp.NewToolResultError("vmid parameter is required")
	}

	clusterName := tools.ExtractClusterParam(args)
	c, selected, errMsg := tools.ResolveClient(ctx, sc, clusterName, node)
	if errMsg != "" {
		return nil, "", "", "", 0, mcp.NewToolResultError(errMsg)
	}

	return c, selected, guestType, node, vmid, nil
}

// guestClient is the slice of the API client the notes tools need.
type guestClient interface {
	VMConfig(ctx context.Context, node string, vmid int) (map[string]interface{}, error)
	ContainerConfig(ctx context.Context, node string, vmid int) (map[string]interface{}, error)
	ConfigureVM(ctx context.Context, node string, vmid int, params map[string]string) error
	ConfigureContainer(ctx context.Context, node string, vmid int, params map[string]string) error
}

// handleGetNotes reads the notes of a VM or container.
func handleGetNotes(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	client, selected, guestType, node, vmid, errResult := guestTarget(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	var config map[string]interface{}
	var err error
	if guestType == "vm" {
		config, err = client.VMConfig(ctx, node, vmid)
	} else {
		config, err = client.ContainerConfig(ctx, node, vmid)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get notes of %s %d: %v", guestType, vmid, err)), nil
	}

	content, _ := config["description"].(string)

	lines := 0
	if content != "" {
		lines = strings.Count(content, "\n") + 1
	}

	response := struct {
		Cluster          string   `json:"cluster"`
		Type             string   `json:"type"`
		Node             string   `json:"node"`
		VMID             int      `json:"vmid"`
		Content          string   `json:"content"`
		Format           string   `json:"format"`
		Length           int      `json:"length"`
		Lines            int      `json:"lines"`
		SecretReferences []string `json:"secret_references,omitempty"`
	}{
		Cluster:          selected,
		Type:             guestType,
		Node:             node,
		VMID:             vmid,
		Content:          content,
		Format:           DetectFormat(content),
		Length:           len(content),
		Lines:            lines,
		SecretReferences: SecretReferences(content),
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal notes: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleSetNotes replaces the notes of a VM or container. Content with
// plaintext credentials is rejected; empty content clears the notes.
func handleSetNotes(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if result := tools.CheckMutatingOperation(sc, "configure"); result != nil {
		return result, nil
	}

	client, selected, guestType, node, vmid, errResult := guestTarget(ctx, sc, args)
	if errResult != nil {
		return errResult, nil
	}

	content, ok := args["content"].(string)
	if !ok {
		return mcp.NewToolResultError("content parameter is required (an empty string clears the notes)"), nil
	}

	if result := tools.CheckRestrictedNode(sc, node); result != nil {
		return result, nil
	}

	warnings, secrets := Validate(content)
	if len(secrets) > 0 {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Refusing to store notes containing plaintext credentials (%s); use secret:// references instead",
			strings.Join(secrets, ", "))), nil
	}

	var err error
	if guestType == "vm" {
		err = client.ConfigureVM(ctx, node, vmid, map[string]string{"description": content})
	} else {
		err = client.ConfigureContainer(ctx, node, vmid, map[string]string{"description": content})
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to set notes of %s %d: %v", guestType, vmid, err)), nil
	}

	message := fmt.Sprintf("Updated notes of %s %d on node '%s' of cluster '%s' (%d bytes, %s)",
		guestType, vmid, node, selected, len(content), DetectFormat(content))
	if content == "" {
		message = fmt.Sprintf("Cleared notes of %s %d on node '%s' of cluster '%s'", guestType, vmid, node, selected)
	}
	if len(warnings) > 0 {
		message += "; warnings: " + strings.Join(warnings, "; ")
	}

	return mcp.NewToolResultText(message), nil
}
