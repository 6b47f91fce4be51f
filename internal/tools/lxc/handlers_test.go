package lxc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-proxmox/internal/proxmox"
	"github.com/giantswarm/mcp-proxmox/internal/server"
	"github.com/giantswarm/mcp-proxmox/internal/tools/testdata"
)

func newTestContext(t *testing.T, client *testdata.MockClient, opts ...server.Option) *server.ServerContext {
	t.Helper()

	registry := testdata.NewMockRegistry(client, "homelab")
	allOpts := append([]server.Option{
		server.WithRegistry(registry),
		server.WithNonDestructiveMode(false),
	}, opts...)

	sc, err := server.NewServerContext(context.Background(), allOpts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	return sc
}

func requestWithArgs(args map[string]interface{}) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	return request
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, result.Content)
	content, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return content.Text
}

func containerTarget(vmid int) map[string]interface{} {
	return map[string]interface{}{
		"node": "pve1",
		"vmid": float64(vmid),
	}
}

func TestHandleListContainers(t *testing.T) {
	client := &testdata.MockClient{
		Containers: []proxmox.Container{
			{VMID: 200, Name: "proxy-01", Status: "running"},
			{VMID: 201, Name: "dns-01", Status: "stopped"},
		},
	}
	sc := newTestContext(t, client)

	result, err := handleListContainers(context.Background(), requestWithArgs(map[string]interface{}{
		"status": "running",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var response struct {
		Cluster    string              `json:"cluster"`
		Containers []proxmox.Container `json:"containers"`
		Total      int                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &response))

	assert.Equal(t, "homelab", response.Cluster)
	assert.Equal(t, 2, response.Total)
	assert.Equal(t, proxmox.ListFilter{Status: "running"}, client.LastFilter)
}

func TestHandleContainerConfig(t *testing.T) {
	client := &testdata.MockClient{
		ContainerConfigData: map[string]interface{}{
			"hostname": "proxy-01",
			"rootfs":   "local-lvm:vm-200-disk-0,size=8G",
		},
	}
	sc := newTestContext(t, client)

	result, err := handleContainerConfig(context.Background(), requestWithArgs(containerTarget(200)), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := textContent(t, result)
	assert.Contains(t, text, `"vmid": 200`)
	assert.Contains(t, text, "proxy-01")
	assert.Equal(t, []string{"ContainerConfig(pve1,200)"}, client.Calls)
}

func TestHandleCreateContainer(t *testing.T) {
	client := &testdata.MockClient{UPID: "UPID:pve1:00001234:vzcreate:200:root@pam:"}
	sc := newTestContext(t, client)

	result, err := handleCreateContainer(context.Background(), requestWithArgs(map[string]interface{}{
		"node":       "pve1",
		"vmid":       float64(200),
		"ostemplate": "local:vztmpl/debian-12-standard_12.2-1_amd64.tar.zst",
		"hostname":   "proxy-01",
	}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Contains(t, textContent(t, result), "Creating container 200")
	assert.Equal(t, []string{"CreateContainer(pve1,200,proxy-01)"}, client.Calls)
}

func TestHandleCreateContainerMissingTemplate(t *testing.T) {
	client := &testdata.MockClient{}
	sc := newTestContext(t, client)

	result, err := handleCreateContainer(context.Background(), requestWithArgs(map[string]interface{}{
		"node": "pve1",
		"vmid": float64(200),
	}), sc)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "ostemplate parameter is required")
	assert.Empty(t, client.Calls)
}

func TestHandleCreateContainerBlockedInNonDestructiveMode(t *testing.T) {
	client := &testdata.MockClient{}
	registry := testdata.NewMockRegistry(client, "homelab")

	sc, err := server.NewServerContext(context.Background(), server.WithRegistry(registry))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	result, err := handleCreateContainer(context.Background(), requestWithArgs(map[string]interface{}{
		"node":       "pve1",
		"vmid":       float64(200),
		"ostemplate": "local:vztmpl/debian-12-standard_12.2-1_amd64.tar.zst",
	}), sc)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "non-destructive mode")
	assert.Empty(t, client.Calls)
}

func TestHandleStartContainer(t *testing.T) {
	client := &testdata.MockClient{UPID: "UPID:pve1:00002222:vzstart:200:root@pam:"}
	sc := newTestContext(t, client)

	result, err := handleStartContainer(context.Background(), requestWithArgs(containerTarget(200)), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Equal(t, []string{"StartContainer(pve1,200)"}, client.Calls)
}

func TestHandleStopContainerOnRestrictedNode(t *testing.T) {
	client := &testdata.MockClient{}
	sc := newTestContext(t, client, server.WithRestrictedNodes([]string{"pve1"}))

	result, err := handleStopContainer(context.Background(), requestWithArgs(containerTarget(200)), sc)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), `"pve1" is restricted`)
	assert.Empty(t, client.Calls)
}

func TestHandleShutdownContainerPassesTimeout(t *testing.T) {
	client := &testdata.MockClient{UPID: "UPID:pve1:00003333:vzshutdown:200:root@pam:"}
	sc := newTestContext(t, client)

	args := containerTarget(200)
	args["timeout"] = float64(60)

	result, err := handleShutdownContainer(context.Background(), requestWithArgs(args), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Equal(t, []string{"ShutdownContainer(pve1,200,60)"}, client.Calls)
}

func TestHandleRebootContainer(t *testing.T) {
	client := &testdata.MockClient{UPID: "UPID:pve1:00004444:vzreboot:200:root@pam:"}
	sc := newTestContext(t, client)

	result, err := handleRebootContainer(context.Background(), requestWithArgs(containerTarget(200)), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Equal(t, []string{"RebootContainer(pve1,200)"}, client.Calls)
}

func TestHandleMigrateContainer(t *testing.T) {
	client := &testdata.MockClient{UPID: "UPID:pve1:00005555:vzmigrate:200:root@pam:"}
	sc := newTestContext(t, client)

	args := containerTarget(200)
	args["target_node"] = "pve2"
	args["restart"] = true

	result, err := handleMigrateContainer(context.Background(), requestWithArgs(args), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Equal(t, []string{"MigrateContainer(pve1,200,pve2,true)"}, client.Calls)
}

func TestHandleDeleteContainerAlwaysRequiresConfirm(t *testing.T) {
	client := &testdata.MockClient{UPID: "UPID:pve1:00006666:vzdestroy:200:root@pam:"}
	sc := newTestContext(t, client)

	result, err := handleDeleteContainer(context.Background(), requestWithArgs(containerTarget(200)), sc)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "confirm=true")
	assert.Empty(t, client.Calls)

	args := containerTarget(200)
	args["confirm"] = true
	result, err = handleDeleteContainer(context.Background(), requestWithArgs(args), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Equal(t, []string{"DeleteContainer(pve1,200,false)"}, client.Calls)
}

func TestHandleConfigureContainer(t *testing.T) {
	client := &testdata.MockClient{}
	sc := newTestContext(t, client)

	args := containerTarget(200)
	args["params"] = map[string]interface{}{
		"memory": "1024",
	}

	result, err := handleConfigureContainer(context.Background(), requestWithArgs(args), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, textContent(t, result), "1 configuration parameters")
	assert.Equal(t, []string{"ConfigureContainer(pve1,200)"}, client.Calls)
}

func TestHandleResolveContainer(t *testing.T) {
	client := &testdata.MockClient{
		Containers: []proxmox.Container{
			{VMID: 200, Name: "cache-01", Node: "pve1", Status: "running"},
			{VMID: 201, Name: "proxy-01", Node: "pve2", Status: "stopped"},
		},
	}
	sc := newTestContext(t, client)
	ctx := context.Background()

	t.Run("by name", func(t *testing.T) {
		result, err := handleResolveContainer(ctx, requestWithArgs(map[string]interface{}{
			"name": "cache-01",
		}), sc)
		require.NoError(t, err)
		require.False(t, result.IsError)

		var response struct {
			VMID   int    `json:"vmid"`
			Node   string `json:"node"`
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &response))
		assert.Equal(t, 200, response.VMID)
		assert.Equal(t, "pve1", response.Node)
	})

	t.Run("by vmid", func(t *testing.T) {
		result, err := handleResolveContainer(ctx, requestWithArgs(map[string]interface{}{
			"vmid": float64(201),
		}), sc)
		require.NoError(t, err)
		require.False(t, result.IsError)
		assert.Contains(t, textContent(t, result), `"name": "proxy-01"`)
	})

	t.Run("not found", func(t *testing.T) {
		result, err := handleResolveContainer(ctx, requestWithArgs(map[string]interface{}{
			"vmid": float64(999),
		}), sc)
		require.NoError(t, err)
		require.True(t, result.IsError)
		assert.Contains(t, textContent(t, result), "No container with ID 999")
	})

	t.Run("requires name or vmid", func(t *testing.T) {
		result, err := handleResolveContainer(ctx, requestWithArgs(nil), sc)
		require.NoError(t, err)
		require.True(t, result.IsError)
		assert.Contains(t, textContent(t, result), "either name or vmid")
	})
}

func TestContainerAPIErrorsAreReported(t *testing.T) {
	client := &testdata.MockClient{Err: errors.New("CT 200 already exists")}
	sc := newTestContext(t, client)

	result, err := handleStartContainer(context.Background(), requestWithArgs(containerTarget(200)), sc)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "Failed to start container 200")
}
