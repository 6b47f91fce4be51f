package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-proxmox/internal/server"
)

func TestAddClusterParam(t *testing.T) {
	single, err := server.NewServerContext(context.Background(),
		server.WithRegistry(newStubRegistry("homelab")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = single.Shutdown() })

	multi, err := server.NewServerContext(context.Background(),
		server.WithRegistry(newStubRegistry("production", "staging")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = multi.Shutdown() })

	assert.Empty(t, AddClusterParam(single), "single-cluster mode should not expose a cluster parameter")
	assert.Len(t, AddClusterParam(multi), 1)
}

func TestExtractClusterParam(t *testing.T) {
	assert.Equal(t, "production", ExtractClusterParam(map[string]interface{}{"cluster": "production"}))
	assert.Equal(t, "", ExtractClusterParam(map[string]interface{}{}))
	assert.Equal(t, "", ExtractClusterParam(map[string]interface{}{"cluster": 42}))
}

func TestRequiredString(t *testing.T) {
	args := map[string]interface{}{"node": "pve1", "empty": ""}

	value, ok := RequiredString(args, "node")
	assert.True(t, ok)
	assert.Equal(t, "pve1", value)

	_, ok = RequiredString(args, "empty")
	assert.False(t, ok)

	_, ok = RequiredString(args, "missing")
	assert.False(t, ok)
}

func TestOptionalString(t *testing.T) {
	args := map[string]interface{}{"storage": "local-lvm"}

	assert.Equal(t, "local-lvm", OptionalString(args, "storage", "local"))
	assert.Equal(t, "local", OptionalString(args, "missing", "local"))
}

func TestRequiredInt(t *testing.T) {
	// JSON numbers decode to float64.
	args := map[string]interface{}{"vmid": float64(100), "name": "web"}

	value, ok := RequiredInt(args, "vmid")
	assert.True(t, ok)
	assert.Equal(t, 100, value)

	_, ok = RequiredInt(args, "name")
	assert.False(t, ok)

	_, ok = RequiredInt(args, "missing")
	assert.False(t, ok)
}

func TestOptionalInt(t *testing.T) {
	args := map[string]interface{}{"limit": float64(25)}

	assert.Equal(t, 25, OptionalInt(args, "limit", 50))
	assert.Equal(t, 50, OptionalInt(args, "missing", 50))
}

func TestOptionalBool(t *testing.T) {
	args := map[string]interface{}{"online": true}

	assert.True(t, OptionalBool(args, "online"))
	assert.False(t, OptionalBool(args, "missing"))
}
