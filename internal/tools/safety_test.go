package tools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-proxmox/internal/server"
)

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	content, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return content.Text
}

func newSafetyContext(t *testing.T, opts ...server.Option) *server.ServerContext {
	t.Helper()
	opts = append([]server.Option{server.WithRegistry(newStubRegistry("homelab"))}, opts...)
	sc, err := server.NewServerContext(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestCheckMutatingOperation(t *testing.T) {
	tests := []struct {
		name        string
		opts        []server.Option
		operation   string
		wantBlocked bool
	}{
		{
			name:        "blocked in non-destructive mode",
			operation:   "delete",
			wantBlocked: true,
		},
		{
			name:        "allowed when non-destructive mode disabled",
			opts:        []server.Option{server.WithNonDestructiveMode(false)},
			operation:   "delete",
			wantBlocked: false,
		},
		{
			name:        "read operations always allowed",
			operation:   "list",
			wantBlocked: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newSafetyContext(t, tt.opts...)

			result := CheckMutatingOperation(sc, tt.operation)
			if tt.wantBlocked {
				require.NotNil(t, result)
				assert.True(t, result.IsError)
				assert.Contains(t, textContent(t, result), "non-destructive mode")
			} else {
				assert.Nil(t, result)
			}
		})
	}
}

func TestCheckMutatingOperationAllowList(t *testing.T) {
	config := server.NewDefaultConfig()
	config.AllowedOperations = append(config.AllowedOperations, "start")

	sc := newSafetyContext(t, server.WithConfig(config))

	assert.Nil(t, CheckMutatingOperation(sc, "start"))
	assert.NotNil(t, CheckMutatingOperation(sc, "delete"))
}

func TestCheckMutatingOperationTitleCasesMessage(t *testing.T) {
	sc := newSafetyContext(t)

	result := CheckMutatingOperation(sc, "delete")
	require.NotNil(t, result)
	assert.Contains(t, textContent(t, result), "Delete operations")
}

func TestCheckConfirmation(t *testing.T) {
	tests := []struct {
		name        string
		require     bool
		args        map[string]interface{}
		wantBlocked bool
	}{
		{
			name:        "not required",
			require:     false,
			args:        map[string]interface{}{},
			wantBlocked: false,
		},
		{
			name:        "required and missing",
			require:     true,
			args:        map[string]interface{}{},
			wantBlocked: true,
		},
		{
			name:        "required and confirmed",
			require:     true,
			args:        map[string]interface{}{"confirm": true},
			wantBlocked: false,
		},
		{
			name:        "required and explicitly false",
			require:     true,
			args:        map[string]interface{}{"confirm": false},
			wantBlocked: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newSafetyContext(t, server.WithRequireConfirmation(tt.require))

			result := CheckConfirmation(sc, tt.args, "deletion", "VM 100")
			if tt.wantBlocked {
				require.NotNil(t, result)
				assert.True(t, result.IsError)
				assert.Contains(t, textContent(t, result), "confirm=true")
				assert.Contains(t, textContent(t, result), "VM 100")
			} else {
				assert.Nil(t, result)
			}
		})
	}
}

func TestCheckRestrictedNode(t *testing.T) {
	sc := newSafetyContext(t, server.WithRestrictedNodes([]string{"pve-critical"}))

	assert.Nil(t, CheckRestrictedNode(sc, ""))
	assert.Nil(t, CheckRestrictedNode(sc, "pve-worker"))

	result := CheckRestrictedNode(sc, "pve-critical")
	require.NotNil(t, result)
	assert.Contains(t, textContent(t, result), "pve-critical")
}
