package tools

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-proxmox/internal/cluster"
	"github.com/giantswarm/mcp-proxmox/internal/proxmox"
	"github.com/giantswarm/mcp-proxmox/internal/server"
)

func TestResolveClient(t *testing.T) {
	registry := newStubRegistry("production", "staging")
	registry.client = &proxmox.HTTPClient{}

	sc, err := server.NewServerContext(context.Background(), server.WithRegistry(registry))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	client, selected, errMsg := ResolveClient(context.Background(), sc, "staging", "")
	assert.Empty(t, errMsg)
	assert.NotNil(t, client)
	assert.Equal(t, "staging", selected)

	// Empty cluster falls back to the default.
	_, selected, errMsg = ResolveClient(context.Background(), sc, "", "web-01")
	assert.Empty(t, errMsg)
	assert.Equal(t, "production", selected)
}

func TestResolveClientError(t *testing.T) {
	registry := newStubRegistry("production")
	registry.getErr = &cluster.ClusterNotFoundError{ClusterName: "missing"}

	sc, err := server.NewServerContext(context.Background(), server.WithRegistry(registry))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	client, _, errMsg := ResolveClient(context.Background(), sc, "missing", "")
	assert.Nil(t, client)
	assert.Contains(t, errMsg, "'missing' not found")
	assert.Contains(t, errMsg, "pve_list_clusters")
}

func TestFormatClusterError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		clusterName string
		want        []string
	}{
		{
			name: "nil error",
			err:  nil,
			want: []string{},
		},
		{
			name:        "cluster not found struct error",
			err:         &cluster.ClusterNotFoundError{ClusterName: "prod-eu"},
			clusterName: "prod-eu",
			want:        []string{"'prod-eu' not found", "pve_list_clusters"},
		},
		{
			name: "ambiguous selection lists candidates",
			err: &cluster.AmbiguousSelectionError{
				ResourceName: "prod-web",
				Candidates:   []string{"production", "prod-dr"},
			},
			want: []string{"prod-web", "production", "prod-dr"},
		},
		{
			name: "connection error names cluster",
			err: &cluster.ConnectionError{
				ClusterName: "staging",
				Err:         errors.New("connection refused"),
			},
			clusterName: "staging",
			want:        []string{"'staging'", "connection refused"},
		},
		{
			name: "registry closed sentinel",
			err:  cluster.ErrRegistryClosed,
			want: []string{"shutting down"},
		},
		{
			name: "wrapped sentinel",
			err:  fmt.Errorf("lookup: %w", cluster.ErrClusterNotFound),
			want: []string{"cluster not found"},
		},
		{
			name: "unknown error degrades gracefully",
			err:  errors.New("boom"),
			want: []string{"failed to access cluster", "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := FormatClusterError(tt.err, tt.clusterName)
			if tt.err == nil {
				assert.Empty(t, msg)
				return
			}
			for _, want := range tt.want {
				assert.Contains(t, msg, want)
			}
		})
	}
}
