package tools

import (
	"context"

	"github.com/giantswarm/mcp-proxmox/internal/cluster"
	"github.com/giantswarm/mcp-proxmox/internal/proxmox"
)

// stubRegistry is a minimal ClusterRegistry used across the tool tests.
type stubRegistry struct {
	clusters []cluster.ClusterConfig
	client   proxmox.Client
	getErr   error
}

var _ cluster.ClusterRegistry = (*stubRegistry)(nil)

func newStubRegistry(names ...string) *stubRegistry {
	s := &stubRegistry{}
	for _, name := range names {
		s.clusters = append(s.clusters, cluster.ClusterConfig{
			Name:   name,
			APIURL: "https://" + name + ".example.com:8006",
		})
	}
	return s
}

func (s *stubRegistry) GetClient(ctx context.Context, clusterName, resourceName string) (proxmox.Client, string, error) {
	if s.getErr != nil {
		return nil, "", s.getErr
	}
	selected := clusterName
	if selected == "" {
		selected = s.DefaultCluster()
	}
	return s.client, selected, nil
}

func (s *stubRegistry) ClusterFor(clusterName, resourceName string) (cluster.ClusterConfig, error) {
	for _, c := range s.clusters {
		if c.Name == clusterName {
			return c, nil
		}
	}
	return cluster.ClusterConfig{}, &cluster.ClusterNotFoundError{ClusterName: clusterName}
}

func (s *stubRegistry) ListClusters() []cluster.ClusterConfig {
	return s.clusters
}

func (s *stubRegistry) Describe(clusterName string) (cluster.ClusterConfig, error) {
	return s.ClusterFor(clusterName, "")
}

func (s *stubRegistry) DefaultCluster() string {
	if len(s.clusters) == 0 {
		return ""
	}
	return s.clusters[0].Name
}

func (s *stubRegistry) InvalidateClient(ctx context.Context, clusterName string) {}

func (s *stubRegistry) InvalidateAll(ctx context.Context) {}

func (s *stubRegistry) ValidateAll(ctx context.Context) map[string]cluster.ValidationResult {
	return map[string]cluster.ValidationResult{}
}

func (s *stubRegistry) AggregateStatus(ctx context.Context) map[string]cluster.ClusterStatus {
	return map[string]cluster.ClusterStatus{}
}

func (s *stubRegistry) CacheStats() cluster.CacheStats {
	return cluster.CacheStats{}
}

func (s *stubRegistry) Close() error {
	return nil
}
