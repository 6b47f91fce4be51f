package cluster

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-proxmox/internal/cluster"
	"github.com/giantswarm/mcp-proxmox/internal/server"
	"github.com/giantswarm/mcp-proxmox/internal/tools"
)

// clusterSummary is the display form of a cluster configuration. The
// registry hands out redacted configs, so the token secret is always
// empty and never serialized.
type clusterSummary struct {
	Name               string   `json:"name"`
	APIURL             string   `json:"api_url"`
	TokenID            string   `json:"token_id,omitempty"`
	InsecureSkipVerify bool     `json:"insecure_skip_verify,omitempty"`
	DefaultNode        string   `json:"default_node,omitempty"`
	DefaultStorage     string   `json:"default_storage,omitempty"`
	DefaultBridge      string   `json:"default_bridge,omitempty"`
	Region             string   `json:"region,omitempty"`
	Tier               string   `json:"tier,omitempty"`
	NamePatterns       []string `json:"name_patterns,omitempty"`
	IsDefault          bool     `json:"is_default,omitempty"`
}

func newClusterSummary(config cluster.ClusterConfig, defaultCluster string) clusterSummary {
	return clusterSummary{
		Name:               config.Name,
		APIURL:             config.APIURL,
		TokenID:            config.TokenID,
		InsecureSkipVerify: config.InsecureSkipVerify,
		DefaultNode:        config.DefaultNode,
		DefaultStorage:     config.DefaultStorage,
		DefaultBridge:      config.DefaultBridge,
		Region:             config.Region,
		Tier:               config.Tier,
		NamePatterns:       config.NamePatterns,
		IsDefault:          config.Name == defaultCluster,
	}
}

// handleListClusters lists all configured clusters with redacted
// credentials.
func handleListClusters(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	registry := sc.Registry()
	defaultCluster := registry.DefaultCluster()

	configs := registry.ListClusters()
	summaries := make([]clusterSummary, 0, len(configs))
	for _, config := range configs {
		summaries = append(summaries, newClusterSummary(config, defaultCluster))
	}

	response := struct {
		Clusters       []clusterSummary `json:"clusters"`
		DefaultCluster string           `json:"default_cluster"`
		Total          int              `json:"total"`
	}{
		Clusters:       summaries,
		DefaultCluster: defaultCluster,
		Total:          len(summaries),
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal cluster list: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleDescribeCluster shows the configuration of one cluster.
func handleDescribeCluster(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, ok := tools.RequiredString(args, "name")
	if !ok {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	registry := sc.Registry()
	config, err := registry.Describe(name)
	if err != nil {
		return mcp.NewToolResultError(tools.FormatClusterError(err, name)), nil
	}

	summary := newClusterSummary(config, registry.DefaultCluster())

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal cluster configuration: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleValidateClusters probes connectivity to every configured
// cluster.
func handleValidateClusters(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	results := sc.Registry().ValidateAll(ctx)

	reachable := 0
	for _, result := range results {
		if result.Reachable {
			reachable++
		}
	}

	response := struct {
		Clusters  map[string]cluster.ValidationResult `json:"clusters"`
		Reachable int                                 `json:"reachable"`
		Total     int                                 `json:"total"`
	}{
		Clusters:  results,
		Reachable: reachable,
		Total:     len(results),
	}

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal validation results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleClusterStatus aggregates inventory counts across all clusters.
func handleClusterStatus(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	statuses := sc.Registry().AggregateStatus(ctx)

	jsonData, err := json.MarshalIndent(statuses, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal cluster status: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleInvalidateCache drops cached API clients, either for one named
// cluster or for all of them.
func handleInvalidateCache(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	registry := sc.Registry()

	if name, ok := tools.RequiredString(args, "name"); ok {
		if _, err := registry.Describe(name); err != nil {
			return mcp.NewToolResultError(tools.FormatClusterError(err, name)), nil
		}
		registry.InvalidateClient(ctx, name)
		return mcp.NewToolResultText(fmt.Sprintf("Invalidated cached client for cluster '%s'", name)), nil
	}

	registry.InvalidateAll(ctx)
	return mcp.NewToolResultText("Invalidated cached clients for all clusters"), nil
}
