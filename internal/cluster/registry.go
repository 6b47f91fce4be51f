package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/mcp-proxmox/internal/logging"
	"github.com/giantswarm/mcp-proxmox/internal/proxmox"
)

// healthCheckConcurrency bounds the fan-out of ValidateAll and
// AggregateStatus so a registry with many clusters does not open an
// unbounded number of TLS connections at once.
const healthCheckConcurrency = 8

// ClusterRegistry is the dispatch surface for multi-cluster Proxmox
// operations. It owns the cluster configuration, the selection policy
// and the client cache.
//
// All methods are thread-safe and can be called concurrently from
// multiple tool handlers.
type ClusterRegistry interface {
	// GetClient resolves the target cluster from an optional explicit
	// cluster name and an optional resource name, then returns a ready
	// API client for it together with the resolved cluster name.
	//
	// Selection priority: explicit name, then name-pattern match, then
	// the default cluster. See SelectCluster for the exact rules.
	GetClient(ctx context.Context, clusterName, resourceName string) (proxmox.Client, string, error)

	// ClusterFor resolves the target cluster without building a
	// client. Same selection rules as GetClient.
	ClusterFor(clusterName, resourceName string) (ClusterConfig, error)

	// ListClusters returns the redacted configuration of every
	// registered cluster in registration order.
	ListClusters() []ClusterConfig

	// Describe returns the redacted configuration of one cluster.
	// Returns ErrClusterNotFound if the name is not registered.
	Describe(clusterName string) (ClusterConfig, error)

	// DefaultCluster returns the name of the default cluster.
	DefaultCluster() string

	// InvalidateClient drops the cached client for one cluster. The
	// next GetClient for that cluster rebuilds it, which is the way to
	// pick up rotated credentials without a restart.
	InvalidateClient(ctx context.Context, clusterName string)

	// InvalidateAll drops every cached client.
	InvalidateAll(ctx context.Context)

	// ValidateAll probes connectivity to every cluster concurrently
	// and returns a per-cluster result. One unreachable cluster never
	// affects another cluster's result.
	ValidateAll(ctx context.Context) map[string]ValidationResult

	// AggregateStatus collects node, guest and storage counts from
	// every cluster concurrently. Unreachable clusters are reported
	// with their error in place of counts.
	AggregateStatus(ctx context.Context) map[string]ClusterStatus

	// CacheStats returns client cache statistics for monitoring.
	CacheStats() CacheStats

	// Close releases the client cache and its background goroutine.
	// After Close, methods that resolve a cluster or build a client
	// (GetClient, ClusterFor, Describe) return ErrRegistryClosed, and
	// ValidateAll and AggregateStatus report it per cluster.
	// Configuration snapshots (ListClusters, DefaultCluster,
	// CacheStats) keep answering from the static config.
	Close() error
}

// ValidationResult is the outcome of a single-cluster connectivity
// probe.
type ValidationResult struct {
	// Reachable is true when the cluster answered the probe.
	Reachable bool `json:"reachable"`

	// Message is a human-readable summary: "OK (3 nodes)" on success,
	// the error text on failure.
	Message string `json:"message"`
}

// ClusterStatus is an aggregate snapshot of one cluster's inventory.
type ClusterStatus struct {
	Cluster string `json:"cluster"`
	Region  string `json:"region,omitempty"`
	Tier    string `json:"tier,omitempty"`

	// Version is the Proxmox VE release, e.g. "8.3.2".
	Version string `json:"version,omitempty"`

	NodesOnline int `json:"nodes_online"`
	NodesTotal  int `json:"nodes_total"`

	VMsRunning int `json:"vms_running"`
	VMsTotal   int `json:"vms_total"`

	ContainersRunning int `json:"containers_running"`
	ContainersTotal   int `json:"containers_total"`

	Storages int `json:"storages"`

	// Error carries the failure text when the cluster could not be
	// queried. Counts are zero in that case.
	Error string `json:"error,omitempty"`
}

// Registry implements ClusterRegistry over a static configuration
// snapshot and a TTL-based client cache.
type Registry struct {
	config  *RegistryConfig
	factory ClientFactory

	// Client cache for per-cluster API handles
	cache *ClientCache

	// Cache configuration (set via options, applied during NewRegistry)
	cacheConfig  *CacheConfig
	cacheMetrics CacheMetricsRecorder

	// Logger for operational messages
	logger *slog.Logger

	// Lifecycle management
	mu     sync.RWMutex
	closed bool
}

// Ensure Registry implements ClusterRegistry.
var _ ClusterRegistry = (*Registry)(nil)

// RegistryOption is a functional option for configuring Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger for the Registry.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithRegistryCacheConfig sets the client cache configuration,
// overriding the TTL from the registry configuration.
func WithRegistryCacheConfig(config CacheConfig) RegistryOption {
	return func(r *Registry) {
		r.cacheConfig = &config
	}
}

// WithRegistryCacheMetrics sets the metrics recorder for the client
// cache.
func WithRegistryCacheMetrics(metrics CacheMetricsRecorder) RegistryOption {
	return func(r *Registry) {
		r.cacheMetrics = metrics
	}
}

// NewRegistry creates a ClusterRegistry for the given configuration.
//
// The factory is invoked on cache misses to build a client for one
// cluster; proxmox.Connect is the production factory. The registry
// owns the resulting client cache and must be closed when no longer
// needed.
func NewRegistry(config *RegistryConfig, factory ClientFactory, opts ...RegistryOption) (*Registry, error) {
	if config == nil || len(config.Clusters) == 0 {
		return nil, fmt.Errorf("at least one cluster is required")
	}
	if factory == nil {
		return nil, fmt.Errorf("client factory is required")
	}

	r := &Registry{
		config:  config,
		factory: factory,
		logger:  slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		opt(r)
	}

	// Build cache options from configuration set via Registry options
	cacheOpts := []ClientCacheOption{WithCacheLogger(r.logger)}
	if r.cacheConfig != nil {
		cacheOpts = append(cacheOpts, WithCacheConfig(*r.cacheConfig))
	} else {
		cacheOpts = append(cacheOpts, WithCacheConfig(CacheConfig{TTL: config.CacheTTL}))
	}
	if r.cacheMetrics != nil {
		cacheOpts = append(cacheOpts, WithCacheMetrics(r.cacheMetrics))
	}
	r.cache = NewClientCache(cacheOpts...)

	r.logger.Info("Cluster registry initialized",
		"clusters", len(config.Clusters),
		"default_cluster", config.DefaultCluster,
		"cache_ttl", config.CacheTTL)

	return r, nil
}

// checkClosed returns ErrRegistryClosed if the registry has been closed.
// This is a helper to avoid repeating the closed-check pattern in every method.
func (r *Registry) checkClosed() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrRegistryClosed
	}
	return nil
}

// ClusterFor resolves the target cluster without building a client.
func (r *Registry) ClusterFor(clusterName, resourceName string) (ClusterConfig, error) {
	if err := r.checkClosed(); err != nil {
		return ClusterConfig{}, err
	}

	selected, err := SelectCluster(r.config, clusterName, resourceName)
	if err != nil {
		return ClusterConfig{}, err
	}

	config, ok := r.config.Lookup(selected)
	if !ok {
		return ClusterConfig{}, &ClusterNotFoundError{ClusterName: selected}
	}
	return config, nil
}

// GetClient resolves the target cluster and returns a cached or fresh
// API client for it.
func (r *Registry) GetClient(ctx context.Context, clusterName, resourceName string) (proxmox.Client, string, error) {
	if err := r.checkClosed(); err != nil {
		return nil, "", err
	}

	config, err := r.ClusterFor(clusterName, resourceName)
	if err != nil {
		return nil, "", err
	}

	client, err := r.cache.GetOrCreate(ctx, config, r.factory)
	if err != nil {
		return nil, "", err
	}

	r.logger.Debug("Resolved cluster client",
		logging.Cluster(config.Name),
		"explicit", clusterName != "",
		logging.ResourceName(resourceName))

	return client, config.Name, nil
}

// ListClusters returns the redacted configuration of every cluster.
func (r *Registry) ListClusters() []ClusterConfig {
	out := make([]ClusterConfig, len(r.config.Clusters))
	for i, c := range r.config.Clusters {
		out[i] = c.Redacted()
	}
	return out
}

// Describe returns the redacted configuration of one cluster.
func (r *Registry) Describe(clusterName string) (ClusterConfig, error) {
	if err := r.checkClosed(); err != nil {
		return ClusterConfig{}, err
	}

	config, ok := r.config.Lookup(clusterName)
	if !ok {
		return ClusterConfig{}, &ClusterNotFoundError{ClusterName: clusterName}
	}
	return config.Redacted(), nil
}

// DefaultCluster returns the name of the default cluster.
func (r *Registry) DefaultCluster() string {
	return r.config.DefaultCluster
}

// InvalidateClient drops the cached client for one cluster.
func (r *Registry) InvalidateClient(ctx context.Context, clusterName string) {
	r.cache.Delete(ctx, clusterName)
}

// InvalidateAll drops every cached client.
func (r *Registry) InvalidateAll(ctx context.Context) {
	r.cache.DeleteAll(ctx)
}

// ValidateAll probes every cluster concurrently. The probe is a
// version request followed by a node listing; a cluster that answers
// both is reported as "OK (N nodes)".
func (r *Registry) ValidateAll(ctx context.Context) map[string]ValidationResult {
	results := make(map[string]ValidationResult, len(r.config.Clusters))
	if err := r.checkClosed(); err != nil {
		for _, config := range r.config.Clusters {
			results[config.Name] = ValidationResult{Reachable: false, Message: err.Error()}
		}
		return results
	}
	var resultsMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(healthCheckConcurrency)

	for _, config := range r.config.Clusters {
		config := config
		g.Go(func() error {
			result := r.validateOne(ctx, config)

			resultsMu.Lock()
			results[config.Name] = result
			resultsMu.Unlock()
			return nil
		})
	}

	// Goroutines report failures through their result, never as an
	// error, so one unreachable cluster cannot cancel the others.
	_ = g.Wait()

	return results
}

// validateOne probes a single cluster.
func (r *Registry) validateOne(ctx context.Context, config ClusterConfig) ValidationResult {
	client, err := r.cache.GetOrCreate(ctx, config, r.factory)
	if err != nil {
		return ValidationResult{Reachable: false, Message: err.Error()}
	}

	if _, err := client.Version(ctx); err != nil {
		r.logger.Warn("Cluster validation failed",
			logging.Cluster(config.Name),
			logging.SanitizedErr(err))
		return ValidationResult{Reachable: false, Message: err.Error()}
	}

	nodes, err := client.ListNodes(ctx)
	if err != nil {
		return ValidationResult{Reachable: false, Message: err.Error()}
	}

	return ValidationResult{
		Reachable: true,
		Message:   fmt.Sprintf("OK (%d nodes)", len(nodes)),
	}
}

// AggregateStatus collects an inventory snapshot from every cluster
// concurrently.
func (r *Registry) AggregateStatus(ctx context.Context) map[string]ClusterStatus {
	results := make(map[string]ClusterStatus, len(r.config.Clusters))
	if err := r.checkClosed(); err != nil {
		for _, config := range r.config.Clusters {
			results[config.Name] = ClusterStatus{
				Cluster: config.Name,
				Region:  config.Region,
				Tier:    config.Tier,
				Error:   err.Error(),
			}
		}
		return results
	}
	var resultsMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(healthCheckConcurrency)

	for _, config := range r.config.Clusters {
		config := config
		g.Go(func() error {
			status := r.statusOne(ctx, config)

			resultsMu.Lock()
			results[config.Name] = status
			resultsMu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	return results
}

// statusOne collects the inventory snapshot of a single cluster.
// The first failing call determines the reported error; later calls
// are skipped because their counts would be misleading next to an
// already-partial snapshot.
func (r *Registry) statusOne(ctx context.Context, config ClusterConfig) ClusterStatus {
	status := ClusterStatus{
		Cluster: config.Name,
		Region:  config.Region,
		Tier:    config.Tier,
	}

	client, err := r.cache.GetOrCreate(ctx, config, r.factory)
	if err != nil {
		status.Error = err.Error()
		return status
	}

	version, err := client.Version(ctx)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Version = version.Version

	nodes, err := client.ListNodes(ctx)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.NodesTotal = len(nodes)
	for _, n := range nodes {
		if n.Status == "online" {
			status.NodesOnline++
		}
	}

	vms, err := client.ListVMs(ctx, proxmox.ListFilter{})
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.VMsTotal = len(vms)
	for _, vm := range vms {
		if vm.Status == "running" {
			status.VMsRunning++
		}
	}

	containers, err := client.ListContainers(ctx, proxmox.ListFilter{})
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.ContainersTotal = len(containers)
	for _, ct := range containers {
		if ct.Status == "running" {
			status.ContainersRunning++
		}
	}

	storages, err := client.ListStorage(ctx)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Storages = len(storages)

	return status
}

// CacheStats returns client cache statistics for monitoring.
func (r *Registry) CacheStats() CacheStats {
	return r.cache.Stats()
}

// Close releases the client cache and its background goroutine.
// Closing twice is a no-op.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.logger.Info("Closing cluster registry")
	r.closed = true

	if r.cache != nil {
		if err := r.cache.Close(); err != nil {
			r.logger.Error("Error closing client cache", "error", err)
			return fmt.Errorf("failed to close client cache: %w", err)
		}
	}

	return nil
}
