package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrCluster   = "cluster"
	attrTier      = "cluster_tier"
	attrTool      = "tool"
	attrReason    = "reason"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP transport metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// MCP tool metrics
	toolCallsTotal   metric.Int64Counter
	toolCallDuration metric.Float64Histogram

	// Proxmox API operation metrics
	proxmoxOperationsTotal   metric.Int64Counter
	proxmoxOperationDuration metric.Float64Histogram

	// Client cache metrics
	cacheHitsTotal      metric.Int64Counter
	cacheMissesTotal    metric.Int64Counter
	cacheEvictionsTotal metric.Int64Counter
	cacheEntries        metric.Int64Gauge

	// detailedLabels controls whether the per-cluster label is attached
	// to tool and operation metrics (the tier label is always attached).
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether the cluster name label
// is included alongside the cluster tier.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// HTTP metrics
	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	// MCP tool metrics
	m.toolCallsTotal, err = meter.Int64Counter(
		"mcp_proxmox_tool_calls_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_proxmox_tool_calls_total counter: %w", err)
	}

	m.toolCallDuration, err = meter.Float64Histogram(
		"mcp_proxmox_tool_call_duration_seconds",
		metric.WithDescription("MCP tool invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_proxmox_tool_call_duration_seconds histogram: %w", err)
	}

	// Proxmox operation metrics
	m.proxmoxOperationsTotal, err = meter.Int64Counter(
		"mcp_proxmox_operations_total",
		metric.WithDescription("Total number of Proxmox API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_proxmox_operations_total counter: %w", err)
	}

	m.proxmoxOperationDuration, err = meter.Float64Histogram(
		"mcp_proxmox_operation_duration_seconds",
		metric.WithDescription("Proxmox API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_proxmox_operation_duration_seconds histogram: %w", err)
	}

	// Client cache metrics
	m.cacheHitsTotal, err = meter.Int64Counter(
		"mcp_proxmox_client_cache_hits_total",
		metric.WithDescription("Total number of client cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_proxmox_client_cache_hits_total counter: %w", err)
	}

	m.cacheMissesTotal, err = meter.Int64Counter(
		"mcp_proxmox_client_cache_misses_total",
		metric.WithDescription("Total number of client cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_proxmox_client_cache_misses_total counter: %w", err)
	}

	m.cacheEvictionsTotal, err = meter.Int64Counter(
		"mcp_proxmox_client_cache_evictions_total",
		metric.WithDescription("Total number of client cache evictions"),
		metric.WithUnit("{eviction}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_proxmox_client_cache_evictions_total counter: %w", err)
	}

	m.cacheEntries, err = meter.Int64Gauge(
		"mcp_proxmox_client_cache_entries",
		metric.WithDescription("Current number of cached cluster clients"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_proxmox_client_cache_entries gauge: %w", err)
	}

	return m, nil
}

// clusterAttrs builds the cluster label set: always the tier, plus the
// cluster name when detailed labels are enabled.
func (m *Metrics) clusterAttrs(cluster string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(attrTier, ClassifyCluster(cluster, "")),
	}
	if m.detailedLabels {
		attrs = append(attrs, attribute.String(attrCluster, cluster))
	}
	return attrs
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolCall records an MCP tool invocation against the cluster it
// was dispatched to. Status should be StatusSuccess or StatusError.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, cluster, status string, duration time.Duration) {
	if m.toolCallsTotal == nil || m.toolCallDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := append(m.clusterAttrs(cluster),
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	)

	m.toolCallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolCallDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordProxmoxOperation records a Proxmox API operation. Operation
// is the snake_case API call name, e.g. "list_vms"; status is
// StatusSuccess or StatusError.
func (m *Metrics) RecordProxmoxOperation(ctx context.Context, operation, cluster, status string, duration time.Duration) {
	if m.proxmoxOperationsTotal == nil || m.proxmoxOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := append(m.clusterAttrs(cluster),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)

	m.proxmoxOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.proxmoxOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordCacheHit records a client cache hit.
func (m *Metrics) RecordCacheHit(ctx context.Context, clusterName string) {
	if m.cacheHitsTotal == nil {
		return // Instrumentation not initialized
	}
	m.cacheHitsTotal.Add(ctx, 1, metric.WithAttributes(m.clusterAttrs(clusterName)...))
}

// RecordCacheMiss records a client cache miss.
func (m *Metrics) RecordCacheMiss(ctx context.Context, clusterName string) {
	if m.cacheMissesTotal == nil {
		return // Instrumentation not initialized
	}
	m.cacheMissesTotal.Add(ctx, 1, metric.WithAttributes(m.clusterAttrs(clusterName)...))
}

// RecordCacheEviction records a client cache eviction with its reason
// ("expired" or "manual").
func (m *Metrics) RecordCacheEviction(ctx context.Context, reason string) {
	if m.cacheEvictionsTotal == nil {
		return // Instrumentation not initialized
	}
	m.cacheEvictionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}

// SetCacheSize records the current number of cached clients.
func (m *Metrics) SetCacheSize(ctx context.Context, size int) {
	if m.cacheEntries == nil {
		return // Instrumentation not initialized
	}
	m.cacheEntries.Record(ctx, int64(size))
}
