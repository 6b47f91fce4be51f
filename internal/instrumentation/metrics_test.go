package instrumentation

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// testMeter creates a meter backed by a manual reader so recorded
// values can be collected and inspected.
func testMeter() (metric.Meter, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return provider.Meter("test"), reader
}

// collectMetricNames gathers the names of all metrics with at least one
// data point.
func collectMetricNames(t *testing.T, reader *sdkmetric.ManualReader) map[string]bool {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	names := make(map[string]bool)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			names[m.Name] = true
		}
	}
	return names
}

func TestNewMetrics(t *testing.T) {
	meter, _ := testMeter()
	metrics, err := NewMetrics(meter, false)
	if err != nil {
		t.Fatalf("expected no error creating metrics, got %v", err)
	}
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	if metrics.httpRequestsTotal == nil {
		t.Error("expected httpRequestsTotal to be initialized")
	}
	if metrics.httpRequestDuration == nil {
		t.Error("expected httpRequestDuration to be initialized")
	}
	if metrics.toolCallsTotal == nil {
		t.Error("expected toolCallsTotal to be initialized")
	}
	if metrics.toolCallDuration == nil {
		t.Error("expected toolCallDuration to be initialized")
	}
	if metrics.proxmoxOperationsTotal == nil {
		t.Error("expected proxmoxOperationsTotal to be initialized")
	}
	if metrics.proxmoxOperationDuration == nil {
		t.Error("expected proxmoxOperationDuration to be initialized")
	}
	if metrics.cacheHitsTotal == nil {
		t.Error("expected cacheHitsTotal to be initialized")
	}
	if metrics.cacheMissesTotal == nil {
		t.Error("expected cacheMissesTotal to be initialized")
	}
	if metrics.cacheEvictionsTotal == nil {
		t.Error("expected cacheEvictionsTotal to be initialized")
	}
	if metrics.cacheEntries == nil {
		t.Error("expected cacheEntries to be initialized")
	}

	if metrics.detailedLabels {
		t.Error("expected detailedLabels to be false")
	}
}

func TestAllMetricsRecorded(t *testing.T) {
	meter, reader := testMeter()
	metrics, err := NewMetrics(meter, true)
	if err != nil {
		t.Fatalf("expected no error creating metrics, got %v", err)
	}

	ctx := context.Background()
	metrics.RecordHTTPRequest(ctx, "POST", "/mcp", 200, 100*time.Millisecond)
	metrics.RecordToolCall(ctx, "pve_list_vms", "production", StatusSuccess, 50*time.Millisecond)
	metrics.RecordProxmoxOperation(ctx, OperationList, "production", StatusSuccess, 30*time.Millisecond)
	metrics.RecordCacheHit(ctx, "production")
	metrics.RecordCacheMiss(ctx, "staging")
	metrics.RecordCacheEviction(ctx, "expired")
	metrics.SetCacheSize(ctx, 2)

	names := collectMetricNames(t, reader)
	expected := []string{
		"http_requests_total",
		"http_request_duration_seconds",
		"mcp_proxmox_tool_calls_total",
		"mcp_proxmox_tool_call_duration_seconds",
		"mcp_proxmox_operations_total",
		"mcp_proxmox_operation_duration_seconds",
		"mcp_proxmox_client_cache_hits_total",
		"mcp_proxmox_client_cache_misses_total",
		"mcp_proxmox_client_cache_evictions_total",
		"mcp_proxmox_client_cache_entries",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("expected metric %q to be recorded", name)
		}
	}
}

func TestMetricsNilSafe(t *testing.T) {
	// An uninitialized recorder must never panic: the disabled-provider
	// path hands this zero value to all callers.
	metrics := &Metrics{}
	ctx := context.Background()

	metrics.RecordHTTPRequest(ctx, "POST", "/mcp", 200, time.Millisecond)
	metrics.RecordToolCall(ctx, "pve_list_vms", "production", StatusSuccess, time.Millisecond)
	metrics.RecordProxmoxOperation(ctx, OperationList, "production", StatusError, time.Millisecond)
	metrics.RecordCacheHit(ctx, "production")
	metrics.RecordCacheMiss(ctx, "production")
	metrics.RecordCacheEviction(ctx, "manual")
	metrics.SetCacheSize(ctx, 0)
}

func TestMetricsDetailedLabels(t *testing.T) {
	meter, reader := testMeter()
	metrics, err := NewMetrics(meter, false)
	if err != nil {
		t.Fatalf("expected no error creating metrics, got %v", err)
	}

	ctx := context.Background()
	metrics.RecordToolCall(ctx, "pve_list_vms", "production", StatusSuccess, time.Millisecond)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "mcp_proxmox_tool_calls_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				if _, found := dp.Attributes.Value("cluster"); found {
					t.Error("cluster label should be omitted when detailed labels are disabled")
				}
				if _, found := dp.Attributes.Value("cluster_tier"); !found {
					t.Error("cluster_tier label should always be present")
				}
			}
		}
	}
}
