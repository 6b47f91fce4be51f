package instrumentation

import (
	"context"
	"testing"
	"time"
)

func TestNewProviderDisabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{Enabled: false})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if provider.Enabled() {
		t.Error("provider should report disabled")
	}
	if provider.Metrics() == nil {
		t.Fatal("Metrics must never be nil, even when disabled")
	}

	// Recording through a disabled provider is a no-op, not a panic.
	provider.Metrics().RecordToolCall(ctx, "pve_list_vms", "production", StatusSuccess, time.Millisecond)

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("disabled shutdown should be a no-op, got %v", err)
	}
}

func TestNewProviderStdoutExporters(t *testing.T) {
	// stdout exporters need no network endpoint, so they exercise the
	// full pipeline construction in tests.
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{
		ServiceName:       "mcp-proxmox-test",
		ServiceVersion:    "0.0.1",
		Enabled:           true,
		MetricsExporter:   "stdout",
		TracingExporter:   "stdout",
		TraceSamplingRate: 1.0,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !provider.Enabled() {
		t.Error("provider should report enabled")
	}
	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("Metrics should not be nil")
	}

	metrics.RecordToolCall(ctx, "pve_list_vms", "production", StatusSuccess, 10*time.Millisecond)
	metrics.RecordCacheMiss(ctx, "production")

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
}

func TestNewProviderUnknownExporters(t *testing.T) {
	ctx := context.Background()

	_, err := NewProvider(ctx, Config{Enabled: true, MetricsExporter: "graphite"})
	if err == nil {
		t.Error("expected error for unknown metrics exporter")
	}

	_, err = NewProvider(ctx, Config{
		Enabled:         true,
		MetricsExporter: "stdout",
		TracingExporter: "zipkin",
	})
	if err == nil {
		t.Error("expected error for unknown tracing exporter")
	}
}
