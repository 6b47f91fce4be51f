// Package instrumentation provides OpenTelemetry-based observability
// for mcp-proxmox: metrics for MCP tool calls, Proxmox API operations,
// HTTP transport traffic and the cluster client cache, plus
// distributed tracing helpers.
//
// # Design
//
// Instrumentation is disabled by default so stdio deployments carry
// zero overhead. When enabled (INSTRUMENTATION_ENABLED=true), the
// Provider wires up:
//
//   - A metrics pipeline with a pluggable exporter: "prometheus"
//     (default, registers to the global Prometheus registry), "otlp"
//     (push over HTTP), or "stdout" (debugging).
//   - An optional tracing pipeline: "otlp", "stdout", or "none"
//     (default).
//
// # Cardinality
//
// Cluster names are bounded by configuration, so per-cluster labels
// are safe. VM IDs and node names are not recorded as metric labels;
// use traces for per-guest debugging. See cardinality.go for the
// cluster tier classification used in low-cardinality views.
//
// # Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:     "mcp-proxmox",
//		ServiceVersion:  version,
//		Enabled:         true,
//		MetricsExporter: "prometheus",
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordToolCall(ctx, "pve_list_vms", "production", instrumentation.StatusSuccess, elapsed)
//
// The *Metrics type also satisfies cluster.CacheMetricsRecorder, so it
// plugs straight into the registry's client cache.
package instrumentation
