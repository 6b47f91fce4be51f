package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the mcp-proxmox package.
const TracerName = "github.com/giantswarm/mcp-proxmox"

// Span attribute keys for dispatch and Proxmox operations.
const (
	// SpanAttrCluster is the resolved cluster name attribute.
	SpanAttrCluster = "mcp.cluster"

	// SpanAttrClusterTier is the classified cluster tier attribute.
	SpanAttrClusterTier = "mcp.cluster_tier"

	// SpanAttrTool is the MCP tool name.
	SpanAttrTool = "mcp.tool"

	// SpanAttrCacheHit indicates whether the client came from the cache.
	SpanAttrCacheHit = "mcp.cache_hit"

	// SpanAttrOperation is the operation type (list, start, clone, ...).
	SpanAttrOperation = "pve.operation"

	// SpanAttrNode is the Proxmox node name.
	SpanAttrNode = "pve.node"

	// SpanAttrVMID is the guest identifier.
	SpanAttrVMID = "pve.vmid"

	// SpanAttrResourceName is the guest or resource name used for
	// pattern-based dispatch.
	SpanAttrResourceName = "pve.resource_name"

	// SpanAttrStorage is the storage identifier.
	SpanAttrStorage = "pve.storage"

	// SpanAttrUPID is the Proxmox task identifier returned by
	// asynchronous operations.
	SpanAttrUPID = "pve.upid"
)

// SpanAttributeBuilder helps construct OpenTelemetry span attributes
// with consistent naming.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithTool adds the MCP tool name attribute.
func (b *SpanAttributeBuilder) WithTool(tool string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrTool, tool))
	return b
}

// WithCluster adds cluster attributes: the full name plus the
// classified tier.
func (b *SpanAttributeBuilder) WithCluster(clusterName string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs,
		attribute.String(SpanAttrCluster, clusterName),
		attribute.String(SpanAttrClusterTier, ClassifyCluster(clusterName, "")),
	)
	return b
}

// WithNode adds the Proxmox node attribute.
func (b *SpanAttributeBuilder) WithNode(node string) *SpanAttributeBuilder {
	if node != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrNode, node))
	}
	return b
}

// WithVMID adds the guest identifier attribute.
func (b *SpanAttributeBuilder) WithVMID(vmid int) *SpanAttributeBuilder {
	if vmid > 0 {
		b.attrs = append(b.attrs, attribute.Int(SpanAttrVMID, vmid))
	}
	return b
}

// WithResourceName adds the resource name used for dispatch.
func (b *SpanAttributeBuilder) WithResourceName(name string) *SpanAttributeBuilder {
	if name != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrResourceName, name))
	}
	return b
}

// WithStorage adds the storage identifier attribute.
func (b *SpanAttributeBuilder) WithStorage(storage string) *SpanAttributeBuilder {
	if storage != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrStorage, storage))
	}
	return b
}

// WithOperation adds the operation type attribute.
func (b *SpanAttributeBuilder) WithOperation(operation string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrOperation, operation))
	return b
}

// WithCacheHit adds the cache hit indicator attribute.
func (b *SpanAttributeBuilder) WithCacheHit(hit bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Bool(SpanAttrCacheHit, hit))
	return b
}

// Build returns the constructed attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name and attributes.
// Returns the context with the span and the span itself.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan starts a span for an MCP tool invocation.
// Automatically adds the tool name and sets the server span kind.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrTool, toolName))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "tool."+toolName,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartProxmoxSpan starts a span for a Proxmox API operation against
// one cluster. Sets the client span kind.
func StartProxmoxSpan(ctx context.Context, operation, clusterName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+3)
	allAttrs = append(allAttrs,
		attribute.String(SpanAttrOperation, operation),
		attribute.String(SpanAttrCluster, clusterName),
		attribute.String(SpanAttrClusterTier, ClassifyCluster(clusterName, "")),
	)
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "pve."+operation,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID from the current span in context.
// Returns empty string if no valid span is present.
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().SpanID().String()
	}
	return ""
}

// SpanContextString returns a human-readable trace context string.
// Format: "trace_id=X span_id=Y" or empty string if no valid context.
func SpanContextString(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return "trace_id=" + span.SpanContext().TraceID().String() +
		" span_id=" + span.SpanContext().SpanID().String()
}
