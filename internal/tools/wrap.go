package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/giantswarm/mcp-proxmox/internal/instrumentation"
	"github.com/giantswarm/mcp-proxmox/internal/server"
)

// WrapWithInstrumentation wraps a tool handler with metrics and tracing.
// Each invocation is recorded as a tool call metric (with the target cluster
// from the request arguments) and runs inside a tool span so downstream
// Proxmox API spans nest under it.
//
// If no instrumentation provider is configured the handler is called
// directly with no measurable overhead.
func WrapWithInstrumentation(
	toolName string,
	handler ToolHandler,
	sc *server.ServerContext,
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		provider := sc.InstrumentationProvider()
		if provider == nil || !provider.Enabled() {
			return handler(ctx, request, sc)
		}

		clusterName := ExtractClusterParam(request.GetArguments())

		var attrs []attribute.KeyValue
		if clusterName != "" {
			attrs = instrumentation.NewSpanAttributeBuilder().
				WithCluster(clusterName).
				Build()
		}
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs...)
		defer span.End()

		start := time.Now()
		result, err := handler(ctx, request, sc)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			// MCP tool errors are returned in the result, not as Go errors.
			status = instrumentation.StatusError
		default:
			instrumentation.SetSpanSuccess(span)
		}

		provider.Metrics().RecordToolCall(ctx, toolName, clusterName, status, duration)

		return result, err
	}
}
