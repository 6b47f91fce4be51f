package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// swapTracerProvider replaces the global tracer provider and returns
// the previous one for restoration.
func swapTracerProvider(tp trace.TracerProvider) trace.TracerProvider {
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	return prev
}

// testTracer installs an in-memory span recorder as the global tracer
// provider for the duration of the test.
func testTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := swapTracerProvider(provider)
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
		swapTracerProvider(prev)
	})
	return recorder
}

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("pve_start_vm").
		WithCluster("prod-eu").
		WithNode("pve1").
		WithVMID(100).
		WithResourceName("prod-web01").
		WithOperation(OperationStart).
		WithCacheHit(true).
		Build()

	want := map[attribute.Key]bool{
		SpanAttrTool:         true,
		SpanAttrCluster:      true,
		SpanAttrClusterTier:  true,
		SpanAttrNode:         true,
		SpanAttrVMID:         true,
		SpanAttrResourceName: true,
		SpanAttrOperation:    true,
		SpanAttrCacheHit:     true,
	}

	got := make(map[attribute.Key]bool)
	for _, a := range attrs {
		got[a.Key] = true
	}
	for key := range want {
		if !got[key] {
			t.Errorf("expected attribute %q to be present", key)
		}
	}
}

func TestSpanAttributeBuilderSkipsEmpty(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithNode("").
		WithVMID(0).
		WithResourceName("").
		WithStorage("").
		Build()

	if len(attrs) != 0 {
		t.Errorf("expected empty values to be skipped, got %v", attrs)
	}
}

func TestStartToolSpan(t *testing.T) {
	recorder := testTracer(t)

	ctx, span := StartToolSpan(context.Background(), "pve_list_vms")
	if GetTraceID(ctx) == "" {
		t.Error("expected a valid trace ID inside the span")
	}
	SetSpanSuccess(span)
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "tool.pve_list_vms" {
		t.Errorf("unexpected span name %q", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("expected OK status, got %v", spans[0].Status().Code)
	}
}

func TestStartProxmoxSpanError(t *testing.T) {
	recorder := testTracer(t)

	_, span := StartProxmoxSpan(context.Background(), OperationStart, "production")
	SetSpanError(span, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "pve.start" {
		t.Errorf("unexpected span name %q", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status().Code)
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestTraceIDHelpersWithoutSpan(t *testing.T) {
	ctx := context.Background()
	if GetTraceID(ctx) != "" {
		t.Error("expected empty trace ID without a span")
	}
	if GetSpanID(ctx) != "" {
		t.Error("expected empty span ID without a span")
	}
	if SpanContextString(ctx) != "" {
		t.Error("expected empty span context string without a span")
	}
}
