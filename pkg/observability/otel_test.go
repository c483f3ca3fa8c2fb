package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracing_Disabled(t *testing.T) {
	tp, err := InitTracing(context.Background(), OTelConfig{Enabled: false}, NopLogger())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if tp != nil {
		t.Error("Expected nil provider when disabled")
	}
}

func TestShutdownTracing_Nil(t *testing.T) {
	if err := ShutdownTracing(context.Background(), nil, NopLogger()); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestShutdownTracing(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(tracetest.NewInMemoryExporter()))
	if err := ShutdownTracing(context.Background(), tp, NopLogger()); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestUpdateLoggerWithTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(tracetest.NewInMemoryExporter()))
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	var buf bytes.Buffer
	UpdateLoggerWithTraceContext(ctx, NewLogger(InfoLevel, &buf)).Info("traced")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal log entry: %v", err)
	}
	if entry["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("Expected trace_id %s, got %v", span.SpanContext().TraceID(), entry["trace_id"])
	}
}

func TestUpdateLoggerWithTraceContext_NoSpan(t *testing.T) {
	logger := NopLogger()
	if UpdateLoggerWithTraceContext(context.Background(), logger) != logger {
		t.Error("Expected the same logger without a recording span")
	}
}
