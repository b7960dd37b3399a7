package ctxutil

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestLogFields(t *testing.T) {
	if got := LogFields(context.Background()); len(got) != 0 {
		t.Fatalf("LogFields(empty): %v", got)
	}

	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t-1", RequestID: "r-1"})
	got := LogFields(ctx)
	if len(got) != 4 || got[1] != "r-1" || got[3] != "t-1" {
		t.Fatalf("LogFields(trace data): %v", got)
	}

	tid := trace.TraceID{0x01, 0x02}
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: tid, SpanID: trace.SpanID{0x03}})
	got = LogFields(trace.ContextWithSpanContext(ctx, sc))
	if len(got) != 4 || got[3] != tid.String() {
		t.Fatalf("LogFields(span): %v", got)
	}
}
