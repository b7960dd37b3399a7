package ctxutil

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type traceDataKey struct{}

// TraceData identifies the upstream request a call runs on behalf of.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	val := ctx.Value(traceDataKey{})
	if td, ok := val.(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns request_id and trace_id key/value pairs for ctx. The
// active span's trace id wins over one set with WithTraceData.
func LogFields(ctx context.Context) []interface{} {
	if ctx == nil {
		return nil
	}
	var out []interface{}
	traceID := ""
	if td := GetTraceData(ctx); td != nil {
		if td.RequestID != "" {
			out = append(out, "request_id", td.RequestID)
		}
		traceID = td.TraceID
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	}
	if traceID != "" {
		out = append(out, "trace_id", traceID)
	}
	return out
}
