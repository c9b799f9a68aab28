package ctxutil

import "context"

type traceDataKey struct{}

// TraceData carries the per-request correlation identifiers. It travels in
// the context.Context of every request so that any layer can tag its logs
// without shared mutable state.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	val := ctx.Value(traceDataKey{})
	if td, ok := val.(*TraceData); ok {
		return td
	}
	return nil
}

// TraceID returns the trace id from ctx, or "" when none is attached.
func TraceID(ctx context.Context) string {
	if td := GetTraceData(ctx); td != nil {
		return td.TraceID
	}
	return ""
}
