package snsctx

import "context"

type ctxIndex int

const ctxIndexTrace ctxIndex = iota

// IsTraced reports whether register transactions should be logged.
func IsTraced(ctx context.Context) bool {
	val, ok := ctx.Value(ctxIndexTrace).(bool)
	return ok && val
}

func WithTrace(ctx context.Context, value bool) context.Context {
	return context.WithValue(ctx, ctxIndexTrace, value)
}
