package trace

import "context"

// state is what a context carries: the tracer and the innermost open span.
type state struct {
	tracer Tracer
	span   uint64
}

type stateKey struct{}

func load(ctx context.Context) state {
	var st state
	if ctx != nil {
		st, _ = ctx.Value(stateKey{}).(state)
	}
	if st.tracer == nil {
		st.tracer = Nop
	}
	return st
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return load(ctx).tracer
}

// WithTracer attaches t to ctx, keeping the current span.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	st := load(ctx)
	if t == nil {
		t = Nop
	}
	st.tracer = t
	return context.WithValue(ctx, stateKey{}, st)
}

// CurrentSpan returns the span new spans should nest under, 0 at the top.
func CurrentSpan(ctx context.Context) uint64 {
	return load(ctx).span
}

// WithSpan makes id the parent of spans begun from the returned context.
func WithSpan(ctx context.Context, id uint64) context.Context {
	st := load(ctx)
	st.span = id
	return context.WithValue(ctx, stateKey{}, st)
}
