// Package trace records what the checker is doing: driver runs, analysis
// passes, per-document work and, at the debug level, single tree nodes
// (scope open/close, folds) with their document positions.
//
//	decafc check --trace=- --trace-level=detail dir/
//	decafc check --trace=run.ndjson --trace-level=debug prog.json
//
// Sinks: StreamTracer writes as it goes, RingTracer keeps the recent past
// for the internal-error report, MultiTracer combines them, Nop is used
// when tracing is off.
//
// Levels: off, error (only the crash dump), phase (driver and pass spans),
// detail (plus file spans), debug (plus node events).
//
// A Heartbeat names the documents still in flight, so a stuck run shows
// which file it is stuck on.
//
// The tracer and the current span travel in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.BeginFile(trace.FromContext(ctx), path, trace.CurrentSpan(ctx))
//	defer span.End("")
package trace
