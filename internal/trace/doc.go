// Package trace records what a generation run spends its time on.
//
// Spans are opened around driver commands, pipeline stages, generated units
// and, at debug level, individual types:
//
//	ctx = trace.WithTracer(ctx, t)
//	ctx, span := trace.Start(ctx, trace.ScopeStage, "generate")
//	defer span.End("")
//
// Events go to a stream (text, NDJSON or Chrome trace JSON), to an in-memory
// ring dumped on failure, or to both. The level decides which scopes reach
// the output: phase keeps driver and stage spans, detail adds units, debug
// adds everything.
package trace
