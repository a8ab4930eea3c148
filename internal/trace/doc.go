// Package trace provides leveled tracing for the indexer and the language server.
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Failures only
//   - LevelPhase: Server requests and CLI commands
//   - LevelDetail: Document scans, cache decisions and per-file indexing
//   - LevelDebug: Everything, including per-line classification
//
// # Scopes
//
//   - ScopeServer: LSP requests and CLI commands
//   - ScopeDocument: One scan or cache lookup of a document
//   - ScopeLine: One classified line
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeDocument, "scan", trace.ParentFromContext(ctx))
//	defer span.End(uri)
//	ctx = trace.WithSpan(ctx, span) // nested spans record span as their parent
package trace
