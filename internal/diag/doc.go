// Package diag defines the diagnostic model shared by the analyzer, the
// driver and the renderers.
//
// Semantic problems found in a program are never Go errors: the analyzer
// emits them through a Reporter and keeps walking, so a single pass surfaces
// as many faults as it can. Contract violations of the tree or the symbol
// table (bad pointer, invalid index) are bugs in the caller and stay Go
// errors in their own packages.
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error.
//   - Code – compact numeric identifier with a stable string form (SEM3001).
//   - Message – human oriented text; keep it short and actionable.
//   - Primary – the source.Pos of the offending node.
//   - Notes – optional secondary positions, e.g. "declared here".
//
// Producers use ReportError / ReportWarning to get a ReportBuilder, chain
// WithNote and call Emit. BagReporter collects into a bounded Bag which
// supports sorting and deduplication; rendering lives in internal/diagfmt.
package diag
