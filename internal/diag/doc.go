// Package diag defines the diagnostic model shared by all outline phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by the event decoder and the outline construction pass.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO, CLI integration, or
// interactive behaviour beyond the golden/short renderers used by tests and
// the CLI. Richer rendering lives in internal/outfmt; orchestration lives
// in the driver layer.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//
// Notes should be used sparingly: each note must add new context (e.g.
// “previous declaration here”) rather than repeating the diagnostic message.
//
// # Emitting diagnostics
//
// Phases should use a diag.Reporter to decouple emission from storage. The
// outline builder constructs a ReportBuilder via NewReportBuilder (or the
// helper functions ReportError/ReportWarning/ReportInfo) and chains WithNote
// before calling Emit.
//
// When no additional metadata is needed, phases may call Reporter.Report(...)
// directly. For convenience, diag.BagReporter aggregates diagnostics into a
// Bag, which supports sorting, deduplication and merging.
//
// # Consumers
//
//   - internal/outfmt: renders Diagnostics and outline results.
//   - internal/driver: coordinates bag collection per unit and transports
//     diagnostic data to CLI commands.
//
// Keep the data model deterministic: any new fields should honour the
// package’s layering constraints and avoid side effects, so the CLI and
// future tooling can safely serialise diagnostics for caching and testing.
package diag
