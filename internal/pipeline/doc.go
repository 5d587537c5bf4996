// Package pipeline orchestrates the end-to-end run: source adapter chain,
// normalization, metric computation, and the session-scoped result cache.
//
// The orchestrator is the only component allowed to decide terminal failure.
// Adapter and normalizer errors become state transitions — advance to the
// next adapter, then to the fallback dataset if configuration allows — and
// consumers receive either a Ready result tagged with its provenance or one
// aggregated report listing every attempted source's failure reason.
package pipeline
