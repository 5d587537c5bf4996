// Package source implements the adapter chain that retrieves the raw MFS
// statistics table from upstream publications.
//
// Three adapters attempt in priority order: the markup adapter reads the
// portal's HTML page (cheapest, most structured), the workbook adapter reads
// the XLSX bulletin when the page structure has drifted, and the fallback
// adapter serves an embedded static dataset so the pipeline degrades rather
// than going dark. Each adapter attempts in isolation and is safely
// retryable; failures carry a typed reason and are resolved by the
// orchestrator, never by the adapters themselves.
package source
