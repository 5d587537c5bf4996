package source

import (
	"context"

	"mfspulse/pkg/contracts/domain"
)

// Reason codes attached to adapter failures. The orchestrator collects one
// per attempted adapter for the aggregated failure report.
const (
	ReasonNetwork           = "network"
	ReasonStructureMismatch = "structure-mismatch"
	ReasonParse             = "parse"
)

// Adapter fetches one upstream representation of the statistics table and
// reduces it to a raw grid. Adapters are stateless and idempotent: a failed
// attempt leaks nothing into the next adapter in the chain.
type Adapter interface {
	// Name identifies the adapter in diagnostics and metrics.
	Name() string

	// Fetch retrieves and extracts the raw table. Failures are AppErrors
	// typed SOURCE_UNAVAILABLE, SCHEMA or PARSING; the orchestrator maps
	// them to reason codes and moves on.
	Fetch(ctx context.Context) (*domain.RawTable, error)
}

// Fetcher retrieves raw bytes for a URL. It is the pluggable boundary to the
// outbound request machinery: implementations either return the payload or
// fail, nothing in between.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
