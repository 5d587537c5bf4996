package pipeline

import (
	"fmt"
	"strings"
	"time"

	"mfspulse/internal/normalize"
	"mfspulse/pkg/contracts/domain"
)

// State is the orchestrator's position in its run lifecycle.
type State string

const (
	StateIdle                State = "idle"
	StateTryingSource        State = "trying_source"
	StateAllSourcesExhausted State = "all_sources_exhausted"
	StateUsingFallback       State = "using_fallback"
	StateNormalizing         State = "normalizing"
	StateComputing           State = "computing"
	StateReady               State = "ready"
	StateFailed              State = "failed"
)

// Attempt records one failed adapter attempt for the aggregated report.
type Attempt struct {
	Adapter string `json:"adapter"`
	Reason  string `json:"reason"`
	Error   string `json:"error"`
}

// Result is the unified pipeline output handed to consumers: the canonical
// series, its derived metrics, normalization provenance, where the data came
// from, and every failed attempt along the way. It is immutable once built.
type Result struct {
	RunID       string                `json:"run_id"`
	Provenance  domain.Provenance     `json:"provenance"`
	Series      *domain.Series        `json:"series"`
	Bundle      *domain.MetricsBundle `json:"bundle"`
	Report      *normalize.Report     `json:"report"`
	Attempts    []Attempt             `json:"attempts,omitempty"`
	CompletedAt time.Time             `json:"completed_at"`
}

// ExhaustionError is the terminal failure when every adapter failed and
// fallback is disabled. It aggregates one reason per attempted source; the
// consumer never sees the individual failures raw.
type ExhaustionError struct {
	RunID    string    `json:"run_id"`
	Attempts []Attempt `json:"attempts"`
}

// Error implements the error interface with one entry per attempt.
func (e *ExhaustionError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s (%s): %s", a.Adapter, a.Reason, a.Error))
	}
	return fmt.Sprintf("all sources exhausted and fallback disabled: %s", strings.Join(parts, "; "))
}
