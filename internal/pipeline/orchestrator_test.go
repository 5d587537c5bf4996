package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfspulse/internal/config"
	apperrors "mfspulse/internal/errors"
	"mfspulse/internal/metrics"
	"mfspulse/internal/normalize"
	"mfspulse/internal/source"
	"mfspulse/pkg/contracts/domain"
)

// stubAdapter returns a canned table or error and counts its calls.
type stubAdapter struct {
	name  string
	table *domain.RawTable
	err   error
	calls int
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Fetch(ctx context.Context) (*domain.RawTable, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.table, nil
}

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func wideTable() *domain.RawTable {
	return &domain.RawTable{
		Source:  domain.SourceMarkup,
		Headers: []string{"Month", "Cash In (Crore Taka)", "Cash Out (Crore Taka)"},
		Rows: [][]string{
			{"Jan-24", "100", "80"},
			{"Feb-24", "110", "85"},
		},
	}
}

func newOrchestrator(live []source.Adapter, fallback source.Adapter, cfg config.PipelineConfig) *Orchestrator {
	return New(live, fallback,
		normalize.NewNormalizer(nil, 0.5),
		metrics.NewEngine(nil),
		cfg, nil)
}

func TestRunFirstAdapterSucceeds(t *testing.T) {
	markup := &stubAdapter{name: "markup", table: wideTable()}
	workbook := &stubAdapter{name: "workbook", err: apperrors.NewSourceUnavailable("down", nil)}

	o := newOrchestrator([]source.Adapter{markup, workbook}, source.NewFallbackAdapter(nil),
		config.PipelineConfig{AllowFallback: true})

	result, err := o.Result(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateReady, o.State())
	assert.Equal(t, domain.ProvenanceLive, result.Provenance)
	assert.NotEmpty(t, result.RunID)
	assert.Empty(t, result.Attempts)
	assert.Zero(t, workbook.calls, "chain stops at the first success")

	require.Equal(t, 4, result.Series.Len())
	obs, ok := result.Series.At(month(2024, time.February), domain.CategoryCashIn)
	require.True(t, ok)
	assert.InDelta(t, 1.1e9, obs.Amount, 1)

	point, ok := result.Bundle.At(month(2024, time.February), domain.CategoryCashIn)
	require.True(t, ok)
	require.NotNil(t, point.MoM)
	assert.InDelta(t, 0.10, *point.MoM, 1e-9)
}

func TestRunAdvancesPastSchemaError(t *testing.T) {
	// First adapter fetches fine but its table no longer matches the
	// schema; the chain must advance rather than fail.
	markup := &stubAdapter{name: "markup", table: &domain.RawTable{
		Headers: []string{"Notes", "More Notes"},
		Rows:    [][]string{{"a", "b"}},
	}}
	workbook := &stubAdapter{name: "workbook", table: wideTable()}

	o := newOrchestrator([]source.Adapter{markup, workbook}, nil,
		config.PipelineConfig{AllowFallback: false})

	result, err := o.Result(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceLive, result.Provenance)
	require.Len(t, result.Attempts, 1)
	assert.Equal(t, "markup", result.Attempts[0].Adapter)
	assert.Equal(t, source.ReasonStructureMismatch, result.Attempts[0].Reason)
}

func TestRunFallsBackWhenChainExhausted(t *testing.T) {
	markup := &stubAdapter{name: "markup", err: apperrors.NewSourceUnavailable("portal down", nil)}
	workbook := &stubAdapter{name: "workbook", err: apperrors.NewParsingError("corrupt workbook", nil)}

	o := newOrchestrator([]source.Adapter{markup, workbook}, source.NewFallbackAdapter(nil),
		config.PipelineConfig{AllowFallback: true})

	result, err := o.Result(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateReady, o.State())
	assert.Equal(t, domain.ProvenanceFallback, result.Provenance)
	assert.Equal(t, 36*len(domain.Categories()), result.Series.Len())

	require.Len(t, result.Attempts, 2)
	assert.Equal(t, source.ReasonNetwork, result.Attempts[0].Reason)
	assert.Equal(t, source.ReasonParse, result.Attempts[1].Reason)

	// Three full years of fallback history: every seasonal field present
	// away from the trend window edges.
	defined := 0
	for _, p := range result.Bundle.Points {
		if p.Residual != nil {
			defined++
		}
	}
	assert.Greater(t, defined, 0)
}

func TestRunFailsTerminalWhenFallbackDisabled(t *testing.T) {
	markup := &stubAdapter{name: "markup", err: apperrors.NewSourceUnavailable("portal down", nil)}
	workbook := &stubAdapter{name: "workbook", err: apperrors.NewSchemaError("layout changed", nil)}

	o := newOrchestrator([]source.Adapter{markup, workbook}, source.NewFallbackAdapter(nil),
		config.PipelineConfig{AllowFallback: false})

	_, err := o.Result(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, o.State())
	require.True(t, apperrors.IsType(err, apperrors.ErrTypeChainExhausted))

	// The aggregated report carries one entry per attempted adapter.
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	attempts, ok := appErr.Context["attempts"].([]Attempt)
	require.True(t, ok)
	require.Len(t, attempts, 2)
	assert.Equal(t, "markup", attempts[0].Adapter)
	assert.Equal(t, "workbook", attempts[1].Adapter)
	assert.Contains(t, err.Error(), "portal down")
	assert.Contains(t, err.Error(), "layout changed")
}

func TestResultMemoizedUntilRefresh(t *testing.T) {
	markup := &stubAdapter{name: "markup", table: wideTable()}

	o := newOrchestrator([]source.Adapter{markup}, nil, config.PipelineConfig{})

	first, err := o.Result(context.Background())
	require.NoError(t, err)
	second, err := o.Result(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second, "session cache serves the memoized result")
	assert.Equal(t, 1, markup.calls)

	third, err := o.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, markup.calls, "refresh re-runs from the first adapter")
	assert.NotEqual(t, first.RunID, third.RunID)
}

func TestRunIndependentInvocations(t *testing.T) {
	// Two orchestrators over the same inputs share nothing mutable: their
	// series and bundles are equal in value, distinct in identity.
	a := newOrchestrator([]source.Adapter{&stubAdapter{name: "markup", table: wideTable()}}, nil, config.PipelineConfig{})
	b := newOrchestrator([]source.Adapter{&stubAdapter{name: "markup", table: wideTable()}}, nil, config.PipelineConfig{})

	ra, err := a.Result(context.Background())
	require.NoError(t, err)
	rb, err := b.Result(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ra.Series, rb.Series)
	assert.Equal(t, ra.Bundle, rb.Bundle)
	assert.NotSame(t, ra.Series, rb.Series)
}

func TestExhaustionErrorMessage(t *testing.T) {
	e := &ExhaustionError{
		RunID: "run-1",
		Attempts: []Attempt{
			{Adapter: "markup", Reason: source.ReasonNetwork, Error: "timeout"},
			{Adapter: "workbook", Reason: source.ReasonParse, Error: "corrupt"},
		},
	}
	msg := e.Error()
	assert.Contains(t, msg, "markup (network): timeout")
	assert.Contains(t, msg, "workbook (parse): corrupt")
}
