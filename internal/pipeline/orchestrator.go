package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mfspulse/internal/config"
	apperrors "mfspulse/internal/errors"
	"mfspulse/internal/infrastructure"
	"mfspulse/internal/metrics"
	"mfspulse/internal/normalize"
	"mfspulse/internal/source"
	"mfspulse/pkg/contracts/domain"
)

// Orchestrator sequences the adapter chain, normalization and metric
// computation, and memoizes the result for the session. Each Run owns its
// series and bundle; nothing is shared mutably across invocations.
type Orchestrator struct {
	live       []source.Adapter
	fallback   source.Adapter
	normalizer *normalize.Normalizer
	engine     *metrics.Engine
	cfg        config.PipelineConfig
	logger     *slog.Logger

	mu     sync.Mutex
	state  State
	cached *Result
}

// New creates an orchestrator over the given live adapter chain. The
// fallback adapter is consulted only when the chain is exhausted and
// configuration allows it.
func New(live []source.Adapter, fallback source.Adapter, normalizer *normalize.Normalizer, engine *metrics.Engine, cfg config.PipelineConfig, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		live:       live,
		fallback:   fallback,
		normalizer: normalizer,
		engine:     engine,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "orchestrator")),
		state:      StateIdle,
	}
}

// State returns the orchestrator's current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Result returns the memoized result of the last successful run, running the
// pipeline first if none is cached. The cache lives until Refresh; it is
// never silently served across an explicit refresh boundary.
func (o *Orchestrator) Result(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	if o.cached != nil {
		cached := o.cached
		o.mu.Unlock()
		return cached, nil
	}
	o.mu.Unlock()
	return o.run(ctx)
}

// Refresh discards the cached result and re-runs the whole chain from the
// first adapter.
func (o *Orchestrator) Refresh(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	o.cached = nil
	o.mu.Unlock()
	return o.run(ctx)
}

// run executes one full pipeline pass.
func (o *Orchestrator) run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	logger := o.logger.With(slog.String("run_id", runID))
	start := time.Now()

	ctx, runSpan := infrastructure.StartStageSpan(ctx, "pipeline.run", runID)
	defer runSpan.End()

	var attempts []Attempt

	// Live chain: each adapter attempts in isolation; any adapter or
	// normalizer failure advances to the next adapter.
	for _, adapter := range o.live {
		o.setState(StateTryingSource)
		result, err := o.attempt(ctx, adapter, runID, domain.ProvenanceLive, logger)
		if err != nil {
			attempts = append(attempts, toAttempt(adapter, err))
			infrastructure.AdapterFailures.WithLabelValues(adapter.Name(), reasonFor(err)).Inc()
			logger.Warn("adapter attempt failed",
				slog.String("adapter", adapter.Name()),
				slog.String("reason", reasonFor(err)),
				slog.String("error", err.Error()))
			continue
		}
		result.Attempts = attempts
		return o.finish(result, start, logger)
	}

	o.setState(StateAllSourcesExhausted)

	if !o.cfg.AllowFallback || o.fallback == nil {
		o.setState(StateFailed)
		infrastructure.PipelineRuns.WithLabelValues("failed", "none").Inc()
		exhaustion := &ExhaustionError{RunID: runID, Attempts: attempts}
		logger.Error("pipeline failed", slog.Int("attempts", len(attempts)))
		return nil, apperrors.NewChainExhausted(exhaustion.Error()).
			WithContext("attempts", attempts).
			WithContext("run_id", runID)
	}

	o.setState(StateUsingFallback)
	logger.Info("live sources exhausted, using fallback dataset",
		slog.Int("failed_attempts", len(attempts)))

	result, err := o.attempt(ctx, o.fallback, runID, domain.ProvenanceFallback, logger)
	if err != nil {
		// The embedded dataset must never be malformed; reaching this is a
		// build defect, reported terminally with the full attempt history.
		attempts = append(attempts, toAttempt(o.fallback, err))
		o.setState(StateFailed)
		infrastructure.PipelineRuns.WithLabelValues("failed", "fallback").Inc()
		exhaustion := &ExhaustionError{RunID: runID, Attempts: attempts}
		return nil, apperrors.New(apperrors.ErrTypeChainExhausted, exhaustion.Error(), err).
			WithContext("attempts", attempts).
			WithContext("run_id", runID)
	}
	result.Attempts = attempts
	return o.finish(result, start, logger)
}

// attempt runs fetch, normalize and compute for one adapter. Failures leave
// no partial state behind.
func (o *Orchestrator) attempt(ctx context.Context, adapter source.Adapter, runID string, provenance domain.Provenance, logger *slog.Logger) (*Result, error) {
	fetchCtx, fetchSpan := infrastructure.StartStageSpan(ctx, "pipeline.fetch."+adapter.Name(), runID)
	table, err := adapter.Fetch(fetchCtx)
	fetchSpan.End()
	if err != nil {
		return nil, err
	}

	o.setState(StateNormalizing)
	_, normSpan := infrastructure.StartStageSpan(ctx, "pipeline.normalize", runID)
	series, report, err := o.normalizer.Normalize(table)
	normSpan.End()
	if err != nil {
		return nil, err
	}
	infrastructure.RowsDropped.Add(float64(report.DroppedTuples))

	series = normalize.ApplyManualOverlay(series, o.cfg.ManualHistoryFile, logger)

	o.setState(StateComputing)
	_, computeSpan := infrastructure.StartStageSpan(ctx, "pipeline.compute", runID)
	bundle := o.engine.Compute(series)
	computeSpan.End()

	return &Result{
		RunID:       runID,
		Provenance:  provenance,
		Series:      series,
		Bundle:      bundle,
		Report:      report,
		CompletedAt: time.Now().UTC(),
	}, nil
}

func (o *Orchestrator) finish(result *Result, start time.Time, logger *slog.Logger) (*Result, error) {
	o.mu.Lock()
	o.state = StateReady
	o.cached = result
	o.mu.Unlock()

	infrastructure.PipelineRuns.WithLabelValues("ready", string(result.Provenance)).Inc()
	infrastructure.PipelineDuration.Observe(time.Since(start).Seconds())

	logger.Info("pipeline ready",
		slog.String("provenance", string(result.Provenance)),
		slog.Int("observations", result.Series.Len()),
		slog.Int("failed_attempts", len(result.Attempts)),
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (o *Orchestrator) setState(state State) {
	o.mu.Lock()
	o.state = state
	o.mu.Unlock()
}

func toAttempt(adapter source.Adapter, err error) Attempt {
	return Attempt{
		Adapter: adapter.Name(),
		Reason:  reasonFor(err),
		Error:   err.Error(),
	}
}

// reasonFor maps a failure onto its reason code for diagnostics.
func reasonFor(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return source.ReasonNetwork
	}
	switch apperrors.TypeOf(err) {
	case apperrors.ErrTypeSourceUnavailable:
		return source.ReasonNetwork
	case apperrors.ErrTypeSchema:
		return source.ReasonStructureMismatch
	default:
		return source.ReasonParse
	}
}
