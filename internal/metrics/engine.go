package metrics

import (
	"log/slog"
	"math"
	"time"

	"mfspulse/pkg/contracts/domain"
)

// AnomalyZThreshold flags a period when the absolute z-score of its residual
// exceeds this value.
const AnomalyZThreshold = 2.0

// MinYoYHistoryMonths is the minimum history before year-over-year growth is
// defined for a category.
const MinYoYHistoryMonths = 13

// Engine derives the metrics bundle from a canonical series. Compute is a
// pure function of the full series: the engine keeps no state between calls
// and the bundle is rebuilt whole every time, since seasonal decomposition
// needs the entire history.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a metrics engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With(slog.String("component", "metrics_engine"))}
}

// Compute derives MoM, YoY, seasonal components and anomaly flags for every
// observation. Categories are independent; output ordering mirrors the
// series ordering.
func (e *Engine) Compute(series *domain.Series) *domain.MetricsBundle {
	perCategory := make(map[domain.Category]map[time.Time]domain.MetricPoint)
	for category, obs := range series.ByCategory() {
		perCategory[category] = e.computeCategory(category, obs)
	}

	bundle := &domain.MetricsBundle{Points: make([]domain.MetricPoint, 0, series.Len())}
	for _, o := range series.Observations {
		bundle.Points = append(bundle.Points, perCategory[o.Category][o.Period])
	}
	return bundle
}

// computeCategory derives every metric for one category's observations,
// which arrive sorted by period.
func (e *Engine) computeCategory(category domain.Category, obs []domain.Observation) map[time.Time]domain.MetricPoint {
	byPeriod := make(map[time.Time]float64, len(obs))
	for _, o := range obs {
		byPeriod[o.Period] = o.Amount
	}

	points := make(map[time.Time]domain.MetricPoint, len(obs))
	for _, o := range obs {
		points[o.Period] = domain.MetricPoint{
			Period:   o.Period,
			Category: category,
			Amount:   o.Amount,
			MoM:      growthRatio(byPeriod, o.Period, o.Amount, 1),
			YoY:      yoyRatio(byPeriod, o.Period, o.Amount, len(obs)),
		}
	}

	e.applySeasonal(category, obs, points)
	return points
}

// growthRatio computes (current - previous) / previous against the period
// monthsBack months earlier. It returns nil — not zero, not an error — when
// the denominator period is missing or its amount is exactly zero, so
// division by zero never reaches a consumer as Inf or NaN.
func growthRatio(byPeriod map[time.Time]float64, period time.Time, amount float64, monthsBack int) *float64 {
	prev, ok := byPeriod[period.AddDate(0, -monthsBack, 0)]
	if !ok || prev == 0 {
		return nil
	}
	ratio := (amount - prev) / prev
	if math.IsInf(ratio, 0) || math.IsNaN(ratio) {
		return nil
	}
	return &ratio
}

func yoyRatio(byPeriod map[time.Time]float64, period time.Time, amount float64, historyLen int) *float64 {
	if historyLen < MinYoYHistoryMonths {
		return nil
	}
	return growthRatio(byPeriod, period, amount, 12)
}

// applySeasonal decorates the category's points with trend, seasonal,
// residual and anomaly fields when the history is long enough and
// contiguous; otherwise the fields stay not-available.
func (e *Engine) applySeasonal(category domain.Category, obs []domain.Observation, points map[time.Time]domain.MetricPoint) {
	if len(obs) < MinDecompositionObservations || !isContiguous(obs) {
		e.logger.Debug("skipping seasonal decomposition",
			slog.String("category", category.String()),
			slog.Int("observations", len(obs)),
			slog.Bool("contiguous", isContiguous(obs)))
		return
	}

	values := make([]float64, len(obs))
	for i, o := range obs {
		values[i] = o.Amount
	}

	d := decompose(values, int(obs[0].Period.Month())-1)
	scores := residualZScores(d.residual)

	for i, o := range obs {
		point := points[o.Period]
		point.Trend = d.trend[i]
		point.Seasonal = d.seasonal[i]
		point.Residual = d.residual[i]
		if scores != nil && scores[i] != nil {
			point.Anomaly = math.Abs(*scores[i]) > AnomalyZThreshold
		}
		points[o.Period] = point
	}
}

// isContiguous reports whether the sorted observations advance one month at
// a time with no gaps.
func isContiguous(obs []domain.Observation) bool {
	for i := 1; i < len(obs); i++ {
		if !obs[i].Period.Equal(obs[i-1].Period.AddDate(0, 1, 0)) {
			return false
		}
	}
	return true
}
