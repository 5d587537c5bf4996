package domain

import "time"

// Provenance tags a pipeline result with where its data came from.
type Provenance string

const (
	ProvenanceLive     Provenance = "live"
	ProvenanceFallback Provenance = "fallback"
)

// MetricPoint carries the derived metrics for one (period, category) key.
// Nil pointer fields mean "not available": a missing or zero denominator for
// the growth ratios, or insufficient history for the seasonal fields.
// Division-by-zero never surfaces as Inf or NaN.
type MetricPoint struct {
	Period   time.Time `json:"period"`
	Category Category  `json:"category"`
	Amount   float64   `json:"amount_bdt"`

	MoM      *float64 `json:"mom,omitempty"`
	YoY      *float64 `json:"yoy,omitempty"`
	Trend    *float64 `json:"trend,omitempty"`
	Seasonal *float64 `json:"seasonal,omitempty"`
	Residual *float64 `json:"residual,omitempty"`
	Anomaly  bool     `json:"anomaly"`
}

// MetricsBundle is the read-only derived view over a Series. It is rebuilt
// in full on every new series; points mirror the series ordering and carry
// the same (period, category) keys.
type MetricsBundle struct {
	Points []MetricPoint `json:"points"`
}

// Len returns the number of metric points.
func (b *MetricsBundle) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Points)
}

// At returns the metric point for the given key, if present.
func (b *MetricsBundle) At(period time.Time, category Category) (MetricPoint, bool) {
	for _, p := range b.Points {
		if p.Category == category && p.Period.Equal(period) {
			return p, true
		}
	}
	return MetricPoint{}, false
}
