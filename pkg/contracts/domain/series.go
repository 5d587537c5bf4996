package domain

import (
	"sort"
	"time"
)

// Observation is one normalized data point: a category's flow total for a
// month, in base currency units (BDT, not crore). Period is always the first
// day of the month in UTC. Observations are immutable once emitted by the
// normalizer and unique per (period, category).
type Observation struct {
	Period   time.Time `json:"period"`
	Category Category  `json:"category"`
	Amount   float64   `json:"amount_bdt"`
}

// Key identifies an observation by its (period, category) pair.
type Key struct {
	Period   time.Time
	Category Category
}

// Key returns the observation's (period, category) key.
func (o Observation) Key() Key {
	return Key{Period: o.Period, Category: o.Category}
}

// Series is an ordered collection of observations, sorted by period
// ascending and by category within a period. Gaps in the monthly cadence are
// allowed but surfaced through Gaps(); missing (period, category) pairs are
// absent, never zero-filled.
type Series struct {
	Observations []Observation `json:"observations"`
}

// NewSeries builds a sorted series from observations. Callers are expected
// to have already resolved duplicate keys; NewSeries only orders.
func NewSeries(obs []Observation) *Series {
	out := make([]Observation, len(obs))
	copy(out, obs)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Period.Equal(out[j].Period) {
			return out[i].Period.Before(out[j].Period)
		}
		return out[i].Category < out[j].Category
	})
	return &Series{Observations: out}
}

// Len returns the number of observations.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Observations)
}

// ByCategory groups observations per category, preserving period order.
func (s *Series) ByCategory() map[Category][]Observation {
	grouped := make(map[Category][]Observation)
	for _, o := range s.Observations {
		grouped[o.Category] = append(grouped[o.Category], o)
	}
	return grouped
}

// At returns the observation for the given key, if present.
func (s *Series) At(period time.Time, category Category) (Observation, bool) {
	for _, o := range s.Observations {
		if o.Category == category && o.Period.Equal(period) {
			return o, true
		}
	}
	return Observation{}, false
}

// PeriodRange returns the earliest and latest period in the series.
func (s *Series) PeriodRange() (time.Time, time.Time, bool) {
	if s.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.Observations[0].Period, s.Observations[s.Len()-1].Period, true
}

// Gaps returns, per category, the months missing between that category's
// first and last observation. A non-empty result means the monthly cadence
// is broken for that category.
func (s *Series) Gaps() map[Category][]time.Time {
	gaps := make(map[Category][]time.Time)
	for cat, obs := range s.ByCategory() {
		if len(obs) < 2 {
			continue
		}
		seen := make(map[time.Time]bool, len(obs))
		for _, o := range obs {
			seen[o.Period] = true
		}
		for p := obs[0].Period.AddDate(0, 1, 0); p.Before(obs[len(obs)-1].Period); p = p.AddDate(0, 1, 0) {
			if !seen[p] {
				gaps[cat] = append(gaps[cat], p)
			}
		}
	}
	return gaps
}
