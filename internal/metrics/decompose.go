package metrics

import "math"

// SeasonalPeriod is fixed at 12: the series is monthly and the only
// seasonality considered is annual.
const SeasonalPeriod = 12

// MinDecompositionObservations is the shortest contiguous history for which
// seasonal decomposition is statistically meaningful: two full seasonal
// cycles. Shorter categories get not-available seasonal fields instead of a
// decomposition computed on insufficient data.
const MinDecompositionObservations = 2 * SeasonalPeriod

// decomposition holds the additive components of one category's series.
// Slots are nil where the component is undefined (trend and residual are
// undefined within half a window of each edge).
type decomposition struct {
	trend    []*float64
	seasonal []*float64
	residual []*float64
}

// decompose performs additive decomposition of a contiguous monthly series:
// observed = trend + seasonal + residual. Trend is a centered 2x12 moving
// average; seasonal is the zero-mean monthly offset of the detrended series;
// residual is the remainder. values must have length >=
// MinDecompositionObservations. startMonth is the 0-based month-of-year of
// values[0].
func decompose(values []float64, startMonth int) decomposition {
	n := len(values)
	d := decomposition{
		trend:    make([]*float64, n),
		seasonal: make([]*float64, n),
		residual: make([]*float64, n),
	}

	half := SeasonalPeriod / 2
	for i := half; i < n-half; i++ {
		// 2x12 MA: half weight on the endpoints so the window stays centered
		// on an even period.
		sum := 0.5*values[i-half] + 0.5*values[i+half]
		for j := i - half + 1; j <= i+half-1; j++ {
			sum += values[j]
		}
		t := sum / float64(SeasonalPeriod)
		d.trend[i] = &t
	}

	// Monthly means of the detrended series.
	var monthSum [SeasonalPeriod]float64
	var monthCount [SeasonalPeriod]int
	for i := 0; i < n; i++ {
		if d.trend[i] == nil {
			continue
		}
		m := (startMonth + i) % SeasonalPeriod
		monthSum[m] += values[i] - *d.trend[i]
		monthCount[m]++
	}

	var offsets [SeasonalPeriod]float64
	var offsetTotal float64
	for m := 0; m < SeasonalPeriod; m++ {
		if monthCount[m] > 0 {
			offsets[m] = monthSum[m] / float64(monthCount[m])
		}
		offsetTotal += offsets[m]
	}
	// Center the offsets so the seasonal component sums to zero over a
	// cycle; otherwise it would absorb part of the level.
	center := offsetTotal / SeasonalPeriod
	for m := 0; m < SeasonalPeriod; m++ {
		offsets[m] -= center
	}

	for i := 0; i < n; i++ {
		s := offsets[(startMonth+i)%SeasonalPeriod]
		d.seasonal[i] = &s
		if d.trend[i] != nil {
			r := values[i] - *d.trend[i] - s
			d.residual[i] = &r
		}
	}
	return d
}

// residualZScores standardizes the defined residuals against their own mean
// and population standard deviation. It returns nil when the deviation is
// zero (degenerate series) — callers must treat that as "no anomalies", not
// as an error.
func residualZScores(residuals []*float64) []*float64 {
	var sum float64
	var count int
	for _, r := range residuals {
		if r != nil {
			sum += *r
			count++
		}
	}
	if count == 0 {
		return nil
	}
	mean := sum / float64(count)

	var varSum float64
	for _, r := range residuals {
		if r != nil {
			varSum += (*r - mean) * (*r - mean)
		}
	}
	std := math.Sqrt(varSum / float64(count))
	if std == 0 {
		return nil
	}

	scores := make([]*float64, len(residuals))
	for i, r := range residuals {
		if r != nil {
			z := (*r - mean) / std
			scores[i] = &z
		}
	}
	return scores
}
