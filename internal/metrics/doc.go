// Package metrics derives trend metrics from the canonical series:
// month-over-month and year-over-year growth, additive seasonal
// decomposition (period 12), and residual z-score anomaly flags.
//
// Undefined is a first-class result here. Growth against a missing or zero
// denominator, seasonal components on short or gapped histories, and
// z-scores over degenerate residuals all come back as nil fields or false
// flags — never as Inf, NaN or an error.
package metrics
