// Package normalize converts heterogeneous raw statistics tables into the
// canonical monthly series.
//
// The pipeline tolerates upstream format drift here: header aliasing through
// an explicit versioned table, wide-to-long reshaping, multi-format date
// parsing, crore-to-base-unit conversion, and duplicate-key summation all
// happen in one pass. Rows that cannot be read are dropped and counted; a
// drop rate above the configured threshold escalates to a schema error so a
// silently drifted table never produces a half-empty series.
package normalize
