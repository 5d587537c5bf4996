package normalize

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	apperrors "mfspulse/internal/errors"
	"mfspulse/pkg/contracts/domain"
)

// BaseUnitsPerCrore converts published crore figures to base currency units
// (BDT). It is the single most consequence-bearing numeric transform in the
// pipeline, so it lives here as a named constant and nowhere else.
const BaseUnitsPerCrore = 10_000_000

// dateLayouts are the raw period representations seen across releases,
// tried in order. All resolve to the first day of the month.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"Jan-06",
	"Jan-2006",
	"January 2006",
	"Jan 2006",
	"01/2006",
	"2006/01",
	"02/01/2006",
}

// Report carries normalization provenance: how much of the raw table
// survived and under which alias mapping.
type Report struct {
	AliasVersion     string   `json:"alias_version"`
	TotalTuples      int      `json:"total_tuples"`
	DroppedTuples    int      `json:"dropped_tuples"`
	UnmatchedHeaders []string `json:"unmatched_headers,omitempty"`
}

// DropRate returns the fraction of tuples dropped.
func (r *Report) DropRate() float64 {
	if r.TotalTuples == 0 {
		return 0
	}
	return float64(r.DroppedTuples) / float64(r.TotalTuples)
}

// Normalizer converts heterogeneous raw tables into the canonical monthly
// series. It owns the observations it emits; they are immutable afterwards.
type Normalizer struct {
	logger *slog.Logger
	// dropRateThreshold escalates to a schema error when exceeded: a table
	// where most rows fail to parse is drifted structure, not noisy data.
	dropRateThreshold float64
}

// NewNormalizer creates a normalizer with the given drop-rate threshold.
func NewNormalizer(logger *slog.Logger, dropRateThreshold float64) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		logger:            logger.With(slog.String("component", "normalizer")),
		dropRateThreshold: dropRateThreshold,
	}
}

// Normalize reshapes the raw table into a canonical series. It fails with a
// SCHEMA error when no column resolves to a date or category semantic after
// alias resolution, or when the drop rate exceeds the configured threshold.
func (n *Normalizer) Normalize(table *domain.RawTable) (*domain.Series, *Report, error) {
	if table.IsEmpty() {
		return nil, nil, apperrors.NewSchemaError("raw table has no data rows", nil)
	}

	report := &Report{AliasVersion: AliasTableVersion}

	// Header resolution: classify each column, collect the unmatched.
	dateIdx, categoryIdx, amountIdx := -1, -1, -1
	categoryCols := make(map[int]domain.Category)
	for i, header := range table.Headers {
		role, ok := ResolveHeader(header)
		if !ok {
			if strings.TrimSpace(header) != "" {
				report.UnmatchedHeaders = append(report.UnmatchedHeaders, header)
				n.logger.Warn("dropping unmatched header",
					slog.String("header", header),
					slog.String("alias_version", AliasTableVersion))
			}
			continue
		}
		switch role.Kind {
		case RoleDate:
			if dateIdx < 0 {
				dateIdx = i
			}
		case RoleCategoryColumn:
			if categoryIdx < 0 {
				categoryIdx = i
			}
		case RoleAmount:
			if amountIdx < 0 {
				amountIdx = i
			}
		case RoleCategory:
			categoryCols[i] = role.Category
		}
	}

	if dateIdx < 0 {
		return nil, nil, apperrors.NewSchemaError("no column matched the date semantic", nil).
			WithContext("headers", table.Headers)
	}

	// Reshape: long tables carry explicit category and amount columns; wide
	// tables carry one column per category and get melted.
	var sums map[domain.Key]float64
	switch {
	case amountIdx >= 0 && categoryIdx >= 0:
		sums = n.collectLong(table, dateIdx, categoryIdx, amountIdx, report)
	case len(categoryCols) > 0:
		sums = n.collectWide(table, dateIdx, categoryCols, report)
	default:
		return nil, nil, apperrors.NewSchemaError("no column matched a category semantic", nil).
			WithContext("headers", table.Headers)
	}

	if rate := report.DropRate(); rate > n.dropRateThreshold {
		return nil, nil, apperrors.NewSchemaError(
			fmt.Sprintf("drop rate %.2f exceeds threshold %.2f", rate, n.dropRateThreshold), nil).
			WithContext("dropped", report.DroppedTuples).
			WithContext("total", report.TotalTuples)
	}
	if len(sums) == 0 {
		return nil, nil, apperrors.NewSchemaError("no observations survived normalization", nil)
	}

	obs := make([]domain.Observation, 0, len(sums))
	for key, amount := range sums {
		obs = append(obs, domain.Observation{
			Period:   key.Period,
			Category: key.Category,
			Amount:   amount,
		})
	}
	series := domain.NewSeries(obs)

	if gaps := series.Gaps(); len(gaps) > 0 {
		for cat, months := range gaps {
			n.logger.Warn("monthly cadence gap",
				slog.String("category", cat.String()),
				slog.Int("missing_months", len(months)))
		}
	}

	n.logger.Info("normalization complete",
		slog.Int("observations", series.Len()),
		slog.Int("dropped_tuples", report.DroppedTuples),
		slog.Int("total_tuples", report.TotalTuples),
		slog.String("alias_version", report.AliasVersion))

	return series, report, nil
}

// collectLong reads (period, category, amount) tuples from a long table,
// summing duplicate keys.
func (n *Normalizer) collectLong(table *domain.RawTable, dateIdx, categoryIdx, amountIdx int, report *Report) map[domain.Key]float64 {
	sums := make(map[domain.Key]float64)
	for _, row := range table.Rows {
		if rowIsBlank(row) {
			continue
		}
		report.TotalTuples++

		period, ok := ParsePeriod(cellAt(row, dateIdx))
		if !ok {
			report.DroppedTuples++
			continue
		}
		category, ok := ResolveCategory(cellAt(row, categoryIdx))
		if !ok {
			report.DroppedTuples++
			continue
		}
		amount, ok := parseAmount(cellAt(row, amountIdx))
		if !ok {
			report.DroppedTuples++
			continue
		}
		sums[domain.Key{Period: period, Category: category}] += amount * BaseUnitsPerCrore
	}
	return sums
}

// collectWide melts a wide table into tuples, one per (row, category
// column). Duplicate keys — typically merged-header artifacts producing two
// columns for one category — are summed: categories are additive flow
// totals, so partial columns add up to the true figure.
func (n *Normalizer) collectWide(table *domain.RawTable, dateIdx int, categoryCols map[int]domain.Category, report *Report) map[domain.Key]float64 {
	sums := make(map[domain.Key]float64)
	for _, row := range table.Rows {
		if rowIsBlank(row) {
			continue
		}

		period, dateOK := ParsePeriod(cellAt(row, dateIdx))
		for col, category := range categoryCols {
			report.TotalTuples++
			if !dateOK {
				report.DroppedTuples++
				continue
			}
			amount, ok := parseAmount(cellAt(row, col))
			if !ok {
				report.DroppedTuples++
				continue
			}
			sums[domain.Key{Period: period, Category: category}] += amount * BaseUnitsPerCrore
		}
	}
	return sums
}

// ParsePeriod parses a raw date cell and normalizes it to the first day of
// the month in UTC.
func ParsePeriod(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), true
	}
	// Bare year rows ("2024") are annual totals, not monthly data.
	return time.Time{}, false
}

// parseAmount scrubs formatting noise (thousands separators, non-breaking
// spaces, currency markers) and parses the remainder as a float.
func parseAmount(raw string) (float64, bool) {
	s := strings.ReplaceAll(raw, ",", "")
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func rowIsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
