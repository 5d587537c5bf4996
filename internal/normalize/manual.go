package normalize

import (
	"encoding/csv"
	"log/slog"
	"os"
	"strings"

	"mfspulse/pkg/contracts/domain"
)

// ApplyManualOverlay merges a hand-maintained long-format CSV into the
// normalized series. The file carries month, category and either amount_bdt
// (base units) or amount_crore_bdt (converted here). Overlay rows win over
// normalized values per (period, category) — this is the one place
// last-write-wins applies, since the manual file exists precisely to correct
// upstream figures. A missing or unreadable file is non-fatal: the series
// passes through unchanged.
func ApplyManualOverlay(series *domain.Series, path string, logger *slog.Logger) *domain.Series {
	if path == "" {
		return series
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "manual_overlay"))

	file, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("could not open manual history file",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return series
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil || len(records) < 2 {
		logger.Warn("manual history file unreadable, skipping overlay",
			slog.String("path", path))
		return series
	}

	monthIdx, categoryIdx, amountIdx, inCrore := manualColumns(records[0])
	if monthIdx < 0 || categoryIdx < 0 || amountIdx < 0 {
		logger.Warn("manual history file missing required columns, skipping overlay",
			slog.String("path", path))
		return series
	}

	overrides := make(map[domain.Key]float64)
	for _, row := range records[1:] {
		period, ok := ParsePeriod(cellAt(row, monthIdx))
		if !ok {
			continue
		}
		category, ok := ResolveCategory(cellAt(row, categoryIdx))
		if !ok {
			continue
		}
		amount, ok := parseAmount(cellAt(row, amountIdx))
		if !ok {
			continue
		}
		if inCrore {
			amount *= BaseUnitsPerCrore
		}
		// Later rows win within the file as well.
		overrides[domain.Key{Period: period, Category: category}] = amount
	}
	if len(overrides) == 0 {
		return series
	}

	merged := make([]domain.Observation, 0, series.Len()+len(overrides))
	for _, o := range series.Observations {
		if amount, ok := overrides[o.Key()]; ok {
			o.Amount = amount
			delete(overrides, o.Key())
		}
		merged = append(merged, o)
	}
	for key, amount := range overrides {
		merged = append(merged, domain.Observation{
			Period:   key.Period,
			Category: key.Category,
			Amount:   amount,
		})
	}

	logger.Info("manual history applied",
		slog.String("path", path),
		slog.Int("overrides", len(merged)-series.Len()))
	return domain.NewSeries(merged)
}

// manualColumns finds the month, category and amount columns, and whether
// the amount column is expressed in crore.
func manualColumns(header []string) (monthIdx, categoryIdx, amountIdx int, inCrore bool) {
	monthIdx, categoryIdx, amountIdx = -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "month", "period", "date":
			if monthIdx < 0 {
				monthIdx = i
			}
		case "category":
			if categoryIdx < 0 {
				categoryIdx = i
			}
		case "amount_bdt":
			if amountIdx < 0 {
				amountIdx = i
				inCrore = false
			}
		case "amount_crore_bdt":
			if amountIdx < 0 {
				amountIdx = i
				inCrore = true
			}
		}
	}
	return monthIdx, categoryIdx, amountIdx, inCrore
}
