package source

import (
	"context"
	_ "embed"
	"encoding/csv"
	"log/slog"
	"strings"

	apperrors "mfspulse/internal/errors"
	"mfspulse/pkg/contracts/domain"
)

// staticDataset is a baked long-format snapshot of the published series
// (month, category, amount in crore BDT) covering three full years, enough
// history for every derived metric including seasonal decomposition.
//
//go:embed static_dataset.csv
var staticDataset string

// FallbackAdapter serves the embedded static dataset. It sits last in the
// chain so the pipeline never produces an empty result during source
// outages, unless fallback is disabled by configuration. It performs no IO
// and cannot fail for availability reasons; a malformed embedded dataset is
// a build defect surfaced as a parse error.
type FallbackAdapter struct {
	logger *slog.Logger
}

// NewFallbackAdapter creates the static dataset adapter.
func NewFallbackAdapter(logger *slog.Logger) *FallbackAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackAdapter{logger: logger.With(slog.String("component", "fallback_adapter"))}
}

// Name implements Adapter.
func (a *FallbackAdapter) Name() string { return string(domain.SourceFallback) }

// Fetch implements Adapter.
func (a *FallbackAdapter) Fetch(ctx context.Context) (*domain.RawTable, error) {
	reader := csv.NewReader(strings.NewReader(staticDataset))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("embedded dataset is malformed", err)
	}
	if len(records) < 2 {
		return nil, apperrors.NewParsingError("embedded dataset is empty", nil)
	}

	a.logger.Debug("serving embedded dataset", slog.Int("rows", len(records)-1))
	return &domain.RawTable{
		Source:  domain.SourceFallback,
		Headers: records[0],
		Rows:    records[1:],
	}, nil
}
