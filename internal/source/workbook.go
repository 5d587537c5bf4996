package source

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "mfspulse/internal/errors"
	"mfspulse/pkg/contracts/domain"
)

// WorkbookAdapter reads the monthly XLSX bulletin that republishes the
// statistics when the portal page changes shape. The bulletin is paginated
// across sheets; the data sheet is found by scanning headers rather than by
// name, since sheet naming has drifted between releases.
type WorkbookAdapter struct {
	fetcher Fetcher
	url     string
	logger  *slog.Logger
}

// NewWorkbookAdapter creates the XLSX bulletin adapter.
func NewWorkbookAdapter(fetcher Fetcher, url string, logger *slog.Logger) *WorkbookAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookAdapter{
		fetcher: fetcher,
		url:     url,
		logger:  logger.With(slog.String("component", "workbook_adapter")),
	}
}

// Name implements Adapter.
func (a *WorkbookAdapter) Name() string { return string(domain.SourceWorkbook) }

// Fetch implements Adapter.
func (a *WorkbookAdapter) Fetch(ctx context.Context) (*domain.RawTable, error) {
	payload, err := a.fetcher.Fetch(ctx, a.url)
	if err != nil {
		return nil, err
	}
	return a.Extract(payload)
}

// Extract opens the workbook and locates the statistics sheet.
func (a *WorkbookAdapter) Extract(payload []byte) (*domain.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) < 2 {
			continue
		}

		headerIdx := findHeaderRow(rows)
		if headerIdx < 0 {
			continue
		}

		a.logger.Debug("found statistics sheet",
			slog.String("sheet", sheet),
			slog.Int("header_row", headerIdx),
			slog.Int("total_rows", len(rows)))

		return &domain.RawTable{
			Source:  domain.SourceWorkbook,
			Headers: rows[headerIdx],
			Rows:    padRows(rows[headerIdx+1:], len(rows[headerIdx])),
		}, nil
	}

	return nil, apperrors.NewSchemaError("no statistics sheet found in workbook", nil)
}

// findHeaderRow scans the leading rows for one that looks like the table
// header: it must mention a month/date column and at least two transaction
// categories. Title rows and merged-cell banners above the header are
// skipped this way.
func findHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		text := strings.ToLower(strings.Join(rows[i], " "))
		if !strings.Contains(text, "month") && !strings.Contains(text, "period") {
			continue
		}
		hits := 0
		for _, marker := range []string{"cash", "p2p", "merchant", "utility", "government", "salary", "others"} {
			if strings.Contains(text, marker) {
				hits++
			}
		}
		if hits >= 2 {
			return i
		}
	}
	return -1
}

// padRows right-pads short rows so every row spans the header width.
// excelize trims trailing empty cells, which would otherwise shift melt
// positions.
func padRows(rows [][]string, width int) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		out = append(out, row)
	}
	return out
}
