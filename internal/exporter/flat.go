package exporter

import (
	"io"
	"strconv"

	"mfspulse/pkg/contracts/domain"
)

// FlatHeaders is the column layout of the exported flat table. It reproduces
// the canonical series joined with the metrics bundle by (period, category);
// undefined metric cells are empty, never zero.
var FlatHeaders = []string{"period", "category", "amount_bdt", "mom", "yoy", "residual", "anomaly"}

// FlatRecords renders the metrics bundle as flat CSV rows in bundle order,
// which mirrors the canonical series order.
func FlatRecords(bundle *domain.MetricsBundle) [][]string {
	records := make([][]string, 0, bundle.Len())
	for _, p := range bundle.Points {
		records = append(records, []string{
			p.Period.Format("2006-01-02"),
			p.Category.String(),
			formatFloat(p.Amount),
			formatOptional(p.MoM),
			formatOptional(p.YoY),
			formatOptional(p.Residual),
			strconv.FormatBool(p.Anomaly),
		})
	}
	return records
}

// WriteFlat writes the flat table artifact to the named file.
func (w *CSVWriter) WriteFlat(name string, bundle *domain.MetricsBundle) error {
	return w.WriteFile(name, FlatHeaders, FlatRecords(bundle))
}

// StreamFlat writes the flat table to an arbitrary writer.
func (w *CSVWriter) StreamFlat(out io.Writer, bundle *domain.MetricsBundle) error {
	return w.Write(out, FlatHeaders, FlatRecords(bundle))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
