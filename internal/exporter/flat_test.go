package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfspulse/pkg/contracts/domain"
)

func fptr(v float64) *float64 { return &v }

func sampleBundle() *domain.MetricsBundle {
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	feb := jan.AddDate(0, 1, 0)
	return &domain.MetricsBundle{Points: []domain.MetricPoint{
		{Period: jan, Category: domain.CategoryCashIn, Amount: 1e9},
		{Period: feb, Category: domain.CategoryCashIn, Amount: 1.1e9,
			MoM: fptr(0.1), YoY: nil, Residual: fptr(-2.5), Anomaly: true},
	}}
}

func TestFlatRecords(t *testing.T) {
	records := FlatRecords(sampleBundle())
	require.Len(t, records, 2)

	// Undefined metric cells are empty, never zero.
	assert.Equal(t, []string{"2024-01-01", "Cash-In", "1000000000", "", "", "", "false"}, records[0])
	assert.Equal(t, []string{"2024-02-01", "Cash-In", "1100000000", "0.1", "", "-2.5", "true"}, records[1])
}

func TestStreamFlat(t *testing.T) {
	w := NewCSVWriter(t.TempDir(), nil)

	var buf bytes.Buffer
	require.NoError(t, w.StreamFlat(&buf, sampleBundle()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, FlatHeaders, rows[0])
}

func TestWriteFlatArtifact(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)

	require.NoError(t, w.WriteFlat("mfs_flat.csv", sampleBundle()))

	data, err := os.ReadFile(filepath.Join(dir, "mfs_flat.csv"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "artifact carries a UTF-8 BOM")

	rows, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, FlatHeaders, rows[0])
}

// The flat table must reproduce the series joined with the bundle exactly:
// same keys, same order, same amounts.
func TestFlatRecordsMirrorBundleOrder(t *testing.T) {
	bundle := sampleBundle()
	records := FlatRecords(bundle)
	require.Len(t, records, bundle.Len())
	for i, p := range bundle.Points {
		assert.Equal(t, p.Period.Format("2006-01-02"), records[i][0])
		assert.Equal(t, p.Category.String(), records[i][1])
	}
}
