package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// CSVWriter writes CSV artifacts into the reports directory.
type CSVWriter struct {
	reportsDir string
	logger     *slog.Logger
}

// NewCSVWriter creates a CSV writer rooted at the reports directory.
func NewCSVWriter(reportsDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		reportsDir: reportsDir,
		logger:     logger.With(slog.String("component", "csv_writer")),
	}
}

// WriteFile writes headers and records to the named file under the reports
// directory, prefixed with a UTF-8 BOM so spreadsheet tools pick up the
// encoding.
func (w *CSVWriter) WriteFile(name string, headers []string, records [][]string) error {
	fullPath := w.resolvePath(name)

	w.logger.Info("writing CSV artifact",
		slog.String("path", fullPath),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := writeCSV(file, headers, records, true); err != nil {
		return err
	}
	return nil
}

// Write streams headers and records to an arbitrary writer (HTTP responses,
// test buffers). No BOM is emitted.
func (w *CSVWriter) Write(out io.Writer, headers []string, records [][]string) error {
	return writeCSV(out, headers, records, false)
}

func writeCSV(out io.Writer, headers []string, records [][]string, bom bool) error {
	if bom {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (w *CSVWriter) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.reportsDir, name)
}
