package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"mfspulse/internal/config"
	"mfspulse/internal/exporter"
	"mfspulse/internal/pipeline"
)

// DataService is the transport-facing facade over the pipeline: it hands out
// the memoized result, triggers refreshes, and renders the flat export.
type DataService struct {
	orchestrator *pipeline.Orchestrator
	writer       *exporter.CSVWriter
	logger       *slog.Logger
}

// NewDataService creates the data service.
func NewDataService(orchestrator *pipeline.Orchestrator, writer *exporter.CSVWriter, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		orchestrator: orchestrator,
		writer:       writer,
		logger:       logger.With(slog.String("component", "data_service")),
	}
}

// Result returns the pipeline result, running the pipeline on first use.
func (s *DataService) Result(ctx context.Context) (*pipeline.Result, error) {
	return s.orchestrator.Result(ctx)
}

// Refresh invalidates the cached result and re-runs the chain from the
// first adapter.
func (s *DataService) Refresh(ctx context.Context) (*pipeline.Result, error) {
	s.logger.InfoContext(ctx, "explicit refresh requested")
	return s.orchestrator.Refresh(ctx)
}

// State exposes the orchestrator's lifecycle state for health reporting.
func (s *DataService) State() pipeline.State {
	return s.orchestrator.State()
}

// StreamExport writes the flat CSV artifact to out.
func (s *DataService) StreamExport(ctx context.Context, out io.Writer) error {
	result, err := s.orchestrator.Result(ctx)
	if err != nil {
		return err
	}
	return s.writer.StreamFlat(out, result.Bundle)
}

// WriteArtifact persists the flat CSV into the reports directory and returns
// the artifact name.
func (s *DataService) WriteArtifact(ctx context.Context) (string, error) {
	result, err := s.orchestrator.Result(ctx)
	if err != nil {
		return "", err
	}
	if err := s.writer.WriteFlat(config.FlatExportFileName, result.Bundle); err != nil {
		return "", err
	}
	return filepath.Base(config.FlatExportFileName), nil
}
