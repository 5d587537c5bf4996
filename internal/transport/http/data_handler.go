package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "mfspulse/internal/errors"
	"mfspulse/internal/services"
)

// DataHandler serves the cleaned series, the metrics bundle and the flat CSV
// export. It is a pure consumer of pipeline results: no normalization or
// metric logic lives here.
type DataHandler struct {
	service      *services.DataService
	logger       *slog.Logger
	errorHandler *apperrors.Handler
}

// NewDataHandler creates the data handler.
func NewDataHandler(service *services.DataService, logger *slog.Logger, errorHandler *apperrors.Handler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/series", h.GetSeries)
	r.Get("/metrics", h.GetMetrics)
	r.Post("/refresh", h.Refresh)
	r.Get("/export/csv", h.ExportCSV)

	return r
}

// seriesResponse wraps the canonical series with its provenance tag.
type seriesResponse struct {
	Provenance string      `json:"provenance"`
	RunID      string      `json:"run_id"`
	Series     interface{} `json:"series"`
}

// GetSeries handles GET /api/data/series.
func (h *DataHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Result(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, seriesResponse{
		Provenance: string(result.Provenance),
		RunID:      result.RunID,
		Series:     result.Series,
	})
}

// metricsResponse wraps the metrics bundle with run provenance.
type metricsResponse struct {
	Provenance string      `json:"provenance"`
	RunID      string      `json:"run_id"`
	Report     interface{} `json:"report"`
	Bundle     interface{} `json:"bundle"`
}

// GetMetrics handles GET /api/data/metrics.
func (h *DataHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Result(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, metricsResponse{
		Provenance: string(result.Provenance),
		RunID:      result.RunID,
		Report:     result.Report,
		Bundle:     result.Bundle,
	})
}

// Refresh handles POST /api/data/refresh: it invalidates the session cache
// and re-runs the chain from the first adapter.
func (h *DataHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Refresh(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, seriesResponse{
		Provenance: string(result.Provenance),
		RunID:      result.RunID,
		Series:     result.Series,
	})
}

// ExportCSV handles GET /api/data/export/csv with the flat table artifact.
func (h *DataHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="mfs_flat.csv"`)
	if err := h.service.StreamExport(r.Context(), w); err != nil {
		// Headers may already be out; log rather than double-respond.
		h.logger.ErrorContext(r.Context(), "export stream failed",
			slog.String("error", err.Error()))
	}
}
