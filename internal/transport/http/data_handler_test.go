package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfspulse/internal/config"
	apperrors "mfspulse/internal/errors"
	"mfspulse/internal/exporter"
	"mfspulse/internal/metrics"
	"mfspulse/internal/normalize"
	"mfspulse/internal/pipeline"
	"mfspulse/internal/services"
	"mfspulse/internal/source"
	"mfspulse/pkg/contracts/domain"
)

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubAdapter struct {
	table *domain.RawTable
	err   error
}

func (s *stubAdapter) Name() string { return "stub" }

func (s *stubAdapter) Fetch(ctx context.Context) (*domain.RawTable, error) {
	return s.table, s.err
}

func newTestRouter(t *testing.T, adapter source.Adapter, allowFallback bool) chi.Router {
	t.Helper()

	orchestrator := pipeline.New(
		[]source.Adapter{adapter},
		source.NewFallbackAdapter(nil),
		normalize.NewNormalizer(nil, 0.5),
		metrics.NewEngine(nil),
		config.PipelineConfig{AllowFallback: allowFallback},
		nil,
	)
	service := services.NewDataService(orchestrator, exporter.NewCSVWriter(t.TempDir(), nil), nil)

	r := chi.NewRouter()
	r.Mount("/api/data", NewDataHandler(service, slogDiscard(), apperrors.NewHandler(slogDiscard())).Routes())
	r.Mount("/api/health", NewHealthHandler(service).Routes())
	return r
}

func liveAdapter() source.Adapter {
	return &stubAdapter{table: &domain.RawTable{
		Source:  domain.SourceMarkup,
		Headers: []string{"Month", "Cash In", "Cash Out"},
		Rows: [][]string{
			{"Jan-24", "100", "80"},
			{"Feb-24", "110", "85"},
		},
	}}
}

func TestGetSeries(t *testing.T) {
	router := newTestRouter(t, liveAdapter(), true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/series", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Provenance string `json:"provenance"`
		RunID      string `json:"run_id"`
		Series     struct {
			Observations []json.RawMessage `json:"observations"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "live", body.Provenance)
	assert.NotEmpty(t, body.RunID)
	assert.Len(t, body.Series.Observations, 4)
}

func TestGetMetrics(t *testing.T) {
	router := newTestRouter(t, liveAdapter(), true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Provenance string `json:"provenance"`
		Bundle     struct {
			Points []struct {
				MoM *float64 `json:"mom"`
			} `json:"points"`
		} `json:"bundle"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "live", body.Provenance)
	assert.Len(t, body.Bundle.Points, 4)
}

func TestGetSeriesFallbackProvenance(t *testing.T) {
	down := &stubAdapter{err: apperrors.NewSourceUnavailable("portal down", nil)}
	router := newTestRouter(t, down, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/series", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Provenance string `json:"provenance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "fallback", body.Provenance)
}

func TestGetSeriesChainExhausted(t *testing.T) {
	down := &stubAdapter{err: apperrors.NewSourceUnavailable("portal down", nil)}
	router := newTestRouter(t, down, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/series", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var problem struct {
		Type   string `json:"type"`
		Status int    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, apperrors.TypeChainExhausted, problem.Type)
	assert.Equal(t, http.StatusServiceUnavailable, problem.Status)
}

func TestRefresh(t *testing.T) {
	router := newTestRouter(t, liveAdapter(), true)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/data/series", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/data/refresh", nil))
	require.Equal(t, http.StatusOK, second.Code)

	var a, b struct {
		RunID string `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.NotEqual(t, a.RunID, b.RunID, "refresh re-runs the chain")
}

func TestExportCSV(t *testing.T) {
	router := newTestRouter(t, liveAdapter(), true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/export/csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "mfs_flat.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 5) // header + 4 observations
	assert.Equal(t, "period,category,amount_bdt,mom,yoy,residual,anomaly", strings.TrimSpace(lines[0]))
}

func TestGetHealth(t *testing.T) {
	router := newTestRouter(t, liveAdapter(), true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status   string `json:"status"`
		Pipeline string `json:"pipeline_state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, string(pipeline.StateIdle), body.Pipeline)
}
