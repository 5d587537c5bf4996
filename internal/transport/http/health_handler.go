package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"mfspulse/internal/config"
	"mfspulse/internal/services"
)

// HealthHandler reports liveness and the pipeline's lifecycle state.
type HealthHandler struct {
	service *services.DataService
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(service *services.DataService) *HealthHandler {
	return &HealthHandler{service: service}
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetHealth)
	return r
}

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Pipeline string `json:"pipeline_state"`
}

// GetHealth handles GET /api/health.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{
		Status:   "ok",
		Version:  config.AppVersion,
		Pipeline: string(h.service.State()),
	})
}
