package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"prognoza/internal/services"
)

// HealthHandler reports service liveness and the state of the dataset.
type HealthHandler struct {
	store   *services.DatasetStore
	started time.Time
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store *services.DatasetStore, version string) *HealthHandler {
	return &HealthHandler{
		store:   store,
		started: time.Now(),
		version: version,
	}
}

// Routes returns the health routes
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetHealth)
	return r
}

// GetHealth handles GET /api/health
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	datasetLoaded := true
	if _, err := h.store.Current(); err != nil {
		status = "degraded"
		datasetLoaded = false
	}

	render.JSON(w, r, map[string]any{
		"status":         status,
		"version":        h.version,
		"uptime":         time.Since(h.started).String(),
		"dataset_loaded": datasetLoaded,
		"timestamp":      time.Now().UTC(),
	})
}
