package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/restaurant-recommender/internal/dataset"
)

// StatsProvider exposes the loaded dataset's row counts
type StatsProvider interface {
	Stats() dataset.Stats
}

// HealthHandler provides health check endpoint
type HealthHandler struct {
	stats   StatsProvider
	version string
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(stats StatsProvider, version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		stats:   stats,
		version: version,
		logger:  logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Dataset   *dataset.Stats `json:"dataset,omitempty"`
}

// ServeHTTP handles health check requests
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	}
	if h.stats != nil {
		stats := h.stats.Stats()
		response.Dataset = &stats
	}

	WriteJSON(w, http.StatusOK, response, h.logger)
}
