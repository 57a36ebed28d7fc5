package handlers

import (
	"log/slog"
	"net/http"

	"logistics-ocr/internal/cache"
	"logistics-ocr/internal/database"
	"logistics-ocr/internal/services"
)

// DashboardHandler serves aggregated statistics
type DashboardHandler struct {
	db       *database.DB
	verifier *services.Verifier
	cache    *cache.Manager
	logger   *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(db *database.DB, verifier *services.Verifier, cacheManager *cache.Manager, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{db: db, verifier: verifier, cache: cacheManager, logger: logger}
}

// DashboardStats is the response of GET /api/stats
type DashboardStats struct {
	Detections map[string]int        `json:"detections"`
	Total      int                   `json:"total"`
	Usage      *services.UsageReport `json:"usage"`
	Cache      cache.CacheStats      `json:"cache"`
}

// GetStats handles GET /api/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.db.Detections.CountByKind()
	if err != nil {
		h.logger.Error("Failed to count detections", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get dashboard statistics")
		return
	}

	stats := DashboardStats{Detections: make(map[string]int, len(services.Kinds))}
	for _, kind := range services.Kinds {
		stats.Detections[string(kind)] = counts[string(kind)]
		stats.Total += counts[string(kind)]
	}

	stats.Usage, err = h.verifier.Usage()
	if err != nil {
		h.logger.Error("Failed to read OCR usage", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get dashboard statistics")
		return
	}

	stats.Cache, err = h.cache.GetStats()
	if err != nil {
		h.logger.Error("Failed to read cache stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get dashboard statistics")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
