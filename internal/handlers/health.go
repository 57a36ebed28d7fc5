package handlers

import (
	"log/slog"
	"net/http"

	"logistics-ocr/internal/database"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db          *database.DB
	ocrProvider string
	logger      *slog.Logger
}

// NewHealthHandler creates a new health handler. ocrProvider is the
// configured provider name, or empty when image scanning is unavailable.
func NewHealthHandler(db *database.DB, ocrProvider string, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, ocrProvider: ocrProvider, logger: logger}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	OCR      string `json:"ocr"`
	Message  string `json:"message,omitempty"`
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:   "healthy",
		Database: "ok",
		OCR:      h.ocrProvider,
	}
	if response.OCR == "" {
		response.OCR = "unconfigured"
	}

	if err := h.db.IsHealthy(); err != nil {
		h.logger.Error("Health check failed", "error", err)
		response.Status = "unhealthy"
		response.Database = "error"
		response.Message = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}
