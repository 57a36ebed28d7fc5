package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"logistics-ocr/internal/cache"
	"logistics-ocr/internal/database"
	"logistics-ocr/internal/handlers"
	"logistics-ocr/internal/services"
)

// Dependencies are the components the HTTP API is built from
type Dependencies struct {
	DB           *database.DB
	Verifier     *services.Verifier
	Cache        *cache.Manager
	OCRProvider  string // empty when image scanning is unavailable
	HistoryLimit int
	Logger       *slog.Logger
}

// NewRouter builds the chi router with the full middleware chain
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	verifications := handlers.NewVerificationHandler(deps.Verifier, deps.HistoryLimit, logger)
	dashboard := handlers.NewDashboardHandler(deps.DB, deps.Verifier, deps.Cache, logger)
	health := handlers.NewHealthHandler(deps.DB, deps.OCRProvider, logger)

	r := chi.NewRouter()
	r.Use(
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		MetricsMiddleware,
		CORSMiddleware,
		SecurityMiddleware,
		ContentTypeMiddleware,
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.HealthCheck)
		r.Get("/stats", dashboard.GetStats)
		r.Get("/usage", verifications.GetUsage)

		r.Post("/detect/{kind}", verifications.Detect)
		r.Post("/scan/{kind}", verifications.Scan)

		r.Get("/detections", verifications.ListDetections)
		r.Get("/detections/{id}", verifications.GetDetection)

		r.Get("/validate/container/{code}", verifications.ValidateContainer)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
