package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"logistics-ocr/internal/cache"
	"logistics-ocr/internal/config"
	"logistics-ocr/internal/database"
	"logistics-ocr/internal/ocr"
	"logistics-ocr/internal/server"
	"logistics-ocr/internal/services"
)

func main() {
	var (
		configFile string
		envFile    string
	)
	flag.StringVar(&configFile, "config", "", "Path to a config file (default is config.yaml in ., ./config or $HOME/.ocr-verify)")
	flag.StringVar(&envFile, "env-file", ".env", "Path to a .env file loaded before the environment is read")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(configFile, envFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// Initialize database
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("Database initialized", "path", cfg.DBPath)

	cacheManager := cache.NewManager(db.OCRCache, cfg.DisableCache, cfg.CacheTTL, logger)
	defer cacheManager.Close()

	var (
		provider     ocr.Provider
		providerName string
	)
	if cfg.HasOCRCredentials() {
		provider, err = ocr.NewProvider(ocr.Config{
			Provider: cfg.OCRProvider,
			APIKey:   cfg.OCRAPIKey,
			Model:    cfg.OCRModel,
			Timeout:  cfg.OCRTimeout,
		}, logger)
		if err != nil {
			logger.Error("Failed to create OCR provider", "provider", cfg.OCRProvider, "error", err)
			os.Exit(1)
		}
		providerName = provider.Name()
		logger.Info("OCR provider configured", "provider", providerName, "model", cfg.OCRModel)
	} else {
		logger.Warn("No OCR API key configured; image scans will only be served from cache")
	}

	if cfg.DisableQuota {
		logger.Warn("Monthly OCR quota enforcement is disabled")
	}

	verifier := services.NewVerifier(db, cacheManager, provider, cfg, logger)

	handler := server.NewRouter(server.Dependencies{
		DB:           db,
		Verifier:     verifier,
		Cache:        cacheManager,
		OCRProvider:  providerName,
		HistoryLimit: cfg.HistoryLimit,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: handler,

		// Scans wait on the OCR provider, so writes get the provider timeout on top
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.OCRTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Handle server startup and graceful shutdown
	shutdownTimeout := 30 * time.Second
	if err := server.HandleSignals(srv, shutdownTimeout, logger); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func loadConfig(configFile, envFile string) (*config.Config, error) {
	if configFile != "" {
		if err := config.LoadEnvFile(envFile); err != nil {
			return nil, err
		}
		return config.LoadServerConfigWithFile(configFile)
	}
	return config.LoadServerConfigWithEnvFile(envFile)
}
