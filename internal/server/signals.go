package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

// SignalHandler manages graceful shutdown of the HTTP server
type SignalHandler struct {
	server          *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// NewSignalHandler creates a new signal handler
func NewSignalHandler(server *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) *SignalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SignalHandler{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// Shutdown stops accepting connections and waits up to the shutdown timeout
// for in-flight requests
func (sh *SignalHandler) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), sh.shutdownTimeout)
	defer cancel()

	if err := sh.server.Shutdown(ctx); err != nil {
		sh.logger.Error("Server forced to shutdown", "error", err)
		return fmt.Errorf("shutdown: %w", err)
	}

	sh.logger.Info("Server gracefully shut down")
	return nil
}

// Run serves until SIGINT/SIGTERM or ctx cancellation, then shuts down
func (sh *SignalHandler) Run(ctx context.Context, serve func() error) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		sh.logger.Info("Starting server", "addr", sh.server.Addr)
		serveErr <- serve()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		sh.logger.Info("Initiating graceful shutdown")
	}

	return sh.Shutdown()
}

// HandleSignals starts the server and blocks until it is shut down by a signal.
// Only SIGINT and SIGTERM are handled; SIGKILL terminates without cleanup.
func HandleSignals(server *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	handler := NewSignalHandler(server, shutdownTimeout, logger)
	return handler.Run(context.Background(), server.ListenAndServe)
}
