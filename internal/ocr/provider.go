package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var (
	// ErrInvalidImage is returned for empty, undecodable or unsupported images
	ErrInvalidImage = errors.New("invalid image")

	// ErrExtractionFailed is returned when the provider call fails or yields no text
	ErrExtractionFailed = errors.New("text extraction failed")
)

// Provider turns an image into raw text. Identifier detection happens
// downstream; providers only transcribe.
type Provider interface {
	Name() string
	ExtractText(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Config selects and configures a provider
type Config struct {
	Provider string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// NewProvider creates the configured provider
func NewProvider(cfg Config, logger *slog.Logger) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gemini", "":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return NewGeminiProvider(cfg.APIKey, cfg.Model, cfg.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unsupported OCR provider: %s", cfg.Provider)
	}
}
