package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Config holds all server configuration
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBPath string

	// Logging
	LogLevel string

	// OCR provider
	OCRProvider     string
	OCRModel        string
	OCRAPIKey       string
	OCRTimeout      time.Duration
	MonthlyOCRLimit int
	MaxImageDim     int

	// Detection
	ConfidenceThreshold float64
	HistoryLimit        int

	// Development/testing flags
	DisableQuota bool
	DisableCache bool

	// OCR text cache
	CacheTTL time.Duration
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid server port: %s", c.ServerPort)
	}

	if c.DBPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	isValidLogLevel := false
	for _, level := range validLogLevels {
		if c.LogLevel == level {
			isValidLogLevel = true
			break
		}
	}
	if !isValidLogLevel {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.OCRProvider != "gemini" {
		return fmt.Errorf("unsupported OCR provider: %s", c.OCRProvider)
	}
	if c.OCRTimeout <= 0 {
		return fmt.Errorf("OCR timeout must be positive")
	}
	if c.MonthlyOCRLimit < 0 {
		return fmt.Errorf("monthly OCR limit must be non-negative")
	}
	if c.MaxImageDim < 256 {
		return fmt.Errorf("max image dimension must be at least 256, got %d", c.MaxImageDim)
	}

	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be in (0, 1], got %v", c.ConfidenceThreshold)
	}
	if c.HistoryLimit < 1 || c.HistoryLimit > 500 {
		return fmt.Errorf("history limit must be between 1 and 500")
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}

	return nil
}

// Address returns the full server address
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

// SlogLevel maps LogLevel to a slog level
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// HasOCRCredentials reports whether image verification can reach the provider
func (c *Config) HasOCRCredentials() bool {
	return strings.TrimSpace(c.OCRAPIKey) != ""
}

// GetDisableQuota returns the quota disable flag
func (c *Config) GetDisableQuota() bool {
	return c.DisableQuota
}

// GetMonthlyOCRLimit returns the monthly provider call limit
func (c *Config) GetMonthlyOCRLimit() int {
	return c.MonthlyOCRLimit
}

// GetConfidenceThreshold returns the seal detector acceptance threshold
func (c *Config) GetConfidenceThreshold() float64 {
	return c.ConfidenceThreshold
}

// GetMaxImageDimension returns the longest image side sent to the provider
func (c *Config) GetMaxImageDimension() int {
	return c.MaxImageDim
}

// GetDisableCache returns the cache disable flag
func (c *Config) GetDisableCache() bool {
	return c.DisableCache
}
