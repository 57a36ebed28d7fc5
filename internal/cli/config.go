package cli

import (
	"fmt"
	"strings"
	"time"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var validFormats = []string{FormatTable, FormatJSON, FormatYAML}

// Config holds CLI configuration
type Config struct {
	ServerURL      string        `json:"server_url" yaml:"server_url"`
	Format         string        `json:"format" yaml:"format"`
	Quiet          bool          `json:"quiet" yaml:"quiet"`
	NoColor        bool          `json:"no_color" yaml:"no_color"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ServerURL:      "http://localhost:8080",
		Format:         FormatTable,
		RequestTimeout: 60 * time.Second,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	url := strings.TrimSpace(c.ServerURL)
	if url == "" {
		return fmt.Errorf("server URL cannot be empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("invalid server URL format: %s", c.ServerURL)
	}

	if !IsValidFormat(c.Format) {
		return fmt.Errorf("invalid format: %s (must be one of: %s)", c.Format, strings.Join(validFormats, ", "))
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	return nil
}

// IsValidFormat reports whether format is a supported output format
func IsValidFormat(format string) bool {
	for _, f := range validFormats {
		if format == f {
			return true
		}
	}
	return false
}
