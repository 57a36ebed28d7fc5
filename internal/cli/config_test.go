package cli

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.ServerURL != "http://localhost:8080" {
		t.Errorf("Expected default server URL to be 'http://localhost:8080', got '%s'", config.ServerURL)
	}
	if config.Format != FormatTable {
		t.Errorf("Expected default format to be 'table', got '%s'", config.Format)
	}
	if config.Quiet {
		t.Errorf("Expected default quiet to be false")
	}
	if config.RequestTimeout != 60*time.Second {
		t.Errorf("Expected default timeout to be 60s, got %v", config.RequestTimeout)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"https url", func(c *Config) { c.ServerURL = "https://ocr.example.com" }, false},
		{"empty url", func(c *Config) { c.ServerURL = "  " }, true},
		{"missing scheme", func(c *Config) { c.ServerURL = "localhost:8080" }, true},
		{"yaml format", func(c *Config) { c.Format = FormatYAML }, false},
		{"bad format", func(c *Config) { c.Format = "csv" }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			err := config.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestIsValidFormat(t *testing.T) {
	for _, format := range []string{"table", "json", "yaml"} {
		if !IsValidFormat(format) {
			t.Errorf("Expected %q to be valid", format)
		}
	}
	if IsValidFormat("TABLE") {
		t.Error("Expected format matching to be case sensitive")
	}
}
