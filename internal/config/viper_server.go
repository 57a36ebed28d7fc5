package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "OCR_VERIFY"

// LoadServerConfigWithViper loads server configuration using Viper
func LoadServerConfigWithViper(v *viper.Viper) (*Config, error) {
	setServerDefaults(v)
	setupServerEnvBinding(v)

	if err := loadConfigFile(v); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config := &Config{}
	if err := unmarshalServerConfig(v, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setServerDefaults sets default values for server configuration
func setServerDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "localhost")

	// Database defaults
	v.SetDefault("database.path", "./ocr-verify.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")

	// OCR defaults
	v.SetDefault("ocr.provider", "gemini")
	v.SetDefault("ocr.model", "gemini-1.5-flash")
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.timeout", "30s")
	v.SetDefault("ocr.monthly_limit", 1000)
	v.SetDefault("ocr.max_dimension", 2048)

	// Detection defaults
	v.SetDefault("detection.confidence_threshold", 0.7)
	v.SetDefault("detection.history_limit", 50)

	// Cache defaults
	v.SetDefault("cache.ttl", "720h")
	v.SetDefault("cache.disabled", false)

	// Development/testing defaults
	v.SetDefault("quota.disabled", false)
}

// setupServerEnvBinding binds OCR_VERIFY_* environment variables
func setupServerEnvBinding(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	envBindings := map[string]string{
		"server.port":                    "SERVER_PORT",
		"server.host":                    "SERVER_HOST",
		"database.path":                  "DATABASE_PATH",
		"logging.level":                  "LOGGING_LEVEL",
		"ocr.provider":                   "OCR_PROVIDER",
		"ocr.model":                      "OCR_MODEL",
		"ocr.api_key":                    "OCR_API_KEY",
		"ocr.timeout":                    "OCR_TIMEOUT",
		"ocr.monthly_limit":              "OCR_MONTHLY_LIMIT",
		"ocr.max_dimension":              "OCR_MAX_DIMENSION",
		"detection.confidence_threshold": "DETECTION_CONFIDENCE_THRESHOLD",
		"detection.history_limit":        "DETECTION_HISTORY_LIMIT",
		"cache.ttl":                      "CACHE_TTL",
		"cache.disabled":                 "CACHE_DISABLED",
		"quota.disabled":                 "QUOTA_DISABLED",
	}

	for configKey, envSuffix := range envBindings {
		v.BindEnv(configKey, envPrefix+"_"+envSuffix)
	}

	// The Gemini SDK convention, used when no prefixed key is set
	v.BindEnv("ocr.api_key", envPrefix+"_OCR_API_KEY", "GEMINI_API_KEY")
}

// loadConfigFile loads configuration file if it exists
func loadConfigFile(v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.ocr-verify")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return nil
}

// unmarshalServerConfig unmarshals Viper configuration into Config struct
func unmarshalServerConfig(v *viper.Viper, config *Config) error {
	config.ServerPort = v.GetString("server.port")
	config.ServerHost = v.GetString("server.host")
	config.DBPath = v.GetString("database.path")
	config.LogLevel = v.GetString("logging.level")

	config.OCRProvider = v.GetString("ocr.provider")
	config.OCRModel = v.GetString("ocr.model")
	config.OCRAPIKey = v.GetString("ocr.api_key")
	config.MonthlyOCRLimit = v.GetInt("ocr.monthly_limit")
	config.MaxImageDim = v.GetInt("ocr.max_dimension")

	config.ConfidenceThreshold = v.GetFloat64("detection.confidence_threshold")
	config.HistoryLimit = v.GetInt("detection.history_limit")

	config.DisableQuota = v.GetBool("quota.disabled")
	config.DisableCache = v.GetBool("cache.disabled")

	var err error
	config.OCRTimeout, err = time.ParseDuration(v.GetString("ocr.timeout"))
	if err != nil {
		return fmt.Errorf("invalid OCR timeout: %w", err)
	}

	config.CacheTTL, err = time.ParseDuration(v.GetString("cache.ttl"))
	if err != nil {
		return fmt.Errorf("invalid cache TTL: %w", err)
	}

	return nil
}

// LoadServerConfig loads server configuration using a fresh Viper instance
func LoadServerConfig() (*Config, error) {
	return LoadServerConfigWithViper(viper.New())
}

// LoadServerConfigWithFile loads server configuration from a specific file
func LoadServerConfigWithFile(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	return LoadServerConfigWithViper(v)
}

// LoadServerConfigWithEnvFile loads a .env file (default ".env") before reading configuration
func LoadServerConfigWithEnvFile(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := LoadEnvFile(envFile); err != nil {
		return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	return LoadServerConfigWithViper(viper.New())
}
