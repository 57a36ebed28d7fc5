package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"logistics-ocr/internal/cli"
)

const cliEnvPrefix = envPrefix + "_CLI"

// LoadCLIConfigWithViper loads CLI configuration using Viper
func LoadCLIConfigWithViper(v *viper.Viper) (*cli.Config, error) {
	setCLIDefaults(v)
	setupCLIEnvBinding(v)

	if err := loadCLIConfigFile(v); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config := &cli.Config{}
	if err := unmarshalCLIConfig(v, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setCLIDefaults sets default values for CLI configuration
func setCLIDefaults(v *viper.Viper) {
	defaults := cli.DefaultConfig()
	v.SetDefault("server_url", defaults.ServerURL)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("quiet", defaults.Quiet)
	v.SetDefault("no_color", defaults.NoColor)
	v.SetDefault("request_timeout", defaults.RequestTimeout.String())
}

// setupCLIEnvBinding binds OCR_VERIFY_CLI_* environment variables
func setupCLIEnvBinding(v *viper.Viper) {
	v.SetEnvPrefix(cliEnvPrefix)
	v.AutomaticEnv()

	envBindings := map[string]string{
		"server_url":      "SERVER_URL",
		"format":          "FORMAT",
		"quiet":           "QUIET",
		"request_timeout": "TIMEOUT",
	}

	for configKey, envSuffix := range envBindings {
		v.BindEnv(configKey, cliEnvPrefix+"_"+envSuffix)
	}

	// https://no-color.org
	v.BindEnv("no_color", cliEnvPrefix+"_NO_COLOR", "NO_COLOR")
}

// loadCLIConfigFile loads cli.yaml if it exists
func loadCLIConfigFile(v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.ocr-verify")
		v.SetConfigName("cli")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return nil
}

// unmarshalCLIConfig unmarshals Viper configuration into the CLI Config struct
func unmarshalCLIConfig(v *viper.Viper, config *cli.Config) error {
	config.ServerURL = v.GetString("server_url")
	config.Format = v.GetString("format")
	config.Quiet = v.GetBool("quiet")
	config.NoColor = v.GetBool("no_color")

	timeout, err := parseTimeout(v.GetString("request_timeout"))
	if err != nil {
		return err
	}
	config.RequestTimeout = timeout

	return nil
}

// parseTimeout accepts a Go duration ("90s") or a whole number of seconds ("90")
func parseTimeout(value string) (time.Duration, error) {
	if value == "" {
		return cli.DefaultConfig().RequestTimeout, nil
	}

	if duration, err := time.ParseDuration(value); err == nil {
		if duration <= 0 {
			return 0, fmt.Errorf("request timeout must be positive, got %s", value)
		}
		return duration, nil
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid request timeout: %s", value)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("request timeout must be positive, got %d seconds", seconds)
	}
	return time.Duration(seconds) * time.Second, nil
}

// LoadCLIConfig loads CLI configuration using a fresh Viper instance
func LoadCLIConfig() (*cli.Config, error) {
	return LoadCLIConfigWithViper(viper.New())
}

// LoadCLIConfigWithFile loads CLI configuration from a specific file
func LoadCLIConfigWithFile(configFile string) (*cli.Config, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	return LoadCLIConfigWithViper(v)
}
