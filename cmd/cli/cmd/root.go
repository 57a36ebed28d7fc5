package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cliapi "logistics-ocr/internal/cli"
	"logistics-ocr/internal/config"
)

var (
	configFile string
	serverURL  string
	format     string
	quiet      bool
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ocr-verify",
	Short: "Detect plates, containers and seals in OCR text",
	Long: `ocr-verify recovers vehicle plates, ISO 6346 container codes and
security seal numbers from noisy OCR text.

The plate, container, seal and validate commands run locally. The scan,
history, show and usage commands talk to an ocr-verify server.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "CLI config file (default is cli.yaml in ., ./config or $HOME/.ocr-verify)")
	flags.StringVarP(&serverURL, "server", "s", "", "API server address")
	flags.StringVarP(&format, "format", "f", "", "Output format (table, json, yaml)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (minimal output)")
	flags.BoolVar(&noColor, "no-color", false, "Disable color output")
}

// loadConfig resolves CLI settings from flags, OCR_VERIFY_CLI_* env and cli.yaml
func loadConfig(cmd *cobra.Command) (*cliapi.Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	flags := cmd.Root().PersistentFlags()
	bindings := map[string]string{
		"server_url": "server",
		"format":     "format",
		"quiet":      "quiet",
		"no_color":   "no-color",
	}
	for key, flag := range bindings {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			v.Set(key, f.Value.String())
		}
	}

	return config.LoadCLIConfigWithViper(v)
}

// initializeFormatter loads configuration and builds the output formatter
func initializeFormatter(cmd *cobra.Command) (*cliapi.Config, *cliapi.OutputFormatter, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	formatter := cliapi.NewOutputFormatter(cfg.Format, cfg.Quiet, cfg.NoColor)
	return cfg, formatter, nil
}

// initializeClient sets up configuration, formatter, and API client
func initializeClient(cmd *cobra.Command) (*cliapi.Config, *cliapi.OutputFormatter, *cliapi.Client, error) {
	cfg, formatter, err := initializeFormatter(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	client := cliapi.NewClientWithTimeout(cfg.ServerURL, cfg.RequestTimeout)

	// Test connectivity
	if err := client.HealthCheck(); err != nil {
		formatter.PrintError(err)
		return nil, nil, nil, err
	}

	return cfg, formatter, client, nil
}
