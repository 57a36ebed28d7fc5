package cmd

import (
	"github.com/spf13/cobra"

	"logistics-ocr/internal/services"
)

var (
	historyKind        string
	historyLimit       int
	historyFields      string
	historyInteractive bool
	historyPlain       bool
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"ls"},
	Short:   "List recent detections",
	Long: `List detections recorded by the server, newest first.

In a terminal with table output the list opens in an interactive browser.
Use --plain to print a static table instead.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyKind, "kind", "k", "", "Only show one kind (plate, container, seal)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of detections")
	historyCmd.Flags().StringVar(&historyFields, "fields", "", "Comma-separated columns for the interactive browser")
	historyCmd.Flags().BoolVarP(&historyInteractive, "interactive", "i", false, "Force the interactive browser")
	historyCmd.Flags().BoolVar(&historyPlain, "plain", false, "Never open the interactive browser")
	historyCmd.MarkFlagsMutuallyExclusive("interactive", "plain")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyKind != "" {
		if _, err := services.ParseKind(historyKind); err != nil {
			return err
		}
	}

	cfg, formatter, client, err := initializeClient(cmd)
	if err != nil {
		return err
	}

	verifications, err := client.ListDetections(historyKind, historyLimit)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	if !historyPlain && shouldUseInteractiveMode(cfg, historyInteractive) {
		return runInteractiveTable(verifications, client, historyFields, historyKind, historyLimit, cfg)
	}
	return formatter.PrintVerifications(verifications)
}
