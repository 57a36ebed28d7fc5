package cmd

import (
	"github.com/spf13/cobra"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show this month's OCR usage",
	Args:  cobra.NoArgs,
	RunE:  runUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient(cmd)
	if err != nil {
		return err
	}

	usage, err := client.Usage()
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintUsage(usage)
}
