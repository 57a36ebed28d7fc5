package cmd

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <detection-id>",
	Aliases: []string{"get"},
	Short:   "Show a recorded detection",
	Long:    `Show a detection recorded by the server, including the ranked seal candidates.`,
	Args:    cobra.ExactArgs(1),
	RunE:    runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient(cmd)
	if err != nil {
		return err
	}

	id, err := validateDetectionID(args[0])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	verification, err := client.GetDetection(id)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	formatter.SetExplain(true)
	return formatter.PrintVerification(verification)
}
