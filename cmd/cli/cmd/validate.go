package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	cliapi "logistics-ocr/internal/cli"
	"logistics-ocr/internal/parser"
)

var validateCmd = &cobra.Command{
	Use:   "validate <code>",
	Short: "Check an ISO 6346 container code",
	Long: `Check the structure and check digit of an ISO 6346 container code.
Spaces and dashes are ignored, so "MSCU 663987-0" is accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	_, formatter, err := initializeFormatter(cmd)
	if err != nil {
		return err
	}

	code := strings.NewReplacer(" ", "", "-", "").Replace(strings.ToUpper(strings.TrimSpace(args[0])))
	return formatter.PrintContainerValidation(cliapi.ContainerValidation{
		Code:  code,
		Valid: parser.ValidateISO6346(code),
	})
}
