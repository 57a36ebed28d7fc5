package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"logistics-ocr/internal/parser"
	"logistics-ocr/internal/services"
)

var (
	remote    bool
	explain   bool
	threshold float64
	legacy    bool
)

func newDetectCmd(kind services.DocumentKind, short, long string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind) + " [text...]",
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, kind, args)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Send the text to the server and record the result in its history")
	return cmd
}

var plateCmd = newDetectCmd(services.KindPlate,
	"Extract a vehicle plate from OCR text",
	`Extract a vehicle plate (three letters followed by three digits) from OCR
text. Text is read from the arguments, or from stdin when no arguments are
given or the only argument is "-".`)

var containerCmd = newDetectCmd(services.KindContainer,
	"Extract an ISO 6346 container code from OCR text",
	`Extract a container code (owner code, category, serial and check digit)
from OCR text and report whether its check digit is valid.`)

var sealCmd = newDetectCmd(services.KindSeal,
	"Resolve a security seal number from OCR text",
	`Resolve the most likely security seal number from OCR text.

The confidence detector is consulted first. When its best candidate is below
the threshold the legacy scorer decides. Use --explain to see the ranked
candidates.`)

func init() {
	sealCmd.Flags().BoolVar(&explain, "explain", false, "Show ranked candidates and reasons")
	sealCmd.Flags().Float64Var(&threshold, "threshold", parser.DefaultConfidenceThreshold, "Confidence threshold for the detector")
	sealCmd.Flags().BoolVar(&legacy, "legacy", false, "Use only the legacy scorer")
	sealCmd.MarkFlagsMutuallyExclusive("legacy", "remote")

	rootCmd.AddCommand(plateCmd, containerCmd, sealCmd)
}

func runDetect(cmd *cobra.Command, kind services.DocumentKind, args []string) error {
	text, err := readText(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	if remote {
		_, formatter, client, err := initializeClient(cmd)
		if err != nil {
			return err
		}
		formatter.SetExplain(explain)

		verification, err := client.Detect(kind, text)
		if err != nil {
			formatter.PrintError(err)
			return err
		}
		return formatter.PrintVerification(verification)
	}

	_, formatter, err := initializeFormatter(cmd)
	if err != nil {
		return err
	}
	formatter.SetExplain(explain)

	verification, err := evaluateLocally(kind, text)
	if err != nil {
		formatter.PrintError(err)
		return err
	}
	return formatter.PrintVerification(verification)
}

// evaluateLocally runs detection in-process without recording history
func evaluateLocally(kind services.DocumentKind, text string) (*services.Verification, error) {
	if kind == services.KindSeal && (threshold <= 0 || threshold > 1) {
		return nil, fmt.Errorf("threshold must be in (0, 1], got %g", threshold)
	}

	if kind == services.KindSeal && legacy {
		value := parser.CleanSeal(text)
		verification := &services.Verification{
			Kind:    kind,
			RawText: text,
			Source:  services.SourceText,
		}
		if value != parser.NotDetected {
			verification.Value = value
			verification.Valid = true
		}
		return verification, nil
	}

	return services.Evaluate(kind, text, parser.NewSealResolver(threshold))
}
