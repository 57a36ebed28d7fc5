package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cliapi "logistics-ocr/internal/cli"
	"logistics-ocr/internal/handlers"
	"logistics-ocr/internal/services"
)

var (
	scanKind    string
	scanRefresh bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Upload a photo for OCR and detection",
	Long: `Upload a JPEG, PNG, WebP or HEIC photo to the server. The server extracts
the text with its OCR provider, runs detection for the requested kind and
records the result. Repeated uploads of the same image are served from the
server's OCR cache unless --refresh is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanKind, "kind", "k", "", "Document kind (plate, container, seal)")
	scanCmd.MarkFlagRequired("kind")
	scanCmd.Flags().BoolVar(&explain, "explain", false, "Show ranked seal candidates")
	scanCmd.Flags().BoolVar(&scanRefresh, "refresh", false, "Bypass the server's OCR cache")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	kind, err := services.ParseKind(scanKind)
	if err != nil {
		return err
	}

	image, err := readImage(args[0])
	if err != nil {
		return err
	}

	cfg, formatter, client, err := initializeClient(cmd)
	if err != nil {
		return err
	}
	formatter.SetExplain(explain)

	var spinner *cliapi.ProgressSpinner
	if !cfg.Quiet {
		spinner = cliapi.NewProgressSpinner(fmt.Sprintf("Scanning %s for a %s", args[0], kind), cfg.NoColor)
		spinner.Start()
	}

	verification, err := client.Scan(kind, args[0], image, scanRefresh)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintVerification(verification)
}

// readImage reads an image file, refusing files the server would reject
func readImage(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > handlers.MaxUploadSize {
		return nil, fmt.Errorf("%s is %d bytes; the upload limit is %d bytes", path, info.Size(), handlers.MaxUploadSize)
	}
	return os.ReadFile(path)
}
