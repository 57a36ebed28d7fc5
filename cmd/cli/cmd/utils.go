package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	cliapi "logistics-ocr/internal/cli"
)

// maxStdinText bounds how much OCR text is read from stdin
const maxStdinText = 1 << 20

// readText joins the arguments, or reads stdin when there are none or the
// only argument is "-"
func readText(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(io.LimitReader(stdin, maxStdinText))
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("no text given: pass it as arguments or on stdin")
	}
	return string(data), nil
}

// validateDetectionID validates that the argument is a detection UUID
func validateDetectionID(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}

	id, err := uuid.Parse(arg)
	if err != nil {
		return "", fmt.Errorf("invalid ID '%s': must be a UUID", arg)
	}
	return id.String(), nil
}

// isTerminalFunc is replaced in tests
var isTerminalFunc = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// shouldUseInteractiveMode reports whether history should open the table browser
func shouldUseInteractiveMode(config *cliapi.Config, explicit bool) bool {
	if explicit {
		return true
	}
	if config.Format != cliapi.FormatTable || config.Quiet {
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	return isTerminalFunc()
}
