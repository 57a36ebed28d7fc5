package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"logistics-ocr/internal/parser"
	"logistics-ocr/internal/services"
)

// ContainerValidation is the result of a check-digit validation
type ContainerValidation struct {
	Code  string `json:"code" yaml:"code"`
	Valid bool   `json:"valid" yaml:"valid"`
}

// OutputFormatter handles different output formats
type OutputFormatter struct {
	format  string
	quiet   bool
	explain bool
	color   bool
	out     io.Writer
	errOut  io.Writer

	okStyle   lipgloss.Style
	failStyle lipgloss.Style
	dimStyle  lipgloss.Style
}

// NewOutputFormatter creates a new output formatter writing to stdout/stderr.
// Color is only used when stdout is a terminal.
func NewOutputFormatter(format string, quiet, noColor bool) *OutputFormatter {
	color := !noColor && isatty.IsTerminal(os.Stdout.Fd())
	return NewOutputFormatterWithWriters(format, quiet, color, os.Stdout, os.Stderr)
}

// NewOutputFormatterWithWriters creates a formatter with explicit writers
func NewOutputFormatterWithWriters(format string, quiet, color bool, out, errOut io.Writer) *OutputFormatter {
	f := &OutputFormatter{
		format: format,
		quiet:  quiet,
		color:  color,
		out:    out,
		errOut: errOut,
	}
	if color {
		f.okStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
		f.failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
		f.dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}
	return f
}

// SetExplain makes table output include the ranked seal candidates
func (f *OutputFormatter) SetExplain(explain bool) {
	f.explain = explain
}

func (f *OutputFormatter) encode(v interface{}) (bool, error) {
	switch f.format {
	case FormatJSON:
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case FormatYAML:
		// Go through JSON so YAML keys match the API field names and order
		data, err := json.Marshal(v)
		if err != nil {
			return true, err
		}
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return true, err
		}
		enc := yaml.NewEncoder(f.out)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return true, err
		}
		return true, enc.Close()
	case FormatTable:
		return false, nil
	default:
		return true, fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintVerification prints a single verification
func (f *OutputFormatter) PrintVerification(v *services.Verification) error {
	if f.quiet {
		fmt.Fprintln(f.out, displayValue(v.Value))
		return nil
	}
	if handled, err := f.encode(v); handled {
		return err
	}

	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	if v.ID != uuid.Nil {
		fmt.Fprintf(w, "ID:\t%s\n", v.ID)
	}
	fmt.Fprintf(w, "Kind:\t%s\n", v.Kind)
	fmt.Fprintf(w, "Value:\t%s\n", displayValue(v.Value))
	fmt.Fprintf(w, "Valid:\t%s\n", f.validLabel(v.Valid))
	if v.Kind == services.KindSeal {
		fmt.Fprintf(w, "Confidence:\t%.2f\n", v.Confidence)
		if v.ReasonCode != "" {
			fmt.Fprintf(w, "Reason:\t%s\n", v.ReasonCode)
		}
	}
	fmt.Fprintf(w, "Source:\t%s\n", v.Source)
	if !v.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created:\t%s\n", v.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if f.explain && len(v.Candidates) > 0 {
		fmt.Fprintln(f.out)
		return f.printCandidates(v.Candidates)
	}
	return nil
}

// PrintVerifications prints a list of verifications
func (f *OutputFormatter) PrintVerifications(verifications []services.Verification) error {
	if f.quiet {
		for _, v := range verifications {
			fmt.Fprintln(f.out, v.ID)
		}
		return nil
	}
	if verifications == nil {
		verifications = []services.Verification{}
	}
	if handled, err := f.encode(verifications); handled {
		return err
	}

	if len(verifications) == 0 {
		fmt.Fprintln(f.out, "No detections found.")
		return nil
	}

	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tVALUE\tVALID\tCONFIDENCE\tSOURCE\tCREATED")
	for _, v := range verifications {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%.2f\t%s\t%s\n",
			v.ID.String()[:8],
			v.Kind,
			displayValue(v.Value),
			v.Valid,
			v.Confidence,
			v.Source,
			v.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// PrintUsage prints the monthly OCR usage report
func (f *OutputFormatter) PrintUsage(usage *services.UsageReport) error {
	if f.quiet {
		fmt.Fprintln(f.out, usage.Used)
		return nil
	}
	if handled, err := f.encode(usage); handled {
		return err
	}

	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Month:\t%s\n", usage.Month)
	fmt.Fprintf(w, "Used:\t%d\n", usage.Used)
	switch {
	case usage.Disabled:
		fmt.Fprintf(w, "Limit:\t%s\n", "disabled")
	case usage.Limit == 0:
		fmt.Fprintf(w, "Limit:\t%s\n", "unlimited")
	default:
		fmt.Fprintf(w, "Limit:\t%d\n", usage.Limit)
		fmt.Fprintf(w, "Remaining:\t%d\n", usage.Remaining)
	}
	return w.Flush()
}

// PrintContainerValidation prints an ISO 6346 check result
func (f *OutputFormatter) PrintContainerValidation(result ContainerValidation) error {
	if f.quiet {
		fmt.Fprintln(f.out, result.Valid)
		return nil
	}
	if handled, err := f.encode(result); handled {
		return err
	}

	fmt.Fprintf(f.out, "%s: %s\n", result.Code, f.validLabel(result.Valid))
	return nil
}

// PrintSuccess prints a success message
func (f *OutputFormatter) PrintSuccess(message string) {
	if !f.quiet {
		fmt.Fprintf(f.out, "%s %s\n", f.render(f.okStyle, "✓"), message)
	}
}

// PrintError prints an error message. Errors are shown even in quiet mode.
func (f *OutputFormatter) PrintError(err error) {
	fmt.Fprintf(f.errOut, "%s Error: %v\n", f.render(f.failStyle, "✗"), err)
}

// PrintInfo prints an informational message
func (f *OutputFormatter) PrintInfo(message string) {
	if !f.quiet {
		fmt.Fprintf(f.out, "ℹ %s\n", message)
	}
}

func (f *OutputFormatter) printCandidates(candidates []parser.ConfidenceCandidate) error {
	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCANDIDATE\tCONFIDENCE\tREASONS")
	for i, c := range candidates {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\n",
			i+1,
			c.Text,
			c.Confidence,
			f.render(f.dimStyle, truncate(strings.Join(c.Reasons, ", "), 60)))
	}
	return w.Flush()
}

func (f *OutputFormatter) validLabel(valid bool) string {
	if valid {
		return f.render(f.okStyle, "yes")
	}
	return f.render(f.failStyle, "no")
}

func (f *OutputFormatter) render(style lipgloss.Style, s string) string {
	if !f.color {
		return s
	}
	return style.Render(s)
}

func displayValue(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
