package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ProgressSpinner shows a spinner on stderr while an OCR scan is running
type ProgressSpinner struct {
	message string
	enabled bool
	out     io.Writer

	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

// NewProgressSpinner creates a new progress spinner. The spinner is disabled
// when color is off, in CI, or when stderr is not a terminal.
func NewProgressSpinner(message string, noColor bool) *ProgressSpinner {
	enabled := !noColor && os.Getenv("CI") == "" && isatty.IsTerminal(os.Stderr.Fd())
	return &ProgressSpinner{
		message: message,
		enabled: enabled,
		out:     os.Stderr,
	}
}

// Start begins the spinner in a goroutine
func (p *ProgressSpinner) Start() {
	if !p.enabled {
		fmt.Fprintf(p.out, "%s...\n", p.message)
		return
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	model := spinnerModel{
		spinner: s,
		message: p.message,
		style:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}

	p.program = tea.NewProgram(model, tea.WithOutput(p.out), tea.WithInput(nil))
	p.done = make(chan struct{})
	go func() {
		defer close(p.done)
		_, _ = p.program.Run()
	}()
}

// Stop stops the spinner and waits for the terminal to be restored
func (p *ProgressSpinner) Stop() {
	if p.program == nil {
		return
	}
	p.once.Do(func() {
		p.program.Quit()
		<-p.done
	})
}

// spinnerModel implements tea.Model for the spinner
type spinnerModel struct {
	spinner spinner.Model
	message string
	style   lipgloss.Style
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	return fmt.Sprintf("%s %s", m.spinner.View(), m.style.Render(m.message))
}
