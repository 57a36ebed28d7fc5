package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	cliapi "logistics-ocr/internal/cli"
	"logistics-ocr/internal/services"
)

// detectionLister is the part of the API client the browser needs
type detectionLister interface {
	ListDetections(kind string, limit int) ([]services.Verification, error)
}

// KeyMap represents the key bindings for the interactive table
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Reload  key.Binding
	Filter  key.Binding
	Details key.Binding
	Help    key.Binding
	Quit    key.Binding
	Back    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f", "tab"),
			key.WithHelp("f/tab", "cycle kind filter"),
		),
		Details: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
	}
}

// filterCycle is the order the kind filter steps through; "" means all kinds
var filterCycle = []string{"", string(services.KindPlate), string(services.KindContainer), string(services.KindSeal)}

// InteractiveTable browses detection history
type InteractiveTable struct {
	table         table.Model
	verifications []services.Verification
	client        detectionLister
	fields        []string
	keys          KeyMap
	kind          string
	limit         int
	loading       bool
	spinner       spinner.Model
	err           error
	message       string
	showHelp      bool
	showDetails   bool
	quitting      bool
	useColor      bool
}

// NewInteractiveTable creates a new interactive table
func NewInteractiveTable(verifications []services.Verification, client detectionLister, fieldsFlag, kind string, limit int, config *cliapi.Config) (*InteractiveTable, error) {
	fields := parseFields(fieldsFlag)
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	t := table.New(
		table.WithColumns(buildColumns(fields, verifications)),
		table.WithRows(buildRows(fields, verifications)),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	useColor := !config.NoColor && isatty.IsTerminal(os.Stdout.Fd())
	if useColor {
		styles := table.DefaultStyles()
		styles.Header = styles.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(false)
		styles.Selected = styles.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
		t.SetStyles(styles)
	}

	return &InteractiveTable{
		table:         t,
		verifications: verifications,
		client:        client,
		fields:        fields,
		keys:          DefaultKeyMap(),
		kind:          kind,
		limit:         limit,
		spinner:       s,
		useColor:      useColor,
	}, nil
}

// Init initializes the interactive table
func (m InteractiveTable) Init() tea.Cmd {
	return nil
}

// reloadCompleteMsg is sent when a history fetch completes
type reloadCompleteMsg struct {
	kind          string
	verifications []services.Verification
	err           error
}

// Update handles messages and updates the model
func (m InteractiveTable) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showDetails {
			switch {
			case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Details):
				m.showDetails = false
				return m, nil
			case key.Matches(msg, m.keys.Quit):
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd

		case key.Matches(msg, m.keys.Details):
			if _, ok := m.selected(); !ok {
				m.message = "No detection selected"
				return m, nil
			}
			m.showDetails = true
			return m, nil

		case key.Matches(msg, m.keys.Reload):
			return m.startReload(m.kind)

		case key.Matches(msg, m.keys.Filter):
			return m.startReload(nextFilter(m.kind))
		}

	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		return m, nil

	case reloadCompleteMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.message = fmt.Sprintf("Error loading detections: %v", msg.err)
			return m, nil
		}
		m.err = nil
		m.kind = msg.kind
		m.setVerifications(msg.verifications)
		m.message = fmt.Sprintf("Loaded %d detections (%s)", len(msg.verifications), filterLabel(m.kind))
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m InteractiveTable) startReload(kind string) (InteractiveTable, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	m.loading = true
	m.message = ""
	m.err = nil

	client, limit := m.client, m.limit
	fetch := func() tea.Msg {
		verifications, err := client.ListDetections(kind, limit)
		return reloadCompleteMsg{kind: kind, verifications: verifications, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, fetch)
}

func (m *InteractiveTable) setVerifications(verifications []services.Verification) {
	m.verifications = verifications
	m.table.SetRows(nil)
	m.table.SetColumns(buildColumns(m.fields, verifications))
	m.table.SetRows(buildRows(m.fields, verifications))
	if m.table.Cursor() >= len(verifications) {
		m.table.SetCursor(0)
	}
}

func (m InteractiveTable) selected() (services.Verification, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.verifications) {
		return services.Verification{}, false
	}
	return m.verifications[i], true
}

// View renders the interactive table
func (m InteractiveTable) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	if m.showHelp {
		b.WriteString(m.helpView())
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(fmt.Sprintf("%s Loading...\n", m.spinner.View()))
	}

	if m.showDetails {
		b.WriteString(m.detailsView())
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")

	if m.message != "" {
		color := lipgloss.Color("82")
		if m.err != nil {
			color = lipgloss.Color("196")
		}
		b.WriteString(m.render(lipgloss.NewStyle().Foreground(color), m.message))
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	return b.String()
}

// helpView returns the help view
func (m InteractiveTable) helpView() string {
	bindings := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Details, m.keys.Reload, m.keys.Filter, m.keys.Help, m.keys.Quit}

	var help strings.Builder
	help.WriteString("Help:\n")
	for _, binding := range bindings {
		h := binding.Help()
		help.WriteString(fmt.Sprintf("  %-10s - %s\n", h.Key, h.Desc))
	}
	return help.String()
}

// detailsView renders the selected detection with its seal candidates
func (m InteractiveTable) detailsView() string {
	v, ok := m.selected()
	if !ok {
		return "No detection selected"
	}

	title := lipgloss.NewStyle().Bold(true)

	var b strings.Builder
	b.WriteString(m.render(title, fmt.Sprintf("Detection %s", v.ID)))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("  Kind:       %s\n", v.Kind))
	b.WriteString(fmt.Sprintf("  Value:      %s\n", getFieldValue(v, "value")))
	b.WriteString(fmt.Sprintf("  Valid:      %s\n", getFieldValue(v, "valid")))
	b.WriteString(fmt.Sprintf("  Confidence: %.2f\n", v.Confidence))
	if v.ReasonCode != "" {
		b.WriteString(fmt.Sprintf("  Reason:     %s\n", v.ReasonCode))
	}
	b.WriteString(fmt.Sprintf("  Source:     %s\n", v.Source))
	b.WriteString(fmt.Sprintf("  Created:    %s\n", v.CreatedAt.Local().Format("2006-01-02 15:04:05")))

	b.WriteString("\n")
	b.WriteString(m.render(title, "OCR text"))
	b.WriteString("\n")
	for _, line := range strings.Split(strings.TrimSpace(v.RawText), "\n") {
		b.WriteString("  " + truncateString(line, 100) + "\n")
	}

	if len(v.Candidates) > 0 {
		b.WriteString("\n")
		b.WriteString(m.render(title, "Candidates"))
		b.WriteString("\n")
		for i, c := range v.Candidates {
			b.WriteString(fmt.Sprintf("  %d. %-14s %.2f  %s\n", i+1, c.Text, c.Confidence,
				truncateString(strings.Join(c.Reasons, ", "), 70)))
		}
	}
	return b.String()
}

// statusLine returns the status line
func (m InteractiveTable) statusLine() string {
	if m.showDetails {
		return "Details | Press esc to return to the list"
	}
	if len(m.verifications) == 0 {
		return fmt.Sprintf("No detections found (%s) | Press f to change filter, q to quit", filterLabel(m.kind))
	}
	return fmt.Sprintf("Detection %d of %d (%s) | Press ? for help",
		m.table.Cursor()+1, len(m.verifications), filterLabel(m.kind))
}

func (m InteractiveTable) render(style lipgloss.Style, s string) string {
	if !m.useColor {
		return s
	}
	return style.Render(s)
}

func buildColumns(fields []string, verifications []services.Verification) []table.Column {
	columns := make([]table.Column, len(fields))
	for i, field := range fields {
		columns[i] = table.Column{
			Title: getFieldDisplayName(field),
			Width: calculateColumnWidth(field, verifications),
		}
	}
	return columns
}

func buildRows(fields []string, verifications []services.Verification) []table.Row {
	rows := make([]table.Row, len(verifications))
	for i, v := range verifications {
		row := make(table.Row, len(fields))
		for j, field := range fields {
			row[j] = getFieldValue(v, field)
		}
		rows[i] = row
	}
	return rows
}

// calculateColumnWidth calculates the width for a column based on its content
func calculateColumnWidth(field string, verifications []services.Verification) int {
	width := len(getFieldDisplayName(field))

	samples := len(verifications)
	if samples > 10 {
		samples = 10
	}
	for i := 0; i < samples; i++ {
		if value := getFieldValue(verifications[i], field); len(value) > width {
			width = len(value)
		}
	}

	if width < 8 {
		width = 8
	}
	if width > 50 {
		width = 50
	}
	return width
}

func nextFilter(kind string) string {
	for i, k := range filterCycle {
		if k == kind {
			return filterCycle[(i+1)%len(filterCycle)]
		}
	}
	return filterCycle[0]
}

func filterLabel(kind string) string {
	if kind == "" {
		return "all kinds"
	}
	return kind
}

// truncateString truncates a string to maxLen runes
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// runInteractiveTable runs the interactive table
func runInteractiveTable(verifications []services.Verification, client detectionLister, fieldsFlag, kind string, limit int, config *cliapi.Config) error {
	model, err := NewInteractiveTable(verifications, client, fieldsFlag, kind, limit, config)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
