package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/jivechunk/internal/cli"
)

// ErrInterrupted is reported when the user quits before the run ends.
var ErrInterrupted = errors.New("interrupted")

// recentChunks is how many saved chunks the export view lists.
const recentChunks = 6

// Phase represents the current processing phase
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseDetecting
	PhaseRepacking
	PhaseExporting
	PhaseComplete
	PhaseFailed
)

var phaseLabels = []string{
	PhaseLoading:   "Loading audio",
	PhaseDetecting: "Detecting silence",
	PhaseRepacking: "Repacking segments",
	PhaseExporting: "Saving chunks",
}

// LoadComplete is sent once the input is decoded.
type LoadComplete struct {
	Source time.Duration
	Format string
}

// DetectComplete is sent with the number of speech segments found.
type DetectComplete struct {
	Segments int
}

// RepackComplete is sent with the number of chunks to be written.
type RepackComplete struct {
	Chunks int
}

// ChunkSaved is sent after each chunk file is written.
type ChunkSaved struct {
	Done     int
	Total    int
	Index    int
	Duration time.Duration
}

// RunComplete signals a successful run. Summary is printed after the
// program exits.
type RunComplete struct {
	Summary string
}

// RunFailed signals a failed run.
type RunFailed struct {
	Err error
}

// progressQuitMsg is sent when it's time to quit after showing completion
type progressQuitMsg struct{}

// Model implements the Bubbletea model for a chunking run
type Model struct {
	progressBar progress.Model
	phase       Phase

	input  string
	bound  time.Duration
	source time.Duration
	format string

	segments int
	total    int
	saved    []ChunkSaved

	summary string
	err     error

	startTime       time.Time
	phaseStart      []time.Time
	width           int
	completionDelay time.Duration
	quitting        bool
}

// NewModel creates a progress UI for input. bound scales the per-chunk bars.
func NewModel(input string, bound time.Duration) *Model {
	p := progress.New(
		progress.WithGradient(string(cli.TapeIndigo), string(cli.TapeCyan)),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	now := time.Now()
	return &Model{
		progressBar:     p,
		phase:           PhaseLoading,
		input:           input,
		bound:           bound,
		startTime:       now,
		phaseStart:      []time.Time{now},
		completionDelay: 750 * time.Millisecond,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressBar.Width = max(10, min(msg.Width-30, 50))
		return m, nil

	case LoadComplete:
		m.source = msg.Source
		m.format = msg.Format
		m.advance(PhaseDetecting)
		return m, nil

	case DetectComplete:
		m.segments = msg.Segments
		m.advance(PhaseRepacking)
		return m, nil

	case RepackComplete:
		m.total = msg.Chunks
		m.advance(PhaseExporting)
		return m, nil

	case ChunkSaved:
		m.total = msg.Total
		m.saved = append(m.saved, msg)
		return m, nil

	case RunComplete:
		m.summary = msg.Summary
		m.advance(PhaseComplete)
		return m, m.quitAfterDelay()

	case RunFailed:
		m.err = msg.Err
		m.phase = PhaseFailed
		return m, m.quitAfterDelay()

	case progressQuitMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if m.quitting {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.err = ErrInterrupted
			m.phase = PhaseFailed
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m *Model) advance(next Phase) {
	m.phase = next
	m.phaseStart = append(m.phaseStart, time.Now())
}

func (m *Model) quitAfterDelay() tea.Cmd {
	m.quitting = true
	return tea.Tick(m.completionDelay, func(time.Time) tea.Msg {
		return progressQuitMsg{}
	})
}

// Phase returns the current phase.
func (m *Model) Phase() Phase {
	return m.phase
}

// Err returns the failure reported to the model, if any.
func (m *Model) Err() error {
	return m.err
}

// CompletionSummary returns the summary to print once the program exits.
// Returns empty string if the run is not complete.
func (m *Model) CompletionSummary() string {
	if m.phase != PhaseComplete {
		return ""
	}
	return m.summary
}

// View renders the UI
func (m *Model) View() string {
	var s strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.TapeTeal).
		Render(cli.Name)
	s.WriteString(title)
	s.WriteString("  ")
	s.WriteString(lipgloss.NewStyle().Faint(true).Render(m.input))
	s.WriteString("\n\n")

	m.renderSteps(&s)
	s.WriteString("\n")
	m.renderProgress(&s)

	if len(m.saved) > 0 {
		s.WriteString("\n")
		m.renderChunks(&s)
	}

	border := cli.TapeTeal
	if m.phase == PhaseFailed {
		border = cli.TapeCoral
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2).
		Render(s.String())
}

func (m *Model) renderSteps(s *strings.Builder) {
	done := lipgloss.NewStyle().Foreground(cli.TapeTeal)
	active := lipgloss.NewStyle().Bold(true).Foreground(cli.TapeAmber)
	pending := lipgloss.NewStyle().Faint(true)
	failed := lipgloss.NewStyle().Bold(true).Foreground(cli.TapeCoral)
	detail := lipgloss.NewStyle().Faint(true)

	current := m.phase
	if current == PhaseFailed {
		current = Phase(len(m.phaseStart) - 1)
	}

	for p := PhaseLoading; p <= PhaseExporting; p++ {
		label := phaseLabels[p]
		switch {
		case p < current:
			s.WriteString(done.Render("✓ " + label))
			s.WriteString("  ")
			s.WriteString(detail.Render(m.stepDetail(p)))
		case p == current && m.phase == PhaseFailed:
			s.WriteString(failed.Render("✗ " + label))
		case p == current:
			s.WriteString(active.Render("› " + label + "..."))
		default:
			s.WriteString(pending.Render("  " + label))
		}
		s.WriteString("\n")
	}
}

func (m *Model) stepDetail(p Phase) string {
	var d string
	switch p {
	case PhaseLoading:
		d = fmt.Sprintf("%s, %s", cli.FormatSeconds(m.source), m.format)
	case PhaseDetecting:
		d = fmt.Sprintf("%d speech segments", m.segments)
	case PhaseRepacking:
		d = fmt.Sprintf("%d chunks", m.total)
	case PhaseExporting:
		d = fmt.Sprintf("%d files", len(m.saved))
	}
	if int(p)+1 < len(m.phaseStart) {
		d += "  " + formatDuration(m.phaseStart[p+1].Sub(m.phaseStart[p]))
	}
	return d
}

func (m *Model) renderProgress(s *strings.Builder) {
	percent := m.percent()
	s.WriteString("Progress: ")
	s.WriteString(m.progressBar.ViewAs(percent))
	s.WriteString(fmt.Sprintf("  %d%%", int(percent*100)))
	s.WriteString("\n")

	elapsed := time.Since(m.startTime)
	status := "Running"
	switch m.phase {
	case PhaseComplete:
		status = "Complete"
	case PhaseFailed:
		status = "Failed"
		if m.err != nil {
			status = "Failed: " + m.err.Error()
		}
	}
	s.WriteString(lipgloss.NewStyle().Faint(true).Render(
		fmt.Sprintf("Time: %s  │  %s", formatDuration(elapsed), status)))
	s.WriteString("\n")
}

// percent weights the first three phases as one step each and spreads the
// fourth across the chunks written.
func (m *Model) percent() float64 {
	const steps = 4.0
	switch m.phase {
	case PhaseComplete:
		return 1.0
	case PhaseExporting:
		if m.total > 0 {
			return (3 + float64(len(m.saved))/float64(m.total)) / steps
		}
		return 3 / steps
	case PhaseFailed:
		return float64(len(m.phaseStart)-1) / steps
	default:
		return float64(m.phase) / steps
	}
}

func (m *Model) renderChunks(s *strings.Builder) {
	s.WriteString(lipgloss.NewStyle().Foreground(cli.TapeAmber).Render("Chunks:"))
	s.WriteString("\n")

	from := max(0, len(m.saved)-recentChunks)
	if from > 0 {
		s.WriteString(lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("  … %d earlier", from)))
		s.WriteString("\n")
	}

	labelStyle := lipgloss.NewStyle().Faint(true)
	for _, c := range m.saved[from:] {
		ratio := 0.0
		if m.bound > 0 {
			ratio = c.Duration.Seconds() / m.bound.Seconds()
		}
		s.WriteString(fmt.Sprintf("  %s %s  %s\n",
			labelStyle.Render(fmt.Sprintf("%4d.wav", c.Index)),
			makeGradientBar(min(ratio, 1.0), 24),
			cli.FormatSeconds(c.Duration)))
	}
}

// Helper functions

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// makeGradientBar draws a block bar shaded indigo to cyan
func makeGradientBar(ratio float64, width int) string {
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var result strings.Builder

	gradientColors := []lipgloss.Color{
		cli.TapeIndigo,
		lipgloss.Color("#3B5BDB"),
		lipgloss.Color("#1C7ED6"),
		lipgloss.Color("#1098AD"),
		cli.TapeTeal,
		cli.TapeCyan,
	}

	for i := 0; i < width; i++ {
		if i < filled {
			pos := float64(i) / float64(width)
			colorIdx := int(pos * float64(len(gradientColors)-1))
			if colorIdx >= len(gradientColors) {
				colorIdx = len(gradientColors) - 1
			}
			result.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render("█"))
		} else {
			result.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#2A2A2A")).Render("░"))
		}
	}

	return result.String()
}
