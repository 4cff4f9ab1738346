package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/jivechunk/internal/pipeline"
)

// Name and Description are shared by the banner, version and help output.
const (
	Name        = "Jivechunk ✂️"
	Description = "Cut your podcast at the pauses and repack the speech into evenly sized chunks."
)

// Color palette
var (
	primaryColor   = TapeTeal
	accentColor    = TapeAmber
	errorColor     = TapeCoral
	successColor   = lipgloss.Color("#00AA00") // Green
	mutedColor     = lipgloss.Color("#888888") // Gray
	highlightColor = TapeCyan
	textColor      = lipgloss.Color("#FFFFFF") // White
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginTop(1)

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(successColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	// Highlight style for important values
	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlightColor)

	// Key-value pair styles
	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	// Box style for framed content
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)
)

// PrintBanner prints the application banner
func PrintBanner() {
	fmt.Println(TitleStyle.Render(Name))
	fmt.Println(SubtitleStyle.Render(Description))
	fmt.Println()
}

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render(Name))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Println()
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintHint prints a follow-up suggestion under an error
func PrintHint(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", HighlightStyle.Render("Hint:"), message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("%s %s\n", SuccessStyle.Render("✓"), message)
}

// PrintInfo prints an informational message
func PrintInfo(key, value string) {
	fmt.Printf("%s %s\n", KeyStyle.Render(key+":"), ValueStyle.Render(value))
}

// PrintSection prints a section header
func PrintSection(title string) {
	fmt.Println(HeaderStyle.Render(title))
}

// PrintChunk reports one written chunk file.
func PrintChunk(index int, d time.Duration) {
	PrintSuccess(ChunkLine(index, d))
}

// ChunkLine formats a saved chunk as "Saved chunk 3 (12.00 sec)".
func ChunkLine(index int, d time.Duration) string {
	return fmt.Sprintf("%s %s",
		ValueStyle.Render(fmt.Sprintf("Saved chunk %d", index)),
		KeyStyle.Render(fmt.Sprintf("(%s)", FormatSeconds(d))),
	)
}

// FormatDuration formats a duration nicely
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", d.Seconds()*1000)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// FormatSeconds formats an audio length as "12.34 sec".
func FormatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2f sec", d.Seconds())
}

// PrintBox prints content in a styled box
func PrintBox(content string) {
	fmt.Println(BoxStyle.Render(content))
}

// PrintSummary prints the run summary in a box
func PrintSummary(res *pipeline.Result) {
	PrintBox(Summary(res))
}

// Summary renders the run summary without the surrounding box.
func Summary(res *pipeline.Result) string {
	var b strings.Builder

	b.WriteString(SuccessStyle.Render(fmt.Sprintf("✓ %d chunks saved", len(res.Chunks))))
	b.WriteString("\n\n")

	writeKV(&b, "Input:     ", res.Input)
	writeKV(&b, "Audio:     ", fmt.Sprintf("%s, %s", FormatSeconds(res.Source), res.Format))
	writeKV(&b, "Segments:  ", fmt.Sprintf("%d speech segments", res.Segments))
	writeKV(&b, "Mode:      ", fmt.Sprintf("%s %s", res.Mode, FormatSeconds(res.Bound)))
	if len(res.Chunks) > 0 {
		writeKV(&b, "Chunks:    ", fmt.Sprintf("%s .. %s",
			res.Chunks[0].Path, res.Chunks[len(res.Chunks)-1].Path))
	}
	if res.CombinedPath != "" {
		writeKV(&b, "Combined:  ", res.CombinedPath)
	}
	b.WriteString(KeyStyle.Render("Time:      "))
	b.WriteString(HighlightStyle.Render(FormatDuration(res.Elapsed)))
	return b.String()
}

func writeKV(w io.StringWriter, key, value string) {
	_, _ = w.WriteString(KeyStyle.Render(key))
	_, _ = w.WriteString(ValueStyle.Render(value))
	_, _ = w.WriteString("\n")
}
