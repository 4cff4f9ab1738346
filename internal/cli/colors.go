package cli

import "github.com/charmbracelet/lipgloss"

// Tape colour palette
// Shared theme colours for consistent branding across CLI and TUI
var (
	// Core colours (dark to bright)
	TapeTeal   = lipgloss.Color("#14B8A6") // Waveform teal
	TapeCyan   = lipgloss.Color("#22D3EE") // Bright cyan
	TapeAmber  = lipgloss.Color("#F8B31D") // Linux Matters yellow
	TapeCoral  = lipgloss.Color("#FF6F61") // Splice marker
	TapeIndigo = lipgloss.Color("#4338CA") // Deep indigo

	// Accent colours
	SlateGray = lipgloss.Color("#64748B") // Subtle text
)
