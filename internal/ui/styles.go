package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for console output
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - applied changes
	ErrorColor   = lipgloss.Color("#FF5555") // Red - rejected fields
	WarningColor = lipgloss.Color("#FFA500") // Orange - warnings, deferred applies
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
	KeyColumnWidth   = 22  // Width of the title column in replies
)

var (
	// HeaderTitleStyle is for the banner title
	HeaderTitleStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true).
				PaddingLeft(2)

	// HeaderCommandStyle is for the command line under the title
	HeaderCommandStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	// HeaderParamKeyStyle is for banner parameter keys
	HeaderParamKeyStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	// HeaderParamValueStyle is for banner parameter values
	HeaderParamValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	// ReplyKeyStyle is for reply titles
	ReplyKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(KeyColumnWidth)

	// ReplyValueStyle is for reply values
	ReplyValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// ReplyErrorStyle is for rejected fields
	ReplyErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// ReplyWarningStyle is for warnings and deferred applies
	ReplyWarningStyle = lipgloss.NewStyle().
				Foreground(WarningColor)

	// ReplySuccessStyle is for started services and applied modes
	ReplySuccessStyle = lipgloss.NewStyle().
				Foreground(SuccessColor)

	// PromptStyle is for the interactive prompt
	PromptStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)
)

// Status markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
	WarningMarker = "!"
)

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}
