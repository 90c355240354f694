package tui

import "github.com/charmbracelet/lipgloss"

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed   = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorGray  = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan  = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleTabActive = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(colorCyan)

	styleTabInactive = lipgloss.NewStyle().
				Foreground(colorGray)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorCyan).
			Padding(0, 1)
)

const (
	// DialogWidthMargin is the horizontal space kept around the dialog box
	DialogWidthMargin = 6
	// DialogHeightOffset covers title, tabs, status and footer lines
	DialogHeightOffset = 10
	// MinDialogWidth keeps the textarea usable on narrow terminals
	MinDialogWidth = 40
)
