package ui

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	colorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	colorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	colorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	colorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	colorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	colorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	colorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	colorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// headerStyle is used for the application title bar.
var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorWhite).
	Background(colorBlue).
	Padding(0, 1)

// badgeStyle highlights the due-today count in the header.
var badgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorWhite).
	Background(colorRed).
	Padding(0, 1)

// statusBarStyle is used for the bottom status bar.
var statusBarStyle = lipgloss.NewStyle().
	Foreground(colorWhite).
	Background(colorSubtle).
	Padding(0, 1)

// alertBoxStyle frames the active due alert.
var alertBoxStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorYellow)

// briefingStyle frames the once-per-session agenda summary.
var briefingStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorBlue)

var (
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	completedStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(colorGray)
	overdueStyle   = lipgloss.NewStyle().Foreground(colorRed)
	dimmedStyle    = lipgloss.NewStyle().Foreground(colorGray)
	noticeStyle    = lipgloss.NewStyle().Foreground(colorYellow)
)

// priorityStyle maps a priority weight to its accent color.
func priorityStyle(weight int) lipgloss.Style {
	switch weight {
	case 3:
		return lipgloss.NewStyle().Foreground(colorRed)
	case 2:
		return lipgloss.NewStyle().Foreground(colorYellow)
	default:
		return lipgloss.NewStyle().Foreground(colorGreen)
	}
}
