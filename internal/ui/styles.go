package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
const (
	ColorLime     = "154"
	ColorLimeDim  = "106"
	ColorWhite    = "255"
	ColorGray     = "245"
	ColorDarkGray = "238"
	ColorRed      = "196"
	ColorYellow   = "220"
)

// Styles holds the editor's styles.
type Styles struct {
	Header    lipgloss.Style
	Dirty     lipgloss.Style
	Checkbox  lipgloss.Style
	Position  lipgloss.Style
	Selection lipgloss.Style
	Caret     lipgloss.Style
	Info      lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Dim       lipgloss.Style
}

// DefaultStyles returns the colored theme.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Dirty:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Checkbox:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Position:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Selection: lipgloss.NewStyle().Background(lipgloss.Color(ColorLimeDim)).Foreground(lipgloss.Color(ColorWhite)),
		Caret:     lipgloss.NewStyle().Reverse(true),
		Info:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles drops colors but keeps the attributes that mark the
// selection and caret.
func NoColorStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true),
		Dirty:     lipgloss.NewStyle(),
		Checkbox:  lipgloss.NewStyle(),
		Position:  lipgloss.NewStyle(),
		Selection: lipgloss.NewStyle().Underline(true),
		Caret:     lipgloss.NewStyle().Reverse(true),
		Info:      lipgloss.NewStyle(),
		Warning:   lipgloss.NewStyle(),
		Error:     lipgloss.NewStyle().Bold(true),
		Dim:       lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
