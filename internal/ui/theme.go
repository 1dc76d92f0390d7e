package ui

import "github.com/charmbracelet/lipgloss"

// Theme bundles the styles and symbols every renderer pulls from.
type Theme struct {
	Name string
	Dark bool

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, Done, New, Deleting, Help           lipgloss.Style
	Border                                        lipgloss.Style

	BoxUnchecked, BoxChecked string
	// ToggleIcon is what the theme switch shows: the mode you'd switch to.
	ToggleIcon string
}

// Light is the default theme.
func Light() Theme {
	return Theme{
		Name:     "light",
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("235")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("27")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
		Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("166")),
		Selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		Done:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Strikethrough(true),
		New:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27")),
		Deleting: lipgloss.NewStyle().Faint(true).Italic(true),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("250")).
			Padding(0, 1),
		BoxUnchecked: "☐",
		BoxChecked:   "☑",
		ToggleIcon:   "🌙",
	}
}

// Dark mirrors Light on a dark background.
func Dark() Theme {
	return Theme{
		Name:     "dark",
		Dark:     true,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Selected: lipgloss.NewStyle().Bold(true).Reverse(true),
		Done:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		New:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
		Deleting: lipgloss.NewStyle().Faint(true).Italic(true),
		Help:     lipgloss.NewStyle().Faint(true),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
		BoxUnchecked: "☐",
		BoxChecked:   "☑",
		ToggleIcon:   "☀️",
	}
}

// For picks the theme for a dark-mode flag.
func For(dark bool) Theme {
	if dark {
		return Dark()
	}
	return Light()
}
