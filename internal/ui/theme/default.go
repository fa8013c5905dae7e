package theme

import "github.com/charmbracelet/lipgloss"

// DefaultTheme returns the default dark theme
func DefaultTheme() Theme {
	return Theme{
		Name: "default",

		Background: lipgloss.Color("235"),
		Foreground: lipgloss.Color("252"),

		Border:        lipgloss.Color("240"),
		BorderFocused: lipgloss.Color("62"),
		Selection:     lipgloss.Color("237"),
		Cursor:        lipgloss.Color("248"),
		Metadata:      lipgloss.Color("244"),

		Success: lipgloss.Color("42"),
		Warning: lipgloss.Color("220"),
		Error:   lipgloss.Color("196"),
		Info:    lipgloss.Color("75"),

		Keyword:      lipgloss.Color("75"),
		Value:        lipgloss.Color("24"),
		ValueText:    lipgloss.Color("255"),
		OptionActive: lipgloss.Color("25"),
		Ghost:        lipgloss.Color("241"),

		TableHeader:      lipgloss.Color("105"),
		TableRowSelected: lipgloss.Color("25"),
		Null:             lipgloss.Color("244"),

		JSONKey: lipgloss.Color("117"),
	}
}
