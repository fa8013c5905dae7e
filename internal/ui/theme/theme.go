package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme and styling
type Theme struct {
	Name string

	Background lipgloss.Color
	Foreground lipgloss.Color

	// UI elements
	Border        lipgloss.Color
	BorderFocused lipgloss.Color
	Selection     lipgloss.Color
	Cursor        lipgloss.Color
	Metadata      lipgloss.Color

	// Status colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// OmniBox
	Keyword      lipgloss.Color // action keywords in options
	Value        lipgloss.Color // committed value chips
	ValueText    lipgloss.Color
	OptionActive lipgloss.Color // focused option background
	Ghost        lipgloss.Color // preview of the focused option

	// Table colors
	TableHeader      lipgloss.Color
	TableRowSelected lipgloss.Color
	Null             lipgloss.Color

	// JSON cells
	JSONKey lipgloss.Color
}

var themes = map[string]func() Theme{
	"default":          DefaultTheme,
	"catppuccin-mocha": CatppuccinMochaTheme,
}

// GetTheme returns a theme by name, falling back to the default theme
func GetTheme(name string) Theme {
	if fn, ok := themes[name]; ok {
		return fn()
	}
	return DefaultTheme()
}

// Names lists the known theme names
func Names() []string {
	return []string{"default", "catppuccin-mocha"}
}
