package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/omnipg/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled group of bindings
type Section struct {
	Title    string
	Bindings []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"Ctrl+C", "Quit application"},
		{"/", "Focus the OmniBox"},
		{"Ctrl+S", "Save the current view"},
		{"Ctrl+Y", "Copy the view as a query string"},
		{"Ctrl+L", "Clear all filters"},
		{"Esc/Enter", "Dismiss error"},
	}
}

// GetOmniBoxKeys returns OmniBox key bindings
func GetOmniBoxKeys() []KeyBinding {
	return []KeyBinding{
		{"filter col op val", "Filter, e.g. filter qty > 10"},
		{"sort col [desc]", "Sort by a column"},
		{"text", "Search text columns"},
		{"↑/↓", "Move through suggestions"},
		{"Tab", "Take the focused suggestion"},
		{"Enter", "Take the suggestion or commit"},
		{"Backspace", "Edit the last value (empty input)"},
		{"Esc", "Close suggestions, then leave"},
		{"Click value", "Edit that value"},
	}
}

// GetTableKeys returns data table key bindings
func GetTableKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k ↓/j", "Move selection"},
		{"←/h →/l", "Move column"},
		{"Ctrl+U/Ctrl+D", "Page up/down"},
		{"g/G", "First/last loaded row"},
		{"Enter", "Show row detail"},
		{"y", "Copy cell"},
		{"p", "Toggle SQL preview"},
		{"r, F5", "Reload"},
		{"v", "Open a saved view"},
		{"H", "Open a recent view"},
		{"/ (in a picker)", "Filter the list"},
	}
}

// Sections returns every help section in display order
func Sections() []Section {
	return []Section{
		{"Global", GetGlobalKeys()},
		{"OmniBox", GetOmniBoxKeys()},
		{"Table", GetTableKeys()},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(22)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder

	b.WriteString(titleStyle.Render("omnipg - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, sec := range Sections() {
		b.WriteString(sectionStyle.Render(sec.Title))
		b.WriteString("\n")
		for _, kb := range sec.Bindings {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(max(width-4, 20)).
		Height(max(height-4, 5))

	return boxStyle.Render(b.String())
}
