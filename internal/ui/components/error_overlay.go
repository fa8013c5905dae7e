package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/omnipg/internal/ui/theme"
)

// ErrorOverlay displays an error over the table until dismissed
type ErrorOverlay struct {
	Title   string
	Message string
	Width   int
	Theme   theme.Theme
	visible bool
}

// NewErrorOverlay creates a hidden error overlay
func NewErrorOverlay(th theme.Theme) *ErrorOverlay {
	return &ErrorOverlay{
		Width: 60,
		Theme: th,
	}
}

// SetError shows the overlay with the given title and message
func (e *ErrorOverlay) SetError(title, message string) {
	e.Title = title
	e.Message = message
	e.visible = true
}

// Hide dismisses the overlay
func (e *ErrorOverlay) Hide() {
	e.visible = false
}

// Visible reports whether an error is shown
func (e *ErrorOverlay) Visible() bool {
	return e.visible
}

// View renders the overlay
func (e *ErrorOverlay) View() string {
	if !e.visible {
		return ""
	}

	width := max(e.Width, 20)
	titleStyle := lipgloss.NewStyle().Foreground(e.Theme.Error).Bold(true)
	msgStyle := lipgloss.NewStyle().Foreground(e.Theme.Foreground).Width(width - 4)
	hintStyle := lipgloss.NewStyle().Foreground(e.Theme.Metadata).Italic(true)

	content := strings.Join([]string{
		titleStyle.Render("✗ " + e.Title),
		"",
		msgStyle.Render(e.Message),
		"",
		hintStyle.Render("esc: dismiss"),
	}, "\n")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(e.Theme.Error).
		Padding(0, 1).
		Width(width).
		Render(content)
}
