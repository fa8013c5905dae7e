package components

import (
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/omnipg/internal/db/query"
	"github.com/rebeliceyang/omnipg/internal/jsonb"
	"github.com/rebeliceyang/omnipg/internal/ui/theme"
)

// RowDetail shows every column of the selected row untruncated
type RowDetail struct {
	Width     int
	MaxHeight int
	Visible   bool
	Theme     theme.Theme

	columns []string
	row     []string
	focus   int // column highlighted to match the table's selected column

	scrollY int
	lines   []string
	style   lipgloss.Style
}

// NewRowDetail creates a hidden row detail pane
func NewRowDetail(th theme.Theme) *RowDetail {
	return &RowDetail{
		Width:     80,
		MaxHeight: 12,
		Theme:     th,
		style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(th.Border).
			Padding(0, 1),
	}
}

// SetRow sets the row to display and the column to highlight
func (d *RowDetail) SetRow(columns, row []string, focus int) {
	if focus == d.focus && slices.Equal(columns, d.columns) && slices.Equal(row, d.row) {
		return
	}
	d.columns = columns
	d.row = row
	d.focus = focus
	d.scrollY = 0
	d.lines = nil
}

// Toggle shows or hides the pane
func (d *RowDetail) Toggle() {
	d.Visible = !d.Visible
	d.lines = nil
}

// Height returns the rendered height, zero when hidden
func (d *RowDetail) Height() int {
	if !d.Visible {
		return 0
	}
	return d.MaxHeight
}

func (d *RowDetail) contentWidth() int {
	return max(d.Width-d.style.GetHorizontalFrameSize(), 10)
}

func (d *RowDetail) contentHeight() int {
	// -1 for the title
	return max(d.MaxHeight-d.style.GetVerticalFrameSize()-1, 1)
}

// format lays out "column: value" blocks, pretty-printing JSON values
func (d *RowDetail) format() {
	width := d.contentWidth()
	labelWidth := 0
	for _, c := range d.columns {
		labelWidth = max(labelWidth, runewidth.StringWidth(c))
	}
	labelWidth = min(labelWidth, width/3)

	labelStyle := lipgloss.NewStyle().Foreground(d.Theme.JSONKey)
	focusStyle := labelStyle.Bold(true).Underline(true)
	nullStyle := lipgloss.NewStyle().Foreground(d.Theme.Null).Italic(true)
	indent := strings.Repeat(" ", labelWidth+2)

	d.lines = d.lines[:0]
	for i, col := range d.columns {
		value := ""
		if i < len(d.row) {
			value = d.row[i]
		}

		style := labelStyle
		if i == d.focus {
			style = focusStyle
		}
		label := style.Render(runewidth.FillRight(runewidth.Truncate(col, labelWidth, "…"), labelWidth)) + ": "

		if value == query.NullText {
			d.lines = append(d.lines, label+nullStyle.Render(value))
			continue
		}
		for j, line := range wrapText(jsonb.Pretty(value), width-labelWidth-2) {
			if j == 0 {
				d.lines = append(d.lines, label+line)
			} else {
				d.lines = append(d.lines, indent+line)
			}
		}
	}
}

// wrapText wraps text to fit within maxWidth display cells
func wrapText(text string, maxWidth int) []string {
	maxWidth = max(maxWidth, 1)
	var result []string
	for _, line := range strings.Split(text, "\n") {
		if runewidth.StringWidth(line) <= maxWidth {
			result = append(result, line)
			continue
		}

		var current strings.Builder
		currentWidth := 0
		for _, r := range line {
			rw := runewidth.RuneWidth(r)
			if currentWidth+rw > maxWidth {
				result = append(result, current.String())
				current.Reset()
				currentWidth = 0
			}
			current.WriteRune(r)
			currentWidth += rw
		}
		if current.Len() > 0 {
			result = append(result, current.String())
		}
	}
	return result
}

// ScrollUp scrolls content up
func (d *RowDetail) ScrollUp() {
	if d.scrollY > 0 {
		d.scrollY--
	}
}

// ScrollDown scrolls content down
func (d *RowDetail) ScrollDown() {
	if d.lines == nil {
		d.format()
	}
	if d.scrollY < max(len(d.lines)-d.contentHeight(), 0) {
		d.scrollY++
	}
}

// FocusedValue returns the value of the highlighted column
func (d *RowDetail) FocusedValue() (string, bool) {
	if d.focus < 0 || d.focus >= len(d.row) {
		return "", false
	}
	return d.row[d.focus], true
}

// CopyValue copies the highlighted value to the clipboard
func (d *RowDetail) CopyValue() error {
	v, ok := d.FocusedValue()
	if !ok {
		return nil
	}
	return clipboard.WriteAll(v)
}

// View renders the pane
func (d *RowDetail) View() string {
	if !d.Visible {
		return ""
	}
	if d.lines == nil {
		d.format()
	}

	titleStyle := lipgloss.NewStyle().Foreground(d.Theme.Info).Bold(true)
	parts := []string{titleStyle.Render("Row")}
	if len(d.columns) == 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(d.Theme.Metadata).Render("No row selected"))
	}

	end := min(d.scrollY+d.contentHeight(), len(d.lines))
	for i := d.scrollY; i < end; i++ {
		parts = append(parts, d.lines[i])
	}

	inner := max(d.MaxHeight-d.style.GetVerticalFrameSize(), 1)
	return d.style.
		Width(d.Width - d.style.GetHorizontalFrameSize()).
		Height(inner).
		MaxHeight(d.MaxHeight).
		Render(strings.Join(parts, "\n"))
}
