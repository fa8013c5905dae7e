package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/omnipg/internal/db/query"
	"github.com/rebeliceyang/omnipg/internal/jsonb"
	"github.com/rebeliceyang/omnipg/internal/ui/theme"
)

const (
	minColumnWidth = 6
	columnGap      = " │ "
)

// TableView displays a page of rows with virtual scrolling
type TableView struct {
	Columns []string
	Rows    [][]string
	Width   int
	Height  int
	Theme   theme.Theme

	// MaxCellWidth caps a column's width; longer cells are truncated
	MaxCellWidth int

	// Virtual scrolling state
	TopRow      int
	VisibleRows int
	SelectedRow int
	SelectedCol int
	LeftCol     int
	TotalRows   int64
	Loading     bool

	ColumnWidths []int
}

// NewTableView creates a new table view
func NewTableView(th theme.Theme) *TableView {
	return &TableView{
		Columns:      []string{},
		Rows:         [][]string{},
		ColumnWidths: []int{},
		MaxCellWidth: 50,
		Theme:        th,
	}
}

// SetData replaces the rows and resets the selection
func (tv *TableView) SetData(columns []string, rows [][]string, totalRows int64) {
	tv.Columns = columns
	tv.Rows = rows
	tv.TotalRows = totalRows
	tv.TopRow = 0
	tv.SelectedRow = 0
	if tv.SelectedCol >= len(columns) {
		tv.SelectedCol = 0
		tv.LeftCol = 0
	}
	tv.calculateColumnWidths()
}

// AppendRows adds the next page of rows
func (tv *TableView) AppendRows(rows [][]string, totalRows int64) {
	tv.Rows = append(tv.Rows, rows...)
	tv.TotalRows = totalRows
	tv.calculateColumnWidths()
}

// NeedsMore reports whether the selection is close enough to the end of
// the loaded rows to fetch the next page
func (tv *TableView) NeedsMore() bool {
	return !tv.Loading &&
		int64(len(tv.Rows)) < tv.TotalRows &&
		tv.SelectedRow >= len(tv.Rows)-10
}

// SelectedCell returns the column name and value under the cursor
func (tv *TableView) SelectedCell() (string, string, bool) {
	if tv.SelectedRow < 0 || tv.SelectedRow >= len(tv.Rows) {
		return "", "", false
	}
	row := tv.Rows[tv.SelectedRow]
	if tv.SelectedCol < 0 || tv.SelectedCol >= len(row) || tv.SelectedCol >= len(tv.Columns) {
		return "", "", false
	}
	return tv.Columns[tv.SelectedCol], row[tv.SelectedCol], true
}

// SelectedRowData returns the row under the cursor
func (tv *TableView) SelectedRowData() ([]string, bool) {
	if tv.SelectedRow < 0 || tv.SelectedRow >= len(tv.Rows) {
		return nil, false
	}
	return tv.Rows[tv.SelectedRow], true
}

// calculateColumnWidths sizes columns to their widest cell
func (tv *TableView) calculateColumnWidths() {
	tv.ColumnWidths = make([]int, len(tv.Columns))

	for i, col := range tv.Columns {
		tv.ColumnWidths[i] = runewidth.StringWidth(col)
	}

	for _, row := range tv.Rows {
		for i, cell := range row {
			if i >= len(tv.ColumnWidths) {
				break
			}
			if w := runewidth.StringWidth(cell); w > tv.ColumnWidths[i] {
				tv.ColumnWidths[i] = w
			}
		}
	}

	maxWidth := tv.MaxCellWidth
	if maxWidth < minColumnWidth {
		maxWidth = 50
	}
	for i := range tv.ColumnWidths {
		tv.ColumnWidths[i] = min(max(tv.ColumnWidths[i], minColumnWidth), maxWidth)
	}
}

// visibleColumns returns the columns that fit from LeftCol on
func (tv *TableView) visibleColumns() []int {
	var cols []int
	used := 1
	for i := tv.LeftCol; i < len(tv.Columns); i++ {
		w := tv.ColumnWidths[i] + runewidth.StringWidth(columnGap)
		if len(cols) > 0 && tv.Width > 0 && used+w > tv.Width {
			break
		}
		cols = append(cols, i)
		used += w
	}
	return cols
}

// View renders the table
func (tv *TableView) View() string {
	if len(tv.Columns) == 0 {
		msg := "No data"
		if tv.Loading {
			msg = "Loading..."
		}
		return lipgloss.NewStyle().Foreground(tv.Theme.Metadata).Render(msg)
	}

	cols := tv.visibleColumns()
	var b strings.Builder

	b.WriteString(tv.renderHeader(cols))
	b.WriteString("\n")
	b.WriteString(tv.renderSeparator(cols))
	b.WriteString("\n")

	// Header + separator + status
	tv.VisibleRows = max(tv.Height-3, 1)
	tv.clampScroll()

	endRow := min(tv.TopRow+tv.VisibleRows, len(tv.Rows))
	for i := tv.TopRow; i < endRow; i++ {
		b.WriteString(tv.renderRow(tv.Rows[i], cols, i == tv.SelectedRow))
		b.WriteString("\n")
	}
	for i := endRow - tv.TopRow; i < tv.VisibleRows; i++ {
		b.WriteString("\n")
	}

	b.WriteString(tv.renderStatus())
	return b.String()
}

func (tv *TableView) renderHeader(cols []int) string {
	parts := make([]string, 0, len(cols))
	for _, i := range cols {
		parts = append(parts, pad(tv.Columns[i], tv.ColumnWidths[i]))
	}
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(tv.Theme.TableHeader)
	return headerStyle.Render(" " + strings.Join(parts, columnGap) + " ")
}

func (tv *TableView) renderSeparator(cols []int) string {
	parts := make([]string, 0, len(cols))
	for _, i := range cols {
		parts = append(parts, strings.Repeat("─", tv.ColumnWidths[i]))
	}
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Border).
		Render("─" + strings.Join(parts, "─┼─") + "─")
}

func (tv *TableView) renderRow(row []string, cols []int, selected bool) string {
	nullStyle := lipgloss.NewStyle().Foreground(tv.Theme.Null).Italic(true)
	cellStyle := lipgloss.NewStyle().Reverse(true)

	parts := make([]string, 0, len(cols))
	for _, i := range cols {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		width := tv.ColumnWidths[i]
		if jsonb.IsJSON(cell) {
			cell = jsonb.Truncate(cell, width)
		}
		text := pad(cell, width)
		switch {
		case selected && i == tv.SelectedCol:
			text = cellStyle.Render(text)
		case cell == query.NullText:
			text = nullStyle.Render(text)
		}
		parts = append(parts, text)
	}

	line := " " + strings.Join(parts, columnGap) + " "
	if selected {
		return lipgloss.NewStyle().
			Background(tv.Theme.TableRowSelected).
			Bold(true).
			Render(line)
	}
	return line
}

func (tv *TableView) renderStatus() string {
	status := fmt.Sprintf(" %d of %d rows", min(int64(len(tv.Rows)), tv.TotalRows), tv.TotalRows)
	if len(tv.Rows) > 0 {
		status = fmt.Sprintf(" row %d, %d of %d loaded", tv.SelectedRow+1, len(tv.Rows), tv.TotalRows)
	}
	if tv.Loading {
		status += " · loading"
	}
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Metadata).
		Italic(true).
		Render(status)
}

// pad fits s into width display cells
func pad(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// MoveSelection moves the selection up or down
func (tv *TableView) MoveSelection(delta int) {
	if len(tv.Rows) == 0 {
		return
	}
	tv.SelectedRow = min(max(tv.SelectedRow+delta, 0), len(tv.Rows)-1)
	tv.clampScroll()
}

// MoveColumn moves the selected column left or right
func (tv *TableView) MoveColumn(delta int) {
	if len(tv.Columns) == 0 {
		return
	}
	tv.SelectedCol = min(max(tv.SelectedCol+delta, 0), len(tv.Columns)-1)
	if tv.SelectedCol < tv.LeftCol {
		tv.LeftCol = tv.SelectedCol
	}
	for tv.LeftCol < tv.SelectedCol {
		cols := tv.visibleColumns()
		if len(cols) == 0 || cols[len(cols)-1] >= tv.SelectedCol {
			break
		}
		tv.LeftCol++
	}
}

// PageUp moves the selection one screen up
func (tv *TableView) PageUp() {
	tv.MoveSelection(-max(tv.VisibleRows, 1))
}

// PageDown moves the selection one screen down
func (tv *TableView) PageDown() {
	tv.MoveSelection(max(tv.VisibleRows, 1))
}

// Home selects the first row
func (tv *TableView) Home() {
	tv.MoveSelection(-len(tv.Rows))
}

// End selects the last loaded row
func (tv *TableView) End() {
	tv.MoveSelection(len(tv.Rows))
}

// clampScroll keeps the selected row inside the visible window
func (tv *TableView) clampScroll() {
	visible := max(tv.VisibleRows, 1)
	if tv.SelectedRow < tv.TopRow {
		tv.TopRow = tv.SelectedRow
	}
	if tv.SelectedRow >= tv.TopRow+visible {
		tv.TopRow = tv.SelectedRow - visible + 1
	}
	if tv.TopRow < 0 {
		tv.TopRow = 0
	}
}
