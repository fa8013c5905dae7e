package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/omnipg/internal/ui/theme"
)

// SQLPreview shows the statement behind the current page
type SQLPreview struct {
	Width   int
	Visible bool
	Theme   theme.Theme

	sql         string
	args        []any
	highlighted string

	chromaStyle     *chroma.Style
	chromaFormatter chroma.Formatter
}

// NewSQLPreview creates a hidden SQL preview
func NewSQLPreview(th theme.Theme) *SQLPreview {
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	return &SQLPreview{
		Width:           80,
		Theme:           th,
		chromaStyle:     style,
		chromaFormatter: formatter,
	}
}

// SetQuery sets the statement and its arguments
func (p *SQLPreview) SetQuery(sql string, args []any) {
	if sql == p.sql && fmt.Sprint(args) == fmt.Sprint(p.args) {
		return
	}
	p.sql = sql
	p.args = args
	p.highlighted = ""
}

// SQL returns the current statement
func (p *SQLPreview) SQL() string {
	return p.sql
}

// Toggle shows or hides the preview
func (p *SQLPreview) Toggle() {
	p.Visible = !p.Visible
}

// CopySQL copies the statement to the clipboard
func (p *SQLPreview) CopySQL() error {
	return clipboard.WriteAll(p.sql)
}

// Highlight renders sql with terminal colors, returning it unchanged when
// no lexer is available
func (p *SQLPreview) Highlight(sql string) string {
	lexer := lexers.Get("postgresql")
	if lexer == nil {
		lexer = lexers.Get("sql")
	}
	if lexer == nil {
		return sql
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, sql)
	if err != nil {
		return sql
	}

	var buf bytes.Buffer
	if err := p.chromaFormatter.Format(&buf, p.chromaStyle, iterator); err != nil {
		return sql
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Height returns the rendered height, zero when hidden
func (p *SQLPreview) Height() int {
	if !p.Visible {
		return 0
	}
	return lipgloss.Height(p.View())
}

// View renders the preview
func (p *SQLPreview) View() string {
	if !p.Visible {
		return ""
	}
	if p.highlighted == "" && p.sql != "" {
		p.highlighted = p.Highlight(p.sql)
	}

	titleStyle := lipgloss.NewStyle().Foreground(p.Theme.Info).Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(p.Theme.Metadata)

	parts := []string{titleStyle.Render("SQL")}
	if p.sql == "" {
		parts = append(parts, metaStyle.Render("No query yet"))
	} else {
		parts = append(parts, lipgloss.NewStyle().Width(max(p.Width-4, 10)).Render(p.highlighted))
	}
	if len(p.args) > 0 {
		args := make([]string, len(p.args))
		for i, a := range p.args {
			args[i] = fmt.Sprintf("%d=%v", i+1, a)
		}
		parts = append(parts, metaStyle.Render("args: "+strings.Join(args, ", ")))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Theme.Border).
		Padding(0, 1).
		Width(max(p.Width-2, 10)).
		Render(strings.Join(parts, "\n"))
}
