package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/omnipg/internal/history"
	"github.com/rebeliceyang/omnipg/internal/omnibox"
)

type pickerKind int

const (
	pickViews pickerKind = iota
	pickHistory
)

// historyPickLimit caps the entries listed by the history picker
const historyPickLimit = 50

// pickerItem is one row of the saved view or history picker
type pickerItem struct {
	viewID string
	title  string
	detail string
	params []string
}

func (a *App) openPicker(kind pickerKind) {
	switch {
	case kind == pickViews && a.views == nil:
		a.status = "Saved views are disabled"
		return
	case kind == pickHistory && a.history == nil:
		a.status = "History is disabled"
		return
	}

	a.pickerKind = kind
	a.pickerIdx = 0
	a.filtering = false
	a.pickerFilter.Blur()
	a.pickerFilter.SetValue("")
	a.refreshPicker()

	if len(a.pickerItems) == 0 {
		if kind == pickViews {
			a.status = "No saved views for " + a.source.Name()
		} else {
			a.status = "No history for " + a.source.Name()
		}
		return
	}
	a.picking = true
}

// refreshPicker lists the items of the open picker matching the filter text
func (a *App) refreshPicker() {
	source := a.source.Name()
	query := strings.TrimSpace(a.pickerFilter.Value())

	var items []pickerItem
	switch a.pickerKind {
	case pickViews:
		list := a.views.ForSource(source)
		if query != "" {
			list = nil
			for _, v := range a.views.Search(query) {
				if v.Source == source {
					list = append(list, v)
				}
			}
		}
		for _, v := range list {
			items = append(items, pickerItem{
				viewID: v.ID,
				title:  v.Name,
				detail: strings.Join(v.Params, "&"),
				params: v.Params,
			})
		}

	case pickHistory:
		var entries []history.Entry
		var err error
		if query == "" {
			entries, err = a.history.Recent(a.ctx, source, historyPickLimit)
		} else {
			entries, err = a.history.Search(a.ctx, source, query, historyPickLimit)
		}
		if err != nil {
			a.logger.Error(a.ctx, "failed to read history", err, "source", source)
		}
		for _, e := range entries {
			title := e.Display
			if title == "" {
				title = "(all rows)"
			}
			items = append(items, pickerItem{
				title:  title,
				detail: fmt.Sprintf("%d rows · %s", e.TotalRows, e.AppliedAt.Format("2006-01-02 15:04")),
				params: e.Params,
			})
		}
	}

	a.pickerItems = items
	a.pickerIdx = max(min(a.pickerIdx, len(items)-1), 0)
}

func (a *App) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if a.filtering {
		switch key {
		case "esc":
			a.filtering = false
			a.pickerFilter.Blur()
			a.pickerFilter.SetValue("")
			a.refreshPicker()
			return nil
		case "enter":
			a.filtering = false
			a.pickerFilter.Blur()
			return a.openPicked()
		case "up", "down":
			a.movePicker(key)
			return nil
		}
		var cmd tea.Cmd
		a.pickerFilter, cmd = a.pickerFilter.Update(msg)
		a.refreshPicker()
		return cmd
	}

	switch key {
	case "esc", "q":
		a.picking = false
	case "/":
		a.filtering = true
		return a.pickerFilter.Focus()
	case "up", "k", "down", "j":
		a.movePicker(key)
	case "d":
		if a.pickerKind != pickViews || len(a.pickerItems) == 0 {
			return nil
		}
		item := a.pickerItems[a.pickerIdx]
		if err := a.views.Delete(item.viewID); err != nil {
			a.ShowError("Delete Failed", err.Error())
			return nil
		}
		a.refreshPicker()
		if len(a.pickerItems) == 0 && a.pickerFilter.Value() == "" {
			a.picking = false
		}
	case "enter":
		return a.openPicked()
	}
	return nil
}

func (a *App) movePicker(key string) {
	n := len(a.pickerItems)
	if n == 0 {
		return
	}
	if key == "up" || key == "k" {
		a.pickerIdx = (a.pickerIdx - 1 + n) % n
	} else {
		a.pickerIdx = (a.pickerIdx + 1) % n
	}
}

// openPicked commits the params of the selected item
func (a *App) openPicked() tea.Cmd {
	if len(a.pickerItems) == 0 {
		return nil
	}
	item := a.pickerItems[a.pickerIdx]
	a.picking = false

	if item.viewID != "" {
		if err := a.views.RecordUsage(item.viewID); err != nil {
			a.logger.Error(a.ctx, "failed to record view usage", err, "view", item.title)
		}
	}
	values, unknown := omnibox.Restore(a.controller.Actions(), item.params)
	if len(unknown) > 0 {
		a.logger.Warn(a.ctx, "picked view has unrecognised parameters", "view", item.title, "params", unknown)
	}
	a.status = fmt.Sprintf("Opened %q", item.title)
	return a.omniBox.SetValues(values)
}

func (a *App) renderPicker() string {
	titleStyle := lipgloss.NewStyle().Foreground(a.theme.Info).Bold(true)
	selStyle := lipgloss.NewStyle().Foreground(a.theme.OptionActive).Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(a.theme.Metadata)

	title, hint := "Saved views", "enter: open │ /: filter │ d: delete │ esc: close"
	if a.pickerKind == pickHistory {
		title, hint = "Recent views", "enter: open │ /: filter │ esc: close"
	}

	lines := []string{titleStyle.Render(title + " · " + a.source.Name())}
	if a.filtering || a.pickerFilter.Value() != "" {
		lines = append(lines, a.pickerFilter.View())
	}
	lines = append(lines, "")

	for i, item := range a.pickerItems {
		marker, style := "  ", lipgloss.NewStyle()
		if i == a.pickerIdx {
			marker, style = "▸ ", selStyle
		}
		lines = append(lines, marker+style.Render(item.title)+" "+metaStyle.Render(item.detail))
	}
	if len(a.pickerItems) == 0 {
		lines = append(lines, metaStyle.Render("  No matches"))
	}
	lines = append(lines, "", metaStyle.Render(hint))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.theme.BorderFocused).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}
