package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/omnipg/internal/config"
	"github.com/rebeliceyang/omnipg/internal/db"
	"github.com/rebeliceyang/omnipg/internal/history"
	"github.com/rebeliceyang/omnipg/internal/logging"
	"github.com/rebeliceyang/omnipg/internal/models"
	"github.com/rebeliceyang/omnipg/internal/omnibox"
	"github.com/rebeliceyang/omnipg/internal/ui/components"
	"github.com/rebeliceyang/omnipg/internal/ui/help"
	"github.com/rebeliceyang/omnipg/internal/ui/theme"
	"github.com/rebeliceyang/omnipg/internal/views"
)

// Options wires the application's collaborators
type Options struct {
	Config  *config.Config
	Source  db.Source
	History *history.Store // nil disables history
	Views   *views.Manager // nil disables saved views
	Logger  logging.Logger

	// Controller and Runner default to NewController
	Controller *omnibox.Controller
	Runner     *omnibox.Runner

	// InitialParams are committed before the first page loads
	InitialParams []string
}

// App is the main application model
type App struct {
	ctx     context.Context
	config  *config.Config
	theme   theme.Theme
	logger  logging.Logger
	source  db.Source
	history *history.Store
	views   *views.Manager

	controller    *omnibox.Controller
	omniBox       *components.OmniBox
	initialParams []string

	tablePanel   components.Panel
	tableView    *components.TableView
	rowDetail    *components.RowDetail
	sqlPreview   *components.SQLPreview
	errorOverlay *components.ErrorOverlay

	width    int
	height   int
	showHelp bool
	status   string

	// Committed view and the generation guarding page loads
	view    models.View
	params  []string
	display string
	loadGen uint64

	// Save view prompt
	naming    bool
	nameInput textinput.Model

	// Saved view and history picker
	picking      bool
	pickerKind   pickerKind
	pickerItems  []pickerItem
	pickerIdx    int
	pickerFilter textinput.Model
	filtering    bool
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Title   string
	Message string
}

// PageLoadedMsg is sent when a page of rows has been fetched
type PageLoadedMsg struct {
	Gen      uint64
	Offset   int
	Data     *models.TableData
	Duration time.Duration
	Err      error
}

// StatusMsg sets the status bar text
type StatusMsg string

// New creates a new App instance
func New(ctx context.Context, opts Options) *App {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	th := theme.GetTheme(cfg.UI.Theme)

	c, r := opts.Controller, opts.Runner
	if c == nil || r == nil {
		c, r = NewController(cfg, opts.Source, logger)
	}

	nameInput := textinput.New()
	nameInput.Placeholder = "view name"
	nameInput.Prompt = "Save view as: "
	nameInput.CharLimit = 64

	pickerFilter := textinput.New()
	pickerFilter.Placeholder = "filter"
	pickerFilter.Prompt = "/ "

	tv := components.NewTableView(th)
	if cfg.Data.MaxCellDisplayLength > 0 {
		tv.MaxCellWidth = cfg.Data.MaxCellDisplayLength
	}

	return &App{
		ctx:           ctx,
		config:        cfg,
		theme:         th,
		logger:        logger,
		source:        opts.Source,
		history:       opts.History,
		views:         opts.Views,
		controller:    c,
		omniBox:       components.NewOmniBox(ctx, c, r, th),
		initialParams: opts.InitialParams,
		tablePanel:    components.Panel{Title: opts.Source.Name(), Theme: th},
		tableView:     tv,
		rowDetail:     components.NewRowDetail(th),
		sqlPreview:    components.NewSQLPreview(th),
		errorOverlay:  components.NewErrorOverlay(th),
		nameInput:     nameInput,
		pickerFilter:  pickerFilter,
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	values, unknown := omnibox.Restore(a.controller.Actions(), a.initialParams)
	if len(unknown) > 0 {
		a.logger.Warn(a.ctx, "ignoring unrecognised parameters", "params", unknown)
	}
	// the change notification triggers the first load
	return a.omniBox.SetValues(values)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ErrorMsg:
		a.ShowError(msg.Title, msg.Message)
		return a, nil

	case StatusMsg:
		a.status = string(msg)
		return a, nil

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		return a, nil

	case components.OmniBoxEventMsg:
		return a, a.omniBox.Update(msg)

	case components.OmniBoxChangedMsg:
		return a, a.applyValues(msg.Collections)

	case PageLoadedMsg:
		return a, a.pageLoaded(msg)

	case tea.MouseMsg:
		return a, a.handleMouse(msg)

	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}

	var cmd tea.Cmd
	switch {
	case a.naming:
		a.nameInput, cmd = a.nameInput.Update(msg)
	case a.picking && a.filtering:
		a.pickerFilter, cmd = a.pickerFilter.Update(msg)
	default:
		cmd = a.omniBox.Update(msg)
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	if a.errorOverlay.Visible() {
		switch key {
		case "esc", "enter":
			a.DismissError()
		case "q":
			return tea.Quit
		}
		return nil
	}

	if a.naming {
		return a.handleNameKey(msg)
	}
	if a.picking {
		return a.handlePickerKey(msg)
	}
	if a.showHelp {
		if key == "?" || key == "esc" || key == "q" {
			a.showHelp = false
		}
		return nil
	}

	switch key {
	case "ctrl+s":
		return a.startNaming()
	case "ctrl+y":
		return a.copyQueryString()
	case "ctrl+l":
		return a.omniBox.SetValues(nil)
	}

	if a.omniBox.Focused() {
		cmd := a.omniBox.Update(msg)
		a.layout()
		return cmd
	}
	return a.handleTableKey(key)
}

func (a *App) handleTableKey(key string) tea.Cmd {
	switch key {
	case "q":
		return tea.Quit
	case "?":
		a.showHelp = true
	case "/", ":":
		cmd := a.omniBox.Focus()
		a.layout()
		return cmd
	case "up", "k":
		a.tableView.MoveSelection(-1)
	case "down", "j":
		a.tableView.MoveSelection(1)
	case "left", "h":
		a.tableView.MoveColumn(-1)
	case "right", "l":
		a.tableView.MoveColumn(1)
	case "pgup", "ctrl+u":
		a.tableView.PageUp()
	case "pgdown", "ctrl+d":
		a.tableView.PageDown()
	case "home", "g":
		a.tableView.Home()
	case "end", "G":
		a.tableView.End()
	case "enter":
		a.rowDetail.Toggle()
		a.layout()
	case "p":
		a.sqlPreview.Toggle()
		a.layout()
	case "y":
		if _, val, ok := a.tableView.SelectedCell(); ok {
			if err := clipboard.WriteAll(val); err != nil {
				a.ShowError("Copy Failed", err.Error())
				return nil
			}
			a.status = "Copied cell"
		}
	case "r", "f5":
		return a.reload()
	case "v":
		a.openPicker(pickViews)
	case "H":
		a.openPicker(pickHistory)
	}

	a.syncDetail()
	if a.tableView.NeedsMore() {
		return a.loadPage(len(a.tableView.Rows))
	}
	return nil
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonLeft:
		if hit, cmd := a.omniBox.HandleMouseClick(msg); hit {
			a.layout()
			return cmd
		}
		if a.omniBox.Focused() {
			cmd := a.omniBox.Blur()
			a.layout()
			return cmd
		}
	case tea.MouseButtonWheelUp:
		a.tableView.MoveSelection(-3)
		a.syncDetail()
	case tea.MouseButtonWheelDown:
		a.tableView.MoveSelection(3)
		a.syncDetail()
		if a.tableView.NeedsMore() {
			return a.loadPage(len(a.tableView.Rows))
		}
	}
	return nil
}

// applyValues rebuilds the view from the committed values and reloads
func (a *App) applyValues(collections []omnibox.ActionValueCollection) tea.Cmd {
	view, err := omnibox.BuildView(collections)
	if err != nil {
		a.ShowError("Invalid View", err.Error())
		return nil
	}

	var values []omnibox.ActionValue
	var display []string
	for _, c := range collections {
		values = append(values, c.Values...)
		for _, v := range c.Values {
			display = append(display, c.Action.Keyword()+" "+v.DisplayValue)
		}
	}

	a.view = view
	a.params = omnibox.Params(values)
	a.display = strings.Join(display, ", ")
	a.layout()
	return a.reload()
}

// reload fetches the first page of the current view
func (a *App) reload() tea.Cmd {
	a.loadGen++
	a.tableView.SetData(nil, nil, 0)
	return a.loadPage(0)
}

func (a *App) loadPage(offset int) tea.Cmd {
	a.tableView.Loading = true
	gen, view, src := a.loadGen, a.view, a.source
	pageSize := a.config.Data.PageSize

	sql, args, err := src.PageSQL(view, offset, pageSize)
	if err == nil {
		a.sqlPreview.SetQuery(sql, args)
	}

	return func() tea.Msg {
		start := time.Now()
		data, err := src.Page(a.ctx, view, offset, pageSize)
		return PageLoadedMsg{
			Gen:      gen,
			Offset:   offset,
			Data:     data,
			Duration: time.Since(start),
			Err:      err,
		}
	}
}

func (a *App) pageLoaded(msg PageLoadedMsg) tea.Cmd {
	if msg.Gen != a.loadGen {
		return nil
	}
	a.tableView.Loading = false

	if msg.Err != nil {
		a.logger.Error(a.ctx, "failed to load rows", msg.Err, "source", a.source.Name())
		a.ShowError("Query Failed", fmt.Sprintf("Failed to load rows:\n\n%v", msg.Err))
		return nil
	}

	if msg.Offset == 0 {
		a.tableView.SetData(msg.Data.Columns, msg.Data.Rows, msg.Data.TotalRows)
		a.status = fmt.Sprintf("%d rows in %s", msg.Data.TotalRows, msg.Duration.Round(time.Millisecond))
		a.syncDetail()
		return a.recordHistory(msg.Data.TotalRows, msg.Duration)
	}
	if msg.Offset == len(a.tableView.Rows) {
		a.tableView.AppendRows(msg.Data.Rows, msg.Data.TotalRows)
	}
	return nil
}

func (a *App) recordHistory(total int64, d time.Duration) tea.Cmd {
	if a.history == nil {
		return nil
	}
	store, ctx := a.history, a.ctx
	entry := history.Entry{
		Source:    a.source.Name(),
		Params:    a.params,
		Display:   a.display,
		TotalRows: total,
		Duration:  d,
		AppliedAt: time.Now(),
	}
	return func() tea.Msg {
		if err := store.Add(ctx, entry); err != nil {
			a.logger.Error(ctx, "failed to record history", err, "source", entry.Source)
		}
		return nil
	}
}

func (a *App) syncDetail() {
	row, ok := a.tableView.SelectedRowData()
	if !ok {
		a.rowDetail.SetRow(nil, nil, 0)
		return
	}
	a.rowDetail.SetRow(a.tableView.Columns, row, a.tableView.SelectedCol)
}

func (a *App) copyQueryString() tea.Cmd {
	qs := strings.Join(a.params, "&")
	if qs == "" {
		a.status = "Nothing to copy"
		return nil
	}
	if err := clipboard.WriteAll(qs); err != nil {
		a.ShowError("Copy Failed", err.Error())
		return nil
	}
	a.status = "Copied " + qs
	return nil
}

func (a *App) startNaming() tea.Cmd {
	if a.views == nil {
		a.status = "Saved views are disabled"
		return nil
	}
	if len(a.params) == 0 {
		a.status = "Nothing to save"
		return nil
	}
	a.naming = true
	a.nameInput.SetValue("")
	return a.nameInput.Focus()
}

func (a *App) handleNameKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		a.naming = false
		a.nameInput.Blur()
		return nil
	case "enter":
		name := strings.TrimSpace(a.nameInput.Value())
		if name == "" {
			return nil
		}
		a.naming = false
		a.nameInput.Blur()
		if _, err := a.views.Put(name, a.source.Name(), a.params); err != nil {
			a.ShowError("Save Failed", err.Error())
			return nil
		}
		a.status = fmt.Sprintf("Saved view %q", name)
		return nil
	}

	var cmd tea.Cmd
	a.nameInput, cmd = a.nameInput.Update(msg)
	return cmd
}

// layout distributes the window height between the stacked components
func (a *App) layout() {
	if a.width <= 0 || a.height <= 0 {
		return
	}

	a.omniBox.Width = a.width
	a.rowDetail.Width = a.width
	a.rowDetail.MaxHeight = max(a.height/3, 5)
	a.sqlPreview.Width = a.width
	a.errorOverlay.Width = min(a.width-4, 70)

	used := lipgloss.Height(a.omniBox.View()) + a.rowDetail.Height() + a.sqlPreview.Height()
	// status bar + panel border + panel title
	h := max(a.height-used-4, 3)

	a.tablePanel.Width = a.width - 2
	a.tablePanel.Height = h + 1
	a.tableView.Width = a.width - 2
	a.tableView.Height = h
}

// View implements tea.Model
func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	var body string
	switch {
	case a.errorOverlay.Visible():
		body = lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.errorOverlay.View())
	case a.showHelp:
		body = help.Render(a.width, a.height, a.theme)
	case a.picking:
		body = lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.renderPicker())
	default:
		body = a.renderNormalView()
	}
	return zone.Scan(body)
}

func (a *App) renderNormalView() string {
	a.layout()
	a.tablePanel.Focused = !a.omniBox.Focused()
	a.tablePanel.Content = a.tableView.View()

	parts := []string{a.omniBox.View(), a.tablePanel.View()}
	if v := a.rowDetail.View(); v != "" {
		parts = append(parts, v)
	}
	if v := a.sqlPreview.View(); v != "" {
		parts = append(parts, v)
	}
	parts = append(parts, a.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) renderStatusBar() string {
	left := a.status
	if a.naming {
		left = a.nameInput.View()
	}
	right := "/ omnibox │ ? help │ q quit"

	style := lipgloss.NewStyle().
		Width(a.width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 1)
	return style.Render(a.formatStatusBar(left, right))
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	available := max(a.width-2, 0)
	leftLen := lipgloss.Width(left)
	rightLen := runewidth.StringWidth(right)

	if leftLen+rightLen+1 > available {
		if available <= rightLen {
			return runewidth.Truncate(right, available, "")
		}
		return runewidth.Truncate(left, available-rightLen-1, "…") + " " + right
	}
	return left + strings.Repeat(" ", available-leftLen-rightLen) + right
}

// ShowError displays an error overlay with the given title and message
func (a *App) ShowError(title, message string) {
	a.errorOverlay.SetError(title, message)
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.errorOverlay.Hide()
}
