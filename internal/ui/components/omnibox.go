package components

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/omnipg/internal/omnibox"
	"github.com/rebeliceyang/omnipg/internal/ui/theme"
)

const maxVisibleOptions = 8

// OmniBoxEventMsg carries an omnibox event produced by an effect back into
// the component
type OmniBoxEventMsg struct {
	ID    string
	Event omnibox.Event
}

// OmniBoxChangedMsg reports a new committed set of values
type OmniBoxChangedMsg struct {
	ID          string
	Values      []omnibox.ActionValue
	Collections []omnibox.ActionValueCollection
}

// OmniBox is the filter/search/sort input above the table
type OmniBox struct {
	Input textinput.Model
	Theme theme.Theme
	Width int

	ctx        context.Context
	controller *omnibox.Controller
	runner     *omnibox.Runner
	state      omnibox.State
}

// NewOmniBox creates an OmniBox driven by c; effects run on r
func NewOmniBox(ctx context.Context, c *omnibox.Controller, r *omnibox.Runner, th theme.Theme) *OmniBox {
	ti := textinput.New()
	ti.Placeholder = "filter, search or sort..."
	ti.Prompt = "❯ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(th.Keyword)
	ti.TextStyle = lipgloss.NewStyle().Foreground(th.Foreground)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(th.Metadata)

	return &OmniBox{
		Input:      ti,
		Theme:      th,
		Width:      80,
		ctx:        ctx,
		controller: c,
		runner:     r,
		state:      c.Init(),
	}
}

// State returns the current omnibox state
func (o *OmniBox) State() omnibox.State {
	return o.state
}

// Focused reports whether the input has keyboard focus
func (o *OmniBox) Focused() bool {
	return o.state.IsFocused
}

// Focus gives the input keyboard focus and opens the option list
func (o *OmniBox) Focus() tea.Cmd {
	cmd := o.Input.Focus()
	return tea.Batch(cmd, o.apply(omnibox.Focused{}))
}

// Blur removes focus, completing any pending input
func (o *OmniBox) Blur() tea.Cmd {
	o.Input.Blur()
	return o.apply(omnibox.Blurred{})
}

// SetValues replaces the committed values, e.g. from a saved view
func (o *OmniBox) SetValues(values []omnibox.ActionValue) tea.Cmd {
	return o.apply(omnibox.ValuesReplaced{Values: values})
}

// Update handles keys and effect results
func (o *OmniBox) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case OmniBoxEventMsg:
		if msg.ID != o.state.ID || msg.Event == nil {
			return nil
		}
		return o.apply(msg.Event)

	case tea.KeyMsg:
		if !o.state.IsFocused {
			return nil
		}
		switch msg.String() {
		case "tab":
			return o.apply(omnibox.KeyPressed{Key: omnibox.KeyTab})
		case "enter":
			return o.apply(omnibox.KeyPressed{Key: omnibox.KeyEnter})
		case "up", "ctrl+p":
			return o.apply(omnibox.KeyPressed{Key: omnibox.KeyUp})
		case "down", "ctrl+n":
			return o.apply(omnibox.KeyPressed{Key: omnibox.KeyDown})
		case "esc":
			if o.state.IsOpen {
				return o.apply(omnibox.KeyPressed{Key: omnibox.KeyEscape})
			}
			return o.Blur()
		case "backspace":
			if o.Input.Value() == "" {
				return o.apply(omnibox.KeyPressed{Key: omnibox.KeyBackspace})
			}
		}

		before := o.Input.Value()
		var cmd tea.Cmd
		o.Input, cmd = o.Input.Update(msg)
		if after := o.Input.Value(); after != before {
			return tea.Batch(cmd, o.apply(omnibox.InputChanged{Value: after}))
		}
		return cmd
	}

	var cmd tea.Cmd
	o.Input, cmd = o.Input.Update(msg)
	return cmd
}

// HandleMouseClick handles clicks on chips and options. It reports whether
// the click landed inside the omnibox.
func (o *OmniBox) HandleMouseClick(msg tea.MouseMsg) (bool, tea.Cmd) {
	for i := range o.state.ActionValues {
		if zone.Get(o.zoneID("remove", i)).InBounds(msg) {
			return true, o.apply(omnibox.ValueRemoved{Index: i})
		}
		if zone.Get(o.zoneID("value", i)).InBounds(msg) {
			return true, o.apply(omnibox.ValueClicked{Index: i})
		}
	}
	if o.state.IsOpen {
		for i := range o.state.Options {
			if zone.Get(o.zoneID("opt", i)).InBounds(msg) {
				return true, o.apply(omnibox.OptionClicked{Index: i})
			}
		}
	}
	if zone.Get(o.zoneID("input", 0)).InBounds(msg) {
		if o.state.IsFocused {
			return true, nil
		}
		return true, o.Focus()
	}
	return false, nil
}

// apply reduces ev and turns the effects into commands
func (o *OmniBox) apply(ev omnibox.Event) tea.Cmd {
	var effects []omnibox.Effect
	o.state, effects = o.controller.Reduce(o.state, ev)

	if o.Input.Value() != o.state.InputValue {
		o.Input.SetValue(o.state.InputValue)
		o.Input.CursorEnd()
	}

	var cmds []tea.Cmd
	switch {
	case o.state.IsFocused && !o.Input.Focused():
		cmds = append(cmds, o.Input.Focus())
	case !o.state.IsFocused && o.Input.Focused():
		o.Input.Blur()
	}

	id := o.state.ID
	for _, eff := range effects {
		switch e := eff.(type) {
		case omnibox.Changed:
			cmds = append(cmds, func() tea.Msg {
				return OmniBoxChangedMsg{ID: id, Values: e.Values, Collections: e.Collections}
			})
		default:
			ctx, runner := o.ctx, o.runner
			cmds = append(cmds, func() tea.Msg {
				out := runner.Execute(ctx, e)
				if out == nil {
					return nil
				}
				return OmniBoxEventMsg{ID: id, Event: out}
			})
		}
	}
	return tea.Batch(cmds...)
}

func (o *OmniBox) zoneID(kind string, i int) string {
	return fmt.Sprintf("%s-%s-%d", o.state.ID, kind, i)
}

// View renders the chips, the input line and the option list
func (o *OmniBox) View() string {
	var lines []string
	if chips := o.renderChips(); chips != "" {
		lines = append(lines, chips)
	}
	lines = append(lines, zone.Mark(o.zoneID("input", 0), o.renderInput()))
	if o.state.IsOpen && o.state.IsFocused {
		if opts := o.renderOptions(); opts != "" {
			lines = append(lines, opts)
		}
	}

	borderColor := o.Theme.Border
	if o.state.IsFocused {
		borderColor = o.Theme.BorderFocused
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(max(o.Width-2, 10)).
		Render(strings.Join(lines, "\n"))
}

func (o *OmniBox) renderChips() string {
	if len(o.state.ActionValues) == 0 {
		return ""
	}
	chipStyle := lipgloss.NewStyle().
		Foreground(o.Theme.Background).
		Background(o.Theme.Value).
		Padding(0, 1)
	removeStyle := lipgloss.NewStyle().
		Foreground(o.Theme.Error).
		Padding(0, 1)
	keywordStyle := lipgloss.NewStyle().Bold(true)

	chips := make([]string, 0, len(o.state.ActionValues))
	for i, v := range o.state.ActionValues {
		label := v.DisplayValue
		if v.Action != nil {
			label = keywordStyle.Render(v.Action.Keyword()) + " " + label
		}
		chips = append(chips,
			zone.Mark(o.zoneID("value", i), chipStyle.Render(label))+
				zone.Mark(o.zoneID("remove", i), removeStyle.Render("×")))
	}
	return lipgloss.NewStyle().Width(max(o.Width-4, 10)).Render(strings.Join(chips, " "))
}

func (o *OmniBox) renderInput() string {
	line := o.Input.View()
	preview := o.state.PreviewInputValue
	if !o.state.IsOpen || preview == "" || preview == o.state.InputValue {
		return line
	}

	ghost := lipgloss.NewStyle().Foreground(o.Theme.Ghost)
	if rest, ok := strings.CutPrefix(preview, o.state.InputValue); ok {
		return line + ghost.Render(rest)
	}
	return line + ghost.Render("  → "+preview)
}

func (o *OmniBox) renderOptions() string {
	opts := o.state.Options
	if len(opts) == 0 {
		return ""
	}

	start := 0
	if o.state.FocusedIndex >= maxVisibleOptions {
		start = o.state.FocusedIndex - maxVisibleOptions + 1
	}
	end := min(start+maxVisibleOptions, len(opts))

	width := max(o.Width-8, 10)
	normal := lipgloss.NewStyle().Foreground(o.Theme.Foreground)
	focused := lipgloss.NewStyle().Foreground(o.Theme.OptionActive).Bold(true)
	action := lipgloss.NewStyle().Foreground(o.Theme.Keyword)
	hint := lipgloss.NewStyle().Foreground(o.Theme.Metadata).Italic(true)

	var lines []string
	for i := start; i < end; i++ {
		opt := opts[i]
		marker := "  "
		style := normal
		if opt.IsAction {
			style = action
		}
		if i == o.state.FocusedIndex {
			marker = "▸ "
			style = focused
		}

		label := runewidth.Truncate(opt.Label, width, "…")
		text := marker + style.Render(label)
		if opt.NextLabel != "" {
			text += " " + hint.Render(opt.NextLabel)
		}
		if !opt.Selectable {
			text = hint.Render(marker + label)
		}
		lines = append(lines, zone.Mark(o.zoneID("opt", i), text))
	}

	if more := len(opts) - end; more > 0 {
		lines = append(lines, hint.Render(fmt.Sprintf("  %d more", more)))
	}
	return strings.Join(lines, "\n")
}
