package omnibox

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config configures a Controller
type Config struct {
	Actions []Action

	// BackspaceRemoves reopens the last value on backspace in an empty input
	BackspaceRemoves bool
	CloseOnComplete  bool

	// Debounce delays option fetches of the default action; zero disables
	Debounce   time.Duration
	MaxOptions int

	NewID func() string
}

// State is the complete OmniBox state. It is a value: Reduce never mutates
// the state it is given.
type State struct {
	ID                  string
	InputValue          string
	ActiveAction        Action
	ActionValues        []ActionValue
	Options             []ActionOption
	FocusedIndex        int
	IsOpen              bool
	IsFocused           bool
	PreviewInputValue   string
	UniqueValues        []string
	UniqueValuesLoading bool

	uniqueKey     string
	actionOptions []ActionOption
	gen           uint64 // input generation, guards completions and debounce
	optionsGen    uint64
}

// Collections groups the committed values by action
func (s State) Collections() []ActionValueCollection {
	return Collect(s.ActionValues)
}

// FocusedOption returns the option under the keyboard focus
func (s State) FocusedOption() (ActionOption, bool) {
	if s.FocusedIndex < 0 || s.FocusedIndex >= len(s.Options) {
		return ActionOption{}, false
	}
	return s.Options[s.FocusedIndex], true
}

// Controller holds the OmniBox configuration and reduces events to states
type Controller struct {
	cfg Config
	def Action
}

// NewController creates a controller; ids default to random uuids
func NewController(cfg Config) *Controller {
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Controller{
		cfg: cfg,
		def: DefaultAction(cfg.Actions),
	}
}

// Actions returns the configured actions
func (c *Controller) Actions() []Action {
	return c.cfg.Actions
}

// Init returns the initial state
func (c *Controller) Init() State {
	return State{
		ID:           c.cfg.NewID(),
		FocusedIndex: -1,
	}
}

// Reduce applies ev to s
func (c *Controller) Reduce(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case InputChanged:
		return c.inputChanged(s, e.Value)
	case KeyPressed:
		return c.keyPressed(s, e.Key)
	case OptionClicked:
		return c.optionClicked(s, e.Index)
	case ValueClicked:
		return c.reopen(s, e.Index)
	case ValueRemoved:
		if e.Index < 0 || e.Index >= len(s.ActionValues) {
			return s, nil
		}
		s.ActionValues = without(s.ActionValues, e.Index)
		return s, []Effect{changed(s)}
	case ValuesReplaced:
		s.ActionValues = append([]ActionValue(nil), e.Values...)
		return s, []Effect{changed(s)}
	case Focused:
		s.IsFocused = true
		s.IsOpen = true
		return c.refresh(s)
	case Blurred:
		return c.blurred(s)
	case OptionsFetched:
		if e.Gen != s.optionsGen {
			return s, nil
		}
		s.Options = append(append([]ActionOption(nil), s.actionOptions...), e.Options...)
		s.FocusedIndex = -1
		s.PreviewInputValue = ""
		return s, nil
	case ActionCompleted:
		return c.completed(s, e)
	case UniqueValuesFetched:
		return c.uniqueValuesFetched(s, e)
	case DebounceElapsed:
		if e.Gen != s.gen {
			return s, nil
		}
		active, tokens, _ := c.resolve(s.InputValue)
		if active == nil {
			return s, nil
		}
		s, req := c.optionsRequest(s, active, tokens)
		return s, []Effect{req}
	}
	return s, nil
}

func (c *Controller) inputChanged(s State, value string) (State, []Effect) {
	wasEmpty := strings.TrimSpace(s.InputValue) == ""
	s.InputValue = value
	s.FocusedIndex = -1
	s.PreviewInputValue = ""
	s.IsOpen = true

	s, effects := c.refresh(s)
	if !wasEmpty && strings.TrimSpace(value) == "" {
		effects = append(effects, changed(s))
	}
	return s, effects
}

func (c *Controller) keyPressed(s State, key Key) (State, []Effect) {
	switch key {
	case KeyUp, KeyDown:
		n := len(s.Options)
		if n == 0 {
			return s, nil
		}
		idx := s.FocusedIndex
		if key == KeyDown {
			idx = (idx + 1) % n
		} else if idx <= 0 {
			idx = n - 1
		} else {
			idx--
		}
		s.FocusedIndex = idx
		s.IsOpen = true
		s.PreviewInputValue, _ = c.applyOption(s, s.Options[idx])
		return s, nil
	case KeyTab:
		if _, ok := s.FocusedOption(); ok && s.IsOpen {
			return c.optionClicked(s, s.FocusedIndex)
		}
		return s, nil
	case KeyEnter:
		// a closed dropdown keeps its focus but Enter commits the input
		if _, ok := s.FocusedOption(); ok && s.IsOpen {
			return c.optionClicked(s, s.FocusedIndex)
		}
		s, effects, _ := c.complete(s, TriggerEnter)
		return s, effects
	case KeyEscape:
		s.IsOpen = false
		return s, nil
	case KeyBackspace:
		if s.InputValue == "" && c.cfg.BackspaceRemoves && len(s.ActionValues) > 0 {
			return c.reopen(s, len(s.ActionValues)-1)
		}
	}
	return s, nil
}

func (c *Controller) optionClicked(s State, idx int) (State, []Effect) {
	if idx < 0 || idx >= len(s.Options) || !s.Options[idx].Selectable {
		return s, nil
	}
	opt := s.Options[idx]

	var effects []Effect
	input, ambiguous := c.applyOption(s, opt)
	if ambiguous {
		effects = append(effects, Warning{Message: "cannot tell which token to replace", Input: s.InputValue})
	}

	s.InputValue = input
	s.FocusedIndex = -1
	s.PreviewInputValue = ""
	s.IsOpen = true

	s, fx := c.refresh(s)
	effects = append(effects, fx...)
	if opt.IsComplete && !opt.IsAction {
		s, fx, _ = c.complete(s, TriggerOption)
		effects = append(effects, fx...)
	}
	return s, effects
}

// applyOption returns the input that results from choosing opt
func (c *Controller) applyOption(s State, opt ActionOption) (string, bool) {
	switch {
	case opt.IsAction && opt.Action != nil:
		return splice(s.InputValue, opt.Action.Keyword())
	case opt.Replacement != "" && s.ActiveAction != nil:
		return s.ActiveAction.Keyword() + " " + opt.Replacement + " ", false
	case opt.Value == "":
		return s.InputValue, false
	}
	return splice(s.InputValue, opt.Value)
}

// splice replaces the token being typed with value
func splice(input, value string) (string, bool) {
	base, ambiguous := stripLastToken(input)
	if base != "" && !strings.HasSuffix(base, " ") {
		base += " "
	}
	return base + value + " ", ambiguous
}

func (c *Controller) reopen(s State, idx int) (State, []Effect) {
	if idx < 0 || idx >= len(s.ActionValues) {
		return s, nil
	}
	v := s.ActionValues[idx]
	s.ActionValues = without(s.ActionValues, idx)
	s.InputValue = v.Action.Keyword() + " " + v.Value
	s.IsFocused = true
	s.IsOpen = true
	s.FocusedIndex = -1
	s.PreviewInputValue = ""

	s, effects := c.refresh(s)
	return s, append(effects, changed(s))
}

func (c *Controller) blurred(s State) (State, []Effect) {
	s.IsFocused = false
	s, effects, ok := c.complete(s, TriggerBlur)
	if !ok {
		return c.reset(s), nil
	}
	s.IsOpen = false
	return s, effects
}

// complete requests completion of the current input
func (c *Controller) complete(s State, trigger Trigger) (State, []Effect, bool) {
	active, tokens, _ := c.resolve(s.InputValue)
	if active == nil || len(tokens) == 0 {
		return s, nil, false
	}
	return s, []Effect{CompletionRequest{
		Gen:     s.gen,
		Action:  active,
		Tokens:  tokens,
		Trigger: trigger,
	}}, true
}

func (c *Controller) completed(s State, e ActionCompleted) (State, []Effect) {
	if e.Gen != s.gen {
		return s, nil
	}
	if !e.Result.Valid {
		if e.Trigger == TriggerBlur {
			return c.reset(s), nil
		}
		return s, nil
	}

	values := make([]ActionValue, 0, len(s.ActionValues)+1)
	for _, v := range s.ActionValues {
		if e.Action.Singleton() && v.Action.Equal(e.Action) {
			continue
		}
		values = append(values, v)
	}
	s.ActionValues = append(values, ActionValue{
		Action:       e.Action,
		DisplayValue: e.Result.DisplayValue,
		Value:        e.Result.Value,
		Param:        e.Result.Param,
	})

	s = clearInput(s)
	if c.cfg.CloseOnComplete || e.Trigger == TriggerBlur {
		s.IsOpen = false
	}
	if e.Trigger == TriggerBlur {
		s.IsFocused = false
	}
	return s, []Effect{changed(s)}
}

func (c *Controller) uniqueValuesFetched(s State, e UniqueValuesFetched) (State, []Effect) {
	if e.Key == "" || e.Key != s.uniqueKey {
		return s, nil
	}
	s.UniqueValuesLoading = false
	if e.Err != nil {
		s.UniqueValues = nil
	} else {
		s.UniqueValues = SortNatural(e.Values)
	}

	active, tokens, _ := c.resolve(s.InputValue)
	if active == nil {
		return s, nil
	}
	s, req := c.optionsRequest(s, active, tokens)
	return s, []Effect{req}
}

// refresh re-resolves the input after it changed and requests options
func (c *Controller) refresh(s State) (State, []Effect) {
	active, tokens, matching := c.resolve(s.InputValue)
	if !sameAction(active, s.ActiveAction) {
		s = clearUnique(s)
	}
	s.ActiveAction = active
	s.actionOptions = actionOptions(matching, active)
	s.gen++

	if active == nil {
		s.optionsGen++
		s.Options = s.actionOptions
		return s, nil
	}

	var effects []Effect
	switch active.Kind() {
	case KindFilter:
		if fa, ok := active.(*FilterAction); ok {
			if fieldKey, ok := fa.ValueColumn(tokens); ok {
				key := strings.ToLower(active.Keyword()) + "\x00" + fieldKey
				if key != s.uniqueKey {
					s.uniqueKey = key
					s.UniqueValues = nil
					s.UniqueValuesLoading = true
					effects = append(effects, UniqueValuesRequest{Key: key, FieldKey: fieldKey})
				}
			}
		}
	case KindSearch, KindSort:
	}

	if c.cfg.Debounce > 0 && active.IsDefault() && len(tokens) > 0 {
		return s, append(effects, DebounceRequest{Gen: s.gen, Delay: c.cfg.Debounce})
	}
	s, req := c.optionsRequest(s, active, tokens)
	return s, append(effects, req)
}

func (c *Controller) optionsRequest(s State, active Action, tokens []string) (State, OptionsRequest) {
	s.optionsGen++
	return s, OptionsRequest{
		Gen:    s.optionsGen,
		Action: active,
		Tokens: tokens,
		Context: FetchContext{
			UniqueValues:        s.UniqueValues,
			UniqueValuesLoading: s.UniqueValuesLoading,
			MaxOptions:          c.cfg.MaxOptions,
		},
	}
}

// resolve finds the active action and its tokens. A fully typed keyword
// selects its action; anything else goes to the default action, while
// keywords matching a single typed word are offered as sub-actions.
func (c *Controller) resolve(input string) (Action, []string, []Action) {
	tokens := Tokenize(input)
	if len(tokens) == 0 {
		return nil, nil, c.cfg.Actions
	}

	exact, matching := MatchActions(c.cfg.Actions, tokens[0])
	if exact != nil {
		return exact, tokens[1:], nil
	}
	if len(tokens) > 1 || strings.HasSuffix(input, " ") {
		matching = nil
	}
	return c.def, tokens, matching
}

func actionOptions(matching []Action, active Action) []ActionOption {
	var opts []ActionOption
	for _, a := range matching {
		if active != nil && a.Equal(active) {
			continue
		}
		var hint string
		switch a.Kind() {
		case KindFilter:
			hint = "column operator value"
		case KindSearch:
			hint = "text"
		case KindSort:
			hint = "column asc|desc"
		}
		opts = append(opts, ActionOption{
			Label:      a.Keyword(),
			NextLabel:  hint,
			Value:      a.Keyword(),
			IsAction:   true,
			Selectable: true,
			Action:     a,
		})
	}
	return opts
}

// reset returns to the closed, unfocused, empty state
func (c *Controller) reset(s State) State {
	s = clearInput(s)
	s.IsOpen = false
	s.IsFocused = false
	return s
}

// clearInput drops the typed text and invalidates in-flight requests
func clearInput(s State) State {
	s.InputValue = ""
	s.ActiveAction = nil
	s.Options = nil
	s.actionOptions = nil
	s.FocusedIndex = -1
	s.PreviewInputValue = ""
	s.gen++
	s.optionsGen++
	return clearUnique(s)
}

func clearUnique(s State) State {
	s.uniqueKey = ""
	s.UniqueValues = nil
	s.UniqueValuesLoading = false
	return s
}

func changed(s State) Changed {
	values := append([]ActionValue(nil), s.ActionValues...)
	return Changed{Values: values, Collections: Collect(values)}
}

func without(values []ActionValue, idx int) []ActionValue {
	out := make([]ActionValue, 0, len(values)-1)
	out = append(out, values[:idx]...)
	return append(out, values[idx+1:]...)
}
