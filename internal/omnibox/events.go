package omnibox

import "time"

// Key is a navigation key the OmniBox reacts to
type Key int

const (
	KeyTab Key = iota
	KeyEnter
	KeyEscape
	KeyUp
	KeyDown
	KeyBackspace
)

// Trigger records what started a completion
type Trigger int

const (
	TriggerEnter Trigger = iota
	TriggerOption
	TriggerBlur
)

// Event is an input to Reduce
type Event interface {
	isEvent()
}

type (
	// InputChanged carries the full new input text
	InputChanged struct{ Value string }

	KeyPressed struct{ Key Key }

	OptionClicked struct{ Index int }

	// ValueClicked reopens a committed value for editing
	ValueClicked struct{ Index int }

	ValueRemoved struct{ Index int }

	// ValuesReplaced swaps the whole committed set, e.g. when a saved view
	// is loaded
	ValuesReplaced struct{ Values []ActionValue }

	Focused struct{}

	Blurred struct{}

	OptionsFetched struct {
		Gen     uint64
		Options []ActionOption
	}

	ActionCompleted struct {
		Gen     uint64
		Action  Action
		Result  Result
		Trigger Trigger
	}

	UniqueValuesFetched struct {
		Key    string
		Values []string
		Err    error
	}

	DebounceElapsed struct{ Gen uint64 }
)

func (InputChanged) isEvent()        {}
func (KeyPressed) isEvent()          {}
func (OptionClicked) isEvent()       {}
func (ValueClicked) isEvent()        {}
func (ValueRemoved) isEvent()        {}
func (ValuesReplaced) isEvent()      {}
func (Focused) isEvent()             {}
func (Blurred) isEvent()             {}
func (OptionsFetched) isEvent()      {}
func (ActionCompleted) isEvent()     {}
func (UniqueValuesFetched) isEvent() {}
func (DebounceElapsed) isEvent()     {}

// Effect is work requested by Reduce. Results of asynchronous effects come
// back as events carrying the generation they were issued with.
type Effect interface {
	isEffect()
}

type (
	// OptionsRequest asks the action for options; answered by OptionsFetched
	OptionsRequest struct {
		Gen     uint64
		Action  Action
		Tokens  []string
		Context FetchContext
	}

	// CompletionRequest asks the action to complete; answered by
	// ActionCompleted
	CompletionRequest struct {
		Gen     uint64
		Action  Action
		Tokens  []string
		Trigger Trigger
	}

	// UniqueValuesRequest asks for distinct values of a column; answered by
	// UniqueValuesFetched
	UniqueValuesRequest struct {
		Key      string
		FieldKey string
	}

	// DebounceRequest asks for DebounceElapsed after Delay
	DebounceRequest struct {
		Gen   uint64
		Delay time.Duration
	}

	// Changed reports a new committed set
	Changed struct {
		Values      []ActionValue
		Collections []ActionValueCollection
	}

	// Warning is a condition worth logging but not showing
	Warning struct {
		Message string
		Input   string
	}
)

func (OptionsRequest) isEffect()      {}
func (CompletionRequest) isEffect()   {}
func (UniqueValuesRequest) isEffect() {}
func (DebounceRequest) isEffect()     {}
func (Changed) isEffect()             {}
func (Warning) isEffect()             {}
