// Package omnibox implements the OmniBox query bar: a tokenizer, the
// filter/search/sort actions that interpret tokens, and a pure state
// reducer driving the interactive input.
package omnibox

import (
	"context"
	"strings"
)

// Kind identifies one of the closed set of action variants
type Kind int

const (
	KindFilter Kind = iota
	KindSearch
	KindSort
)

func (k Kind) String() string {
	switch k {
	case KindFilter:
		return "filter"
	case KindSearch:
		return "search"
	case KindSort:
		return "sort"
	}
	return "unknown"
}

// Action interprets the tokens typed after its keyword. Implementations are
// limited to this package.
type Action interface {
	Kind() Kind
	Keyword() string
	IsDefault() bool
	Singleton() bool
	Equal(other Action) bool

	// FetchOptions returns autocomplete options for the tokens; nil when
	// nothing matches
	FetchOptions(ctx context.Context, tokens []string, fc FetchContext) []ActionOption

	// CompleteAction turns the tokens into a committable value. An invalid
	// result means nothing is committed.
	CompleteAction(ctx context.Context, tokens []string) Result

	// ParseParam rebuilds a committed value from its URL parameter
	ParseParam(param string) (ActionValue, bool)

	sealed()
}

// FetchContext carries OmniBox state an action needs to build options
type FetchContext struct {
	UniqueValues        []string
	UniqueValuesLoading bool
	MaxOptions          int
}

// Result is the outcome of CompleteAction
type Result struct {
	Valid        bool
	DisplayValue string
	Value        string
	Param        string
}

// ActionValue is a committed action instance
type ActionValue struct {
	Action       Action
	DisplayValue string
	Value        string // text that re-tokenizes to the same value
	Param        string // URL parameter, e.g. "query.name~eq=bob"
}

// ActionOption is one autocomplete suggestion
type ActionOption struct {
	Label      string
	NextLabel  string // hint for what follows, e.g. "operator"
	Value      string // text spliced into the input when chosen
	IsComplete bool   // choosing it completes the action
	IsAction   bool   // choosing it switches to Action
	Selectable bool
	Action     Action

	// Replacement, when set, replaces all text after the keyword instead of
	// splicing Value over the last token
	Replacement string
}

// ActionValueCollection groups committed values of one action
type ActionValueCollection struct {
	Action Action
	Values []ActionValue
}

// Setting configures an action at construction
type Setting func(*base)

// WithKeyword overrides the default keyword
func WithKeyword(keyword string) Setting {
	return func(b *base) { b.keyword = keyword }
}

// WithSingleton sets whether a new value replaces the previous one
func WithSingleton(singleton bool) Setting {
	return func(b *base) { b.singleton = singleton }
}

// AsDefault makes the action handle text that starts with no keyword
func AsDefault(isDefault bool) Setting {
	return func(b *base) { b.isDefault = isDefault }
}

// base holds the fields every action shares
type base struct {
	keyword   string
	singleton bool
	isDefault bool
}

func newBase(keyword string, singleton, isDefault bool, settings []Setting) base {
	b := base{keyword: keyword, singleton: singleton, isDefault: isDefault}
	for _, s := range settings {
		s(&b)
	}
	return b
}

func (base) sealed() {}

func (b base) Keyword() string { return b.keyword }
func (b base) IsDefault() bool { return b.isDefault }
func (b base) Singleton() bool { return b.singleton }

func (b base) Equal(other Action) bool {
	return other != nil && strings.EqualFold(b.keyword, other.Keyword())
}

// sameAction reports whether a and b are both nil or Equal
func sameAction(a, b Action) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// MatchActions resolves the first typed token against action keywords. An
// exact keyword wins outright. Otherwise every action whose keyword starts
// with prefix matches, and the default action is always included.
func MatchActions(actions []Action, prefix string) (Action, []Action) {
	for _, a := range actions {
		if strings.EqualFold(a.Keyword(), prefix) {
			return a, nil
		}
	}

	lower := strings.ToLower(prefix)
	var matching []Action
	for _, a := range actions {
		if a.IsDefault() || strings.HasPrefix(strings.ToLower(a.Keyword()), lower) {
			matching = append(matching, a)
		}
	}
	return nil, matching
}

// DefaultAction returns the default action, if any
func DefaultAction(actions []Action) Action {
	for _, a := range actions {
		if a.IsDefault() {
			return a
		}
	}
	return nil
}

// Collect groups values by action in commit order. Singleton actions keep
// only their most recent value.
func Collect(values []ActionValue) []ActionValueCollection {
	var cols []ActionValueCollection
	for _, v := range values {
		idx := -1
		for i, c := range cols {
			if c.Action.Equal(v.Action) {
				idx = i
				break
			}
		}

		switch {
		case idx < 0:
			cols = append(cols, ActionValueCollection{Action: v.Action, Values: []ActionValue{v}})
		case v.Action.Singleton():
			cols[idx].Values = []ActionValue{v}
		default:
			cols[idx].Values = append(cols[idx].Values, v)
		}
	}
	return cols
}

func limitOptions(opts []ActionOption, max int) []ActionOption {
	if max > 0 && len(opts) > max {
		return opts[:max]
	}
	return opts
}
