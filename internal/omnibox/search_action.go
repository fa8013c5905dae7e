package omnibox

import (
	"context"
	"net/url"
	"strings"

	"github.com/rebeliceyang/omnipg/internal/filter"
)

// SearchParam is the URL parameter carrying a free-text search
const SearchParam = filter.DefaultRegion + ".q"

// SearchAction matches free text across text columns. It is the default
// action, so text typed without a keyword is a search.
type SearchAction struct {
	base
}

// NewSearchAction creates the search action
func NewSearchAction(settings ...Setting) *SearchAction {
	return &SearchAction{base: newBase("search", false, true, settings)}
}

func (a *SearchAction) Kind() Kind { return KindSearch }

func (a *SearchAction) FetchOptions(_ context.Context, tokens []string, _ FetchContext) []ActionOption {
	text := strings.Join(tokens, " ")
	if text == "" {
		return nil
	}
	return []ActionOption{{
		Label:      `Search for "` + text + `"`,
		IsComplete: true,
		Selectable: true,
	}}
}

func (a *SearchAction) CompleteAction(_ context.Context, tokens []string) Result {
	text := strings.TrimSpace(strings.Join(tokens, " "))
	if text == "" {
		return Result{}
	}
	return Result{
		Valid:        true,
		DisplayValue: text,
		Value:        text,
		Param:        url.Values{SearchParam: {text}}.Encode(),
	}
}

func (a *SearchAction) ParseParam(param string) (ActionValue, bool) {
	text, ok := singleParam(param, SearchParam)
	if !ok || text == "" {
		return ActionValue{}, false
	}
	return ActionValue{
		Action:       a,
		DisplayValue: text,
		Value:        text,
		Param:        url.Values{SearchParam: {text}}.Encode(),
	}, true
}

// singleParam decodes param and returns the value of name when it is the
// only parameter
func singleParam(param, name string) (string, bool) {
	vals, err := url.ParseQuery(param)
	if err != nil || len(vals) != 1 {
		return "", false
	}
	v, ok := vals[name]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}
