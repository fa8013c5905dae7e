package omnibox

import (
	"context"
	"net/url"
	"strings"

	"github.com/rebeliceyang/omnipg/internal/filter"
)

// SortParam is the URL parameter carrying a sort; a leading "-" means
// descending
const SortParam = filter.DefaultRegion + ".sort"

// SortAction orders rows by a column: sort <column> [asc|desc]
type SortAction struct {
	base
	columns ColumnsFunc
}

// NewSortAction creates a sort action. Sorting is a singleton by default: a
// new sort replaces the previous one.
func NewSortAction(columns ColumnsFunc, settings ...Setting) *SortAction {
	return &SortAction{
		base:    newBase("sort", true, false, settings),
		columns: columns,
	}
}

func (a *SortAction) Kind() Kind { return KindSort }

// direction parses a possibly abbreviated asc/desc token
func direction(token string) (desc bool, ok bool) {
	t := strings.ToLower(token)
	switch {
	case t == "":
		return false, false
	case strings.HasPrefix("ascending", t):
		return false, true
	case strings.HasPrefix("descending", t):
		return true, true
	}
	return false, false
}

// parseSort splits tokens into a column match and a direction
func (a *SortAction) parseSort(tokens []string) (m columnMatch, desc bool, dirText string, ok bool) {
	colTokens := tokens
	if n := len(tokens); n >= 2 {
		if d, isDir := direction(tokens[n-1]); isDir {
			desc, dirText = d, tokens[n-1]
			colTokens = tokens[:n-1]
		}
	}
	m = resolveColumn(colTokens, a.columns())
	ok = m.column != nil && !m.pending() && m.consumed == len(colTokens)
	return m, desc, dirText, ok
}

func (a *SortAction) FetchOptions(_ context.Context, tokens []string, fc FetchContext) []ActionOption {
	columns := a.columns()
	m, _, dirText, ok := a.parseSort(tokens)

	var opts []ActionOption
	switch {
	case m.pending():
		opts = lookupOptions(m)
	case !ok:
		opts = columnOptions(columns, strings.Join(tokens, " "))
	default:
		for _, dir := range []string{"asc", "desc"} {
			if dirText != "" && !strings.HasPrefix(dir, strings.ToLower(dirText)) {
				continue
			}
			label := "ascending"
			if dir == "desc" {
				label = "descending"
			}
			opts = append(opts, ActionOption{
				Label:       m.caption() + " " + label,
				Value:       dir,
				Replacement: m.text() + " " + dir,
				IsComplete:  true,
				Selectable:  true,
			})
		}
	}
	return limitOptions(opts, fc.MaxOptions)
}

func (a *SortAction) CompleteAction(_ context.Context, tokens []string) Result {
	m, desc, _, ok := a.parseSort(tokens)
	if !ok {
		return Result{}
	}
	return describeSort(m, desc)
}

func (a *SortAction) ParseParam(param string) (ActionValue, bool) {
	key, ok := singleParam(param, SortParam)
	if !ok {
		return ActionValue{}, false
	}
	desc := strings.HasPrefix(key, "-")
	m, ok := columnByKey(strings.TrimPrefix(key, "-"), a.columns())
	if !ok {
		return ActionValue{}, false
	}
	r := describeSort(m, desc)
	return ActionValue{Action: a, DisplayValue: r.DisplayValue, Value: r.Value, Param: r.Param}, true
}

func describeSort(m columnMatch, desc bool) Result {
	label, dir, key := "ascending", "asc", m.fieldKey
	if desc {
		label, dir, key = "descending", "desc", "-"+m.fieldKey
	}
	return Result{
		Valid:        true,
		DisplayValue: m.caption() + " " + label,
		Value:        m.text() + " " + dir,
		Param:        url.Values{SortParam: {key}}.Encode(),
	}
}
