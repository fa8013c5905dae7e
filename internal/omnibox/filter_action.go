package omnibox

import (
	"context"
	"strings"

	"github.com/rebeliceyang/omnipg/internal/filter"
	"github.com/rebeliceyang/omnipg/internal/models"
)

// FilterParseContext is what ParseTokens makes of a filter's tokens
type FilterParseContext struct {
	ColumnName       string
	Column           *models.QueryColumn
	LookupColumn     *models.QueryColumn // target of a "lookup/field" column
	FieldKey         string
	FilterTypes      []filter.Type
	ActiveFilterType *filter.Type
	RawValue         string

	match           columnMatch
	operatorText    string
	partialOperator bool
}

// ParseTokens resolves a column, an operator and a raw value from tokens.
// The column must match exactly; operators match by symbol, URL suffix, or a
// case-insensitive prefix of their display text.
func ParseTokens(tokens []string, columns []models.QueryColumn) FilterParseContext {
	pc := FilterParseContext{FilterTypes: []filter.Type{}}
	if len(tokens) == 0 {
		return pc
	}

	m := resolveColumn(tokens, columns)
	pc.match = m
	pc.ColumnName = m.name
	pc.Column = m.column
	pc.LookupColumn = m.target
	pc.FieldKey = m.fieldKey

	rest := tokens[m.consumed:]
	if m.column == nil || m.pending() {
		pc.RawValue = strings.Join(rest, " ")
		return pc
	}

	pc.FilterTypes = filterTypesFor(*m.effective())

	typ, consumed, partial := resolveOperator(rest, pc.FilterTypes)
	if typ != nil {
		pc.ActiveFilterType = typ
		pc.operatorText = strings.Join(rest[:consumed], " ")
		pc.partialOperator = partial
	}
	pc.RawValue = strings.Join(rest[consumed:], " ")
	return pc
}

// filterTypesFor lists single-valued operators for a column
func filterTypesFor(col models.QueryColumn) []filter.Type {
	types := []filter.Type{}
	for _, t := range filter.TypesForColumn(col) {
		if t.MultiValued || (t.Symbol == "" && t.Suffix == "") {
			continue
		}
		types = append(types, t)
	}
	return types
}

// resolveOperator matches the leading tokens against types. It returns the
// type, the number of tokens consumed and whether the match was only a
// prefix of the display text.
func resolveOperator(tokens []string, types []filter.Type) (*filter.Type, int, bool) {
	if len(tokens) == 0 {
		return nil, 0, false
	}

	first := tokens[0]
	for i := range types {
		if types[i].Symbol != "" && types[i].Symbol == first {
			return &types[i], 1, false
		}
	}
	for i := range types {
		if strings.EqualFold(types[i].Suffix, first) {
			return &types[i], 1, false
		}
	}

	for n := len(tokens); n >= 1; n-- {
		typed := strings.ToLower(strings.Join(tokens[:n], " "))
		var found *filter.Type
		for i := range types {
			display := strings.ToLower(types[i].Display)
			if display == typed {
				return &types[i], n, false
			}
			if found == nil && strings.HasPrefix(display, typed) {
				found = &types[i]
			}
		}
		if found != nil {
			return found, n, true
		}
	}
	return nil, 0, false
}

// FilterAction builds column filters: filter <column> <operator> [value]
type FilterAction struct {
	base
	columns ColumnsFunc
}

// NewFilterAction creates a filter action over the columns returned by columns
func NewFilterAction(columns ColumnsFunc, settings ...Setting) *FilterAction {
	return &FilterAction{
		base:    newBase("filter", false, false, settings),
		columns: columns,
	}
}

func (a *FilterAction) Kind() Kind { return KindFilter }

// FetchOptions suggests columns, then operators, then distinct values
func (a *FilterAction) FetchOptions(_ context.Context, tokens []string, fc FetchContext) []ActionOption {
	columns := a.columns()
	pc := ParseTokens(tokens, columns)

	var opts []ActionOption
	switch {
	case pc.Column == nil:
		opts = columnOptions(columns, strings.Join(tokens, " "))
	case pc.match.pending():
		opts = lookupOptions(pc.match)
	case pc.ActiveFilterType == nil:
		opts = operatorOptions(pc, "")
	case pc.partialOperator && pc.RawValue == "":
		opts = operatorOptions(pc, pc.operatorText)
	case pc.ActiveFilterType.RequiresValue && pc.ActiveFilterType.SuggestValues:
		opts = valueOptions(pc, fc.UniqueValues)
	}
	return limitOptions(opts, fc.MaxOptions)
}

func operatorOptions(pc FilterParseContext, typed string) []ActionOption {
	typed = strings.ToLower(typed)
	var opts []ActionOption
	for _, t := range pc.FilterTypes {
		if typed != "" && !strings.HasPrefix(strings.ToLower(t.Display), typed) {
			continue
		}
		op := operatorText(t)
		next := ""
		if t.RequiresValue {
			next = "value"
		}
		opts = append(opts, ActionOption{
			Label:       t.Display,
			NextLabel:   next,
			Value:       op,
			Replacement: pc.match.text() + " " + op,
			IsComplete:  !t.RequiresValue,
			Selectable:  true,
		})
	}
	return opts
}

func valueOptions(pc FilterParseContext, values []string) []ActionOption {
	raw := strings.ToLower(pc.RawValue)
	prefix := pc.match.text() + " " + operatorText(*pc.ActiveFilterType) + " "

	var opts []ActionOption
	for _, v := range values {
		if raw != "" && !strings.Contains(strings.ToLower(v), raw) {
			continue
		}
		quoted, ok := quoteToken(v)
		if !ok {
			continue
		}
		opts = append(opts, ActionOption{
			Label:       v,
			Value:       quoted,
			Replacement: prefix + quoted,
			IsComplete:  true,
			Selectable:  true,
		})
	}
	return opts
}

// operatorText is the symbol of t, or its URL suffix when it has none
func operatorText(t filter.Type) string {
	if t.Symbol != "" {
		return t.Symbol
	}
	return t.Suffix
}

// ValueColumn returns the field key whose distinct values complete tokens
func (a *FilterAction) ValueColumn(tokens []string) (string, bool) {
	pc := ParseTokens(tokens, a.columns())
	if pc.Column == nil || pc.match.pending() || pc.ActiveFilterType == nil {
		return "", false
	}
	if pc.partialOperator && pc.RawValue == "" {
		return "", false
	}
	if !pc.ActiveFilterType.RequiresValue || !pc.ActiveFilterType.SuggestValues {
		return "", false
	}
	return pc.FieldKey, true
}

// CompleteAction commits when a column, an operator and any required value
// are all present
func (a *FilterAction) CompleteAction(_ context.Context, tokens []string) Result {
	pc := ParseTokens(tokens, a.columns())
	if pc.Column == nil || pc.match.pending() || pc.ActiveFilterType == nil {
		return Result{}
	}
	typ := *pc.ActiveFilterType
	if typ.RequiresValue && strings.TrimSpace(pc.RawValue) == "" {
		return Result{}
	}
	// the committed Value must tokenize back to the same filter
	if _, ok := quoteToken(pc.RawValue); typ.RequiresValue && !ok {
		return Result{}
	}
	return describeFilter(pc.match, filter.Create(pc.FieldKey, pc.RawValue, typ))
}

// ParseParam rebuilds a filter value from "query.<fieldKey>~<suffix>=<value>"
func (a *FilterAction) ParseParam(param string) (ActionValue, bool) {
	f, err := filter.ParseParam(param)
	if err != nil {
		return ActionValue{}, false
	}
	m, ok := columnByKey(f.ColumnName(), a.columns())
	if !ok {
		return ActionValue{}, false
	}
	if m.effective().MultiValue && !filter.BlankOnly(f.FilterType()) {
		return ActionValue{}, false
	}
	r := describeFilter(m, f)
	return ActionValue{Action: a, DisplayValue: r.DisplayValue, Value: r.Value, Param: r.Param}, true
}

func describeFilter(m columnMatch, f filter.Filter) Result {
	typ := f.FilterType()
	display := m.caption() + " " + typ.Display
	value := m.text() + " " + operatorText(typ)
	if typ.RequiresValue {
		display += " " + f.Value()
		value += " " + quoteIfNeeded(f.Value())
	}
	return Result{
		Valid:        true,
		DisplayValue: display,
		Value:        value,
		Param:        f.URLParam(),
	}
}
