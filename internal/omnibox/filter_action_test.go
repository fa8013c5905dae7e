package omnibox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/omnipg/internal/filter"
	"github.com/rebeliceyang/omnipg/internal/models"
)

func newFilterAction() *FilterAction {
	return NewFilterAction(func() []models.QueryColumn { return testColumns() })
}

func TestParseTokens_Empty(t *testing.T) {
	pc := ParseTokens(nil, testColumns())
	assert.Nil(t, pc.Column)
	assert.Nil(t, pc.ActiveFilterType)
	assert.Empty(t, pc.ColumnName)
	assert.NotNil(t, pc.FilterTypes)
	assert.Empty(t, pc.FilterTypes)
}

func TestParseTokens_ExactColumnMatch(t *testing.T) {
	pc := ParseTokens([]string{"columna", "x", "y", "z"}, testColumns())
	require.NotNil(t, pc.Column)
	assert.Equal(t, "columnA", pc.Column.Name)
	assert.Equal(t, "columnA", pc.FieldKey)
	assert.Nil(t, pc.ActiveFilterType)
	assert.Equal(t, "x y z", pc.RawValue)
}

func TestParseTokens_NoPartialColumnMatch(t *testing.T) {
	pc := ParseTokens([]string{"column", "b", "="}, testColumns())
	assert.Nil(t, pc.Column)
	assert.Equal(t, "column", pc.ColumnName)
	assert.Empty(t, pc.FilterTypes)
}

func TestParseTokens_CaptionSpanningTokens(t *testing.T) {
	pc := ParseTokens([]string{"Extra", "Test", "Column", "isnonblank"}, testColumns())
	require.NotNil(t, pc.Column)
	assert.Equal(t, "extra_test_column", pc.Column.Name)
	require.NotNil(t, pc.ActiveFilterType)
	assert.Equal(t, filter.NonBlank.Suffix, pc.ActiveFilterType.Suffix)
	assert.Empty(t, pc.RawValue)
}

func TestParseTokens_Operators(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		suffix string
		raw    string
	}{
		{"symbol", []string{"qty", ">", "10"}, "gt", "10"},
		{"url suffix", []string{"qty", "GTE", "10"}, "gte", "10"},
		{"display text", []string{"columnA", "contains", "abc"}, "contains", "abc"},
		{"display spanning tokens", []string{"columnA", "does", "not", "contain", "x"}, "doesnotcontain", "x"},
		{"display prefix", []string{"qty", "is", "greater", "5"}, "gt", "5"},
		{"full display", []string{"qty", "is", "blank"}, "isblank", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := ParseTokens(tt.tokens, testColumns())
			require.NotNil(t, pc.ActiveFilterType)
			assert.Equal(t, tt.suffix, pc.ActiveFilterType.Suffix)
			assert.Equal(t, tt.raw, pc.RawValue)
		})
	}
}

func TestParseTokens_ExcludesMultiValuedTypes(t *testing.T) {
	pc := ParseTokens([]string{"columnA"}, testColumns())
	for _, ft := range pc.FilterTypes {
		assert.False(t, ft.MultiValued, ft.Name)
	}
	assert.NotEmpty(t, pc.FilterTypes)
}

func TestFilterAction_ListColumns(t *testing.T) {
	a := NewFilterAction(func() []models.QueryColumn {
		return []models.QueryColumn{
			{Name: "tags", JSONType: models.JSONString, MultiValue: true},
		}
	})
	ctx := context.Background()

	pc := ParseTokens([]string{"tags"}, a.columns())
	assert.Equal(t, []filter.Type{filter.IsBlank, filter.NonBlank}, pc.FilterTypes)

	opts := a.FetchOptions(ctx, nil, FetchContext{})
	require.Len(t, opts, 1)
	assert.Equal(t, "list", opts[0].NextLabel)

	assert.False(t, a.CompleteAction(ctx, []string{"tags", "contains", "x"}).Valid)
	assert.True(t, a.CompleteAction(ctx, []string{"tags", "isnonblank"}).Valid)

	_, ok := a.ParseParam("query.tags~contains=x")
	assert.False(t, ok)
	_, ok = a.ParseParam("query.tags~isblank")
	assert.True(t, ok)
}

func TestParseTokens_Lookup(t *testing.T) {
	pc := ParseTokens([]string{"sample/label", "=", "x"}, testColumns())
	require.NotNil(t, pc.Column)
	require.NotNil(t, pc.LookupColumn)
	assert.Equal(t, "sample/label", pc.FieldKey)
	assert.Equal(t, "label", pc.LookupColumn.Name)
	require.NotNil(t, pc.ActiveFilterType)
	assert.Equal(t, "x", pc.RawValue)
}

func TestFilterFetchOptions_Columns(t *testing.T) {
	a := newFilterAction()
	opts := a.FetchOptions(context.Background(), []string{"col"}, FetchContext{})
	assert.Equal(t, []string{"columnA", "columnB", "Extra Test Column"}, labels(opts))
	assert.Equal(t, "columnA", opts[0].Replacement)

	all := a.FetchOptions(context.Background(), nil, FetchContext{})
	assert.Len(t, all, len(testColumns()))

	limited := a.FetchOptions(context.Background(), nil, FetchContext{MaxOptions: 2})
	assert.Len(t, limited, 2)
}

func TestFilterFetchOptions_Idempotent(t *testing.T) {
	a := newFilterAction()
	ctx := context.Background()

	first := a.FetchOptions(ctx, nil, FetchContext{})
	second := a.FetchOptions(ctx, nil, FetchContext{})
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestFilterFetchOptions_LookupFields(t *testing.T) {
	a := newFilterAction()
	opts := a.FetchOptions(context.Background(), []string{"sample/"}, FetchContext{})
	assert.Equal(t, []string{"Sample/Label", "Sample/id"}, labels(opts))
	assert.Equal(t, "sample/label", opts[0].Replacement)
}

func TestFilterFetchOptions_Operators(t *testing.T) {
	a := newFilterAction()

	opts := a.FetchOptions(context.Background(), []string{"qty"}, FetchContext{})
	require.NotEmpty(t, opts)
	assert.Equal(t, "Equals", opts[0].Label)
	assert.Equal(t, "=", opts[0].Value)
	assert.Equal(t, "qty =", opts[0].Replacement)

	var blank ActionOption
	for _, o := range opts {
		if o.Label == "Is Blank" {
			blank = o
		}
	}
	assert.Equal(t, "isblank", blank.Value)
	assert.True(t, blank.IsComplete)

	partial := a.FetchOptions(context.Background(), []string{"columnA", "is"}, FetchContext{})
	assert.Equal(t, []string{
		"Is Blank", "Is Not Blank",
		"Is Greater Than", "Is Greater Than or Equal To",
		"Is Less Than", "Is Less Than or Equal To",
	}, labels(partial))
}

func TestFilterFetchOptions_Values(t *testing.T) {
	a := newFilterAction()
	fc := FetchContext{UniqueValues: []string{"a b", "c"}}

	opts := a.FetchOptions(context.Background(), []string{"columnA", "="}, fc)
	assert.Equal(t, []string{"a b", "c"}, labels(opts))
	assert.Equal(t, `columnA = "a b"`, opts[0].Replacement)
	assert.True(t, opts[0].IsComplete)

	narrowed := a.FetchOptions(context.Background(), []string{"columnA", "=", "C"}, fc)
	assert.Equal(t, []string{"c"}, labels(narrowed))

	none := a.FetchOptions(context.Background(), []string{"columnA", "contains"}, fc)
	assert.Nil(t, none)
}

func TestFilterValueColumn(t *testing.T) {
	a := newFilterAction()

	key, ok := a.ValueColumn([]string{"columnA", "="})
	assert.True(t, ok)
	assert.Equal(t, "columnA", key)

	_, ok = a.ValueColumn([]string{"columnA", "contains"})
	assert.False(t, ok)

	_, ok = a.ValueColumn([]string{"columnA"})
	assert.False(t, ok)
}

func TestFilterCompleteAction(t *testing.T) {
	a := newFilterAction()
	ctx := context.Background()

	r := a.CompleteAction(ctx, []string{"Extra", "Test", "Column", "isnonblank"})
	require.True(t, r.Valid)
	assert.Equal(t, "Extra Test Column Is Not Blank", r.DisplayValue)
	assert.Equal(t, "extra_test_column isnonblank", r.Value)
	assert.Equal(t, "query.extra_test_column~isnonblank=", r.Param)

	r = a.CompleteAction(ctx, Tokenize(`"Molecule Set" = "set 1"`))
	require.True(t, r.Valid)
	assert.Equal(t, "Molecule Set Equals set 1", r.DisplayValue)
	assert.Equal(t, `molecule_set = "set 1"`, r.Value)
	assert.Equal(t, "query.molecule_set~eq=set+1", r.Param)

	r = a.CompleteAction(ctx, []string{"sample/label", "=", "x"})
	require.True(t, r.Valid)
	assert.Equal(t, "Sample/Label Equals x", r.DisplayValue)
	assert.Equal(t, "query.sample%2Flabel~eq=x", r.Param)
}

func TestFilterCompleteAction_ValueRetokenizes(t *testing.T) {
	a := newFilterAction()
	ctx := context.Background()

	for _, tokens := range [][]string{
		Tokenize(`"Molecule Set" contains "a b"`),
		{"columnA", "=", `say "hi" now`},
		{"columnA", "=", "it's here"},
		{"columnA", "=", `"quoted"`},
		{"columnA", "=", "--"},
	} {
		first := a.CompleteAction(ctx, tokens)
		require.True(t, first.Valid, "%v", tokens)

		again := a.CompleteAction(ctx, Tokenize(first.Value))
		assert.Equal(t, first, again, "%v", tokens)
	}
}

func TestFilterCompleteAction_UnquotableValue(t *testing.T) {
	a := newFilterAction()

	r := a.CompleteAction(context.Background(), []string{"columnA", "=", `it's "x" now`})
	assert.False(t, r.Valid)
}

func TestFilterCompleteAction_MatchesCreate(t *testing.T) {
	a := newFilterAction()
	ctx := context.Background()

	for _, col := range []struct{ name, value string }{
		{"columnA", "some text"},
		{"qty", "10"},
	} {
		m, ok := matchColumn(col.name, testColumns())
		require.True(t, ok)

		for _, typ := range filterTypesFor(*m.column) {
			if typ.Symbol == "" {
				continue
			}
			t.Run(col.name+" "+typ.Symbol, func(t *testing.T) {
				r := a.CompleteAction(ctx, []string{col.name, typ.Symbol, col.value})
				require.True(t, r.Valid)

				got, err := filter.ParseParam(r.Param)
				require.NoError(t, err)
				want := filter.Create(col.name, col.value, typ)
				assert.Equal(t, want.ColumnName(), got.ColumnName())
				assert.Equal(t, want.FilterType(), got.FilterType())
				assert.Equal(t, want.Value(), got.Value())
			})
		}
	}
}

func TestFilterCompleteAction_Invalid(t *testing.T) {
	a := newFilterAction()
	ctx := context.Background()

	for _, tokens := range [][]string{
		nil,
		{"nope", "=", "1"},
		{"columnA"},
		{"columnA", "="},
		{"columnA", "xyz", "1"},
		{"sample/"},
	} {
		assert.False(t, a.CompleteAction(ctx, tokens).Valid, "%v", tokens)
	}
}

func TestFilterParseParam(t *testing.T) {
	a := newFilterAction()

	v, ok := a.ParseParam("query.qty~gt=10")
	require.True(t, ok)
	assert.Equal(t, "Qty Is Greater Than 10", v.DisplayValue)
	assert.Equal(t, "qty > 10", v.Value)
	assert.Equal(t, "query.qty~gt=10", v.Param)
	assert.Same(t, a, v.Action)

	v, ok = a.ParseParam("query.sample%2Flabel~startswith=ab")
	require.True(t, ok)
	assert.Equal(t, "Sample/Label Starts With ab", v.DisplayValue)

	_, ok = a.ParseParam("query.unknown~eq=1")
	assert.False(t, ok)
	_, ok = a.ParseParam("query.q=foo")
	assert.False(t, ok)
}
