package omnibox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/omnipg/internal/models"
)

func TestSearchAction(t *testing.T) {
	a := NewSearchAction()
	ctx := context.Background()

	assert.Equal(t, "search", a.Keyword())
	assert.True(t, a.IsDefault())
	assert.False(t, a.Singleton())
	assert.Equal(t, KindSearch, a.Kind())

	assert.Nil(t, a.FetchOptions(ctx, nil, FetchContext{}))
	opts := a.FetchOptions(ctx, []string{"foo", "bar"}, FetchContext{})
	require.Len(t, opts, 1)
	assert.Equal(t, `Search for "foo bar"`, opts[0].Label)
	assert.True(t, opts[0].IsComplete)

	r := a.CompleteAction(ctx, []string{"foo", "bar"})
	require.True(t, r.Valid)
	assert.Equal(t, "foo bar", r.DisplayValue)
	assert.Equal(t, "query.q=foo+bar", r.Param)

	assert.False(t, a.CompleteAction(ctx, nil).Valid)

	v, ok := a.ParseParam("query.q=foo+bar")
	require.True(t, ok)
	assert.Equal(t, "foo bar", v.DisplayValue)

	_, ok = a.ParseParam("query.sort=qty")
	assert.False(t, ok)
}

func TestSortAction(t *testing.T) {
	a := NewSortAction(func() []models.QueryColumn { return testColumns() })
	ctx := context.Background()

	assert.True(t, a.Singleton())

	r := a.CompleteAction(ctx, []string{"qty", "desc"})
	require.True(t, r.Valid)
	assert.Equal(t, "Qty descending", r.DisplayValue)
	assert.Equal(t, "qty desc", r.Value)
	assert.Equal(t, "query.sort=-qty", r.Param)

	r = a.CompleteAction(ctx, []string{"Molecule", "Set"})
	require.True(t, r.Valid)
	assert.Equal(t, "Molecule Set ascending", r.DisplayValue)
	assert.Equal(t, "molecule_set asc", r.Value)
	assert.Equal(t, "query.sort=molecule_set", r.Param)

	assert.False(t, a.CompleteAction(ctx, []string{"qty", "sideways"}).Valid)
	assert.False(t, a.CompleteAction(ctx, []string{"nope"}).Valid)

	opts := a.FetchOptions(ctx, []string{"qty"}, FetchContext{})
	assert.Equal(t, []string{"Qty ascending", "Qty descending"}, labels(opts))
	assert.Equal(t, "qty desc", opts[1].Replacement)

	opts = a.FetchOptions(ctx, []string{"qty", "d"}, FetchContext{})
	assert.Equal(t, []string{"Qty descending"}, labels(opts))

	opts = a.FetchOptions(ctx, []string{"mol"}, FetchContext{})
	assert.Equal(t, []string{"Molecule Set"}, labels(opts))

	v, ok := a.ParseParam("query.sort=-qty")
	require.True(t, ok)
	assert.Equal(t, "Qty descending", v.DisplayValue)

	_, ok = a.ParseParam("query.sort=-nope")
	assert.False(t, ok)
}

func TestSettings(t *testing.T) {
	a := NewFilterAction(nil, WithKeyword("where"), WithSingleton(true), AsDefault(true))
	assert.Equal(t, "where", a.Keyword())
	assert.True(t, a.Singleton())
	assert.True(t, a.IsDefault())
	assert.True(t, a.Equal(NewSortAction(nil, WithKeyword("WHERE"))))
	assert.False(t, a.Equal(nil))
}

func TestMatchActions(t *testing.T) {
	filter := NewFilterAction(nil)
	search := NewSearchAction()
	sort := NewSortAction(nil)
	actions := []Action{filter, search, sort}

	exact, matching := MatchActions(actions, "Sort")
	assert.Same(t, sort, exact)
	assert.Nil(t, matching)

	exact, matching = MatchActions(actions, "s")
	assert.Nil(t, exact)
	assert.Equal(t, []Action{search, sort}, matching)

	exact, matching = MatchActions(actions, "fil")
	assert.Nil(t, exact)
	assert.Equal(t, []Action{filter, search}, matching)

	_, matching = MatchActions(actions, "zzz")
	assert.Equal(t, []Action{search}, matching)
}

func TestCollect(t *testing.T) {
	filter := NewFilterAction(nil)
	sort := NewSortAction(nil)
	values := []ActionValue{
		{Action: filter, DisplayValue: "a"},
		{Action: sort, DisplayValue: "s1"},
		{Action: filter, DisplayValue: "b"},
		{Action: sort, DisplayValue: "s2"},
	}

	cols := Collect(values)
	require.Len(t, cols, 2)
	assert.Equal(t, []ActionValue{values[0], values[2]}, cols[0].Values)
	assert.Equal(t, []ActionValue{values[3]}, cols[1].Values)
}
