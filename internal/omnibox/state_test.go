package omnibox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/omnipg/internal/models"
)

func TestInit(t *testing.T) {
	h := newHarness(Config{})
	assert.Equal(t, "omnibox-test", h.state.ID)
	assert.Equal(t, -1, h.state.FocusedIndex)
	assert.False(t, h.state.IsOpen)

	c := NewController(Config{})
	assert.Len(t, c.Init().ID, 36)
}

func TestCommitOnEnter(t *testing.T) {
	h := newHarness(Config{})
	h.commit("filter qty > 10")

	assert.Equal(t, []string{"Qty Is Greater Than 10"}, h.displays())
	assert.Empty(t, h.state.InputValue)
	assert.Nil(t, h.state.ActiveAction)
	assert.Empty(t, h.state.Options)
	require.Len(t, h.changes, 1)
	require.Len(t, h.changes[0].Collections, 1)
	assert.Equal(t, "query.qty~gt=10", h.changes[0].Collections[0].Values[0].Param)
}

func TestCommitDefaultAction(t *testing.T) {
	h := newHarness(Config{})
	h.commit("hello world")

	require.Len(t, h.state.ActionValues, 1)
	assert.Equal(t, KindSearch, h.state.ActionValues[0].Action.Kind())
	assert.Equal(t, "hello world", h.state.ActionValues[0].DisplayValue)
}

func TestInvalidEnterKeepsInput(t *testing.T) {
	h := newHarness(Config{})
	h.commit("filter nope = 1")

	assert.Empty(t, h.state.ActionValues)
	assert.Equal(t, "filter nope = 1", h.state.InputValue)
	assert.Empty(t, h.changes)
}

func TestSingletonReplacement(t *testing.T) {
	columns := func() []models.QueryColumn { return testColumns() }
	h := newHarness(Config{Actions: []Action{
		NewFilterAction(columns, WithSingleton(true)),
		NewSearchAction(),
	}})

	h.commit("filter qty > 10")
	h.commit("search abc")
	h.commit("filter qty < 5")

	assert.Equal(t, []string{"abc", "Qty Is Less Than 5"}, h.displays())
	cols := h.state.Collections()
	require.Len(t, cols, 2)
	assert.Len(t, cols[1].Values, 1)
}

func TestNonSingletonAccumulates(t *testing.T) {
	h := newHarness(Config{})
	h.commit("filter qty > 10")
	h.commit("filter qty < 50")

	assert.Equal(t, []string{"Qty Is Greater Than 10", "Qty Is Less Than 50"}, h.displays())
	require.Len(t, h.state.Collections(), 1)
}

func TestBackspaceReopensLastValue(t *testing.T) {
	h := newHarness(Config{BackspaceRemoves: true})
	h.commit("filter qty > 10")
	h.send(KeyPressed{Key: KeyBackspace})

	assert.Equal(t, "filter qty > 10", h.state.InputValue)
	assert.Empty(t, h.state.ActionValues)
	assert.True(t, h.state.IsOpen)
	assert.Len(t, h.changes, 2)

	h.send(KeyPressed{Key: KeyEnter})
	assert.Equal(t, []string{"Qty Is Greater Than 10"}, h.displays())
}

func TestBackspaceDisabled(t *testing.T) {
	h := newHarness(Config{})
	h.commit("filter qty > 10")
	h.send(KeyPressed{Key: KeyBackspace})

	assert.Len(t, h.state.ActionValues, 1)
	assert.Empty(t, h.state.InputValue)
}

func TestValueClickedReopens(t *testing.T) {
	h := newHarness(Config{})
	h.commit("search first")
	h.commit("sort qty desc")
	h.send(ValueClicked{Index: 0})

	assert.Equal(t, "search first", h.state.InputValue)
	assert.Equal(t, []string{"Qty descending"}, h.displays())
	assert.True(t, h.state.IsFocused)
}

func TestValueRemoved(t *testing.T) {
	h := newHarness(Config{})
	h.commit("search first")
	h.send(ValueRemoved{Index: 0})
	h.send(ValueRemoved{Index: 3})

	assert.Empty(t, h.state.ActionValues)
	assert.Len(t, h.changes, 2)
}

func TestValuesReplaced(t *testing.T) {
	h := newHarness(Config{})
	values, _ := Restore(h.ctrl.Actions(), []string{"query.q=abc", "query.sort=-qty"})
	h.send(ValuesReplaced{Values: values})

	assert.Equal(t, []string{"abc", "Qty descending"}, h.displays())
	assert.Len(t, h.changes, 1)
}

func TestFocusShowsActions(t *testing.T) {
	h := newHarness(Config{})
	h.send(Focused{})

	assert.True(t, h.state.IsFocused)
	assert.True(t, h.state.IsOpen)
	assert.Equal(t, []string{"filter", "search", "sort"}, labels(h.state.Options))
	for _, o := range h.state.Options {
		assert.True(t, o.IsAction)
	}
}

func TestFocusCirculates(t *testing.T) {
	h := newHarness(Config{})
	h.send(Focused{})

	h.send(KeyPressed{Key: KeyDown})
	assert.Equal(t, 0, h.state.FocusedIndex)
	assert.Equal(t, "filter ", h.state.PreviewInputValue)

	h.send(KeyPressed{Key: KeyUp})
	assert.Equal(t, 2, h.state.FocusedIndex)
	assert.Equal(t, "sort ", h.state.PreviewInputValue)

	h.send(KeyPressed{Key: KeyDown})
	assert.Equal(t, 0, h.state.FocusedIndex)

	h.send(KeyPressed{Key: KeyUp})
	h.send(KeyPressed{Key: KeyUp})
	assert.Equal(t, 1, h.state.FocusedIndex)
	assert.Empty(t, h.state.InputValue, "preview does not change the input")
}

func TestFocusWithNoOptions(t *testing.T) {
	h := newHarness(Config{})
	h.send(KeyPressed{Key: KeyDown})
	assert.Equal(t, -1, h.state.FocusedIndex)
}

func TestTabChoosesFocusedOption(t *testing.T) {
	h := newHarness(Config{})
	h.send(Focused{})
	h.send(KeyPressed{Key: KeyDown})
	h.send(KeyPressed{Key: KeyTab})

	assert.Equal(t, "filter ", h.state.InputValue)
	require.NotNil(t, h.state.ActiveAction)
	assert.Equal(t, KindFilter, h.state.ActiveAction.Kind())
	assert.Len(t, h.state.Options, len(testColumns()))
}

func TestTabWithoutFocusDoesNothing(t *testing.T) {
	h := newHarness(Config{})
	h.send(InputChanged{Value: "filter qty > 1"})
	h.send(KeyPressed{Key: KeyTab})

	assert.Equal(t, "filter qty > 1", h.state.InputValue)
	assert.Empty(t, h.state.ActionValues)
}

func TestOptionClickSplicesColumn(t *testing.T) {
	h := newHarness(Config{})
	h.send(InputChanged{Value: "filter qt"})
	require.Equal(t, []string{"Qty"}, labels(h.state.Options))

	h.send(OptionClicked{Index: 0})
	assert.Equal(t, "filter qty ", h.state.InputValue)
	assert.Equal(t, "Equals", h.state.Options[0].Label)
}

func TestOptionClickCompletes(t *testing.T) {
	h := newHarness(Config{})
	h.send(InputChanged{Value: "filter qty is bl"})
	require.Equal(t, []string{"Is Blank"}, labels(h.state.Options))

	h.send(OptionClicked{Index: 0})
	assert.Equal(t, []string{"Qty Is Blank"}, h.displays())
	assert.Empty(t, h.state.InputValue)
	assert.Len(t, h.changes, 1)
}

func TestOptionClickOutOfRange(t *testing.T) {
	h := newHarness(Config{})
	before := h.state
	h.send(OptionClicked{Index: 4})
	assert.Equal(t, before, h.state)
}

func TestKeywordPrefixOffersSubActions(t *testing.T) {
	h := newHarness(Config{})
	h.send(InputChanged{Value: "so"})

	require.NotNil(t, h.state.ActiveAction)
	assert.Equal(t, KindSearch, h.state.ActiveAction.Kind())
	assert.Equal(t, []string{"sort", `Search for "so"`}, labels(h.state.Options))

	h.send(OptionClicked{Index: 0})
	assert.Equal(t, "sort ", h.state.InputValue)
	assert.Equal(t, KindSort, h.state.ActiveAction.Kind())

	h.send(InputChanged{Value: "so "})
	assert.Equal(t, []string{`Search for "so"`}, labels(h.state.Options))
}

func TestEscapeCloses(t *testing.T) {
	h := newHarness(Config{})
	h.send(InputChanged{Value: "filter"})
	h.send(KeyPressed{Key: KeyDown})
	focused, preview := h.state.FocusedIndex, h.state.PreviewInputValue
	h.send(KeyPressed{Key: KeyEscape})

	assert.False(t, h.state.IsOpen)
	assert.Equal(t, focused, h.state.FocusedIndex)
	assert.Equal(t, preview, h.state.PreviewInputValue)
	assert.Equal(t, "filter", h.state.InputValue)

	// a hidden option is not taken
	h.send(KeyPressed{Key: KeyEnter})
	assert.Empty(t, h.state.ActionValues)
	assert.Equal(t, "filter", h.state.InputValue)
}

func TestClearingInputNotifies(t *testing.T) {
	h := newHarness(Config{})
	h.send(InputChanged{Value: "search x"})
	assert.Empty(t, h.changes)

	h.send(InputChanged{Value: "  "})
	assert.Len(t, h.changes, 1)
}

func TestBlurCommitsValidInput(t *testing.T) {
	h := newHarness(Config{})
	h.send(Focused{})
	h.send(InputChanged{Value: "filter qty = 3"})
	h.send(Blurred{})

	assert.Equal(t, []string{"Qty Equals 3"}, h.displays())
	assert.False(t, h.state.IsFocused)
	assert.False(t, h.state.IsOpen)
}

func TestBlurResetsInvalidInput(t *testing.T) {
	h := newHarness(Config{})
	h.send(Focused{})
	h.send(InputChanged{Value: "filter nope"})
	h.send(Blurred{})

	assert.Empty(t, h.state.ActionValues)
	assert.Empty(t, h.state.InputValue)
	assert.False(t, h.state.IsFocused)
	assert.False(t, h.state.IsOpen)
	assert.Nil(t, h.state.Options)

	h.send(Focused{})
	h.send(Blurred{})
	assert.Empty(t, h.state.InputValue)
}

func TestCloseOnComplete(t *testing.T) {
	h := newHarness(Config{CloseOnComplete: true})
	h.commit("search abc")
	assert.False(t, h.state.IsOpen)

	h = newHarness(Config{})
	h.commit("search abc")
	assert.True(t, h.state.IsOpen)
}

func TestStaleOptionsDiscarded(t *testing.T) {
	c := newHarness(Config{}).ctrl
	s := c.Init()

	s, effects := c.Reduce(s, InputChanged{Value: "filter q"})
	req := findEffect[OptionsRequest](t, effects)

	s, _ = c.Reduce(s, InputChanged{Value: "filter qty"})
	s, _ = c.Reduce(s, OptionsFetched{Gen: req.Gen, Options: []ActionOption{{Label: "stale"}}})
	assert.NotContains(t, labels(s.Options), "stale")
}

func TestStaleCompletionDiscarded(t *testing.T) {
	c := newHarness(Config{}).ctrl
	s := c.Init()

	s, _ = c.Reduce(s, InputChanged{Value: "search abc"})
	s, effects := c.Reduce(s, KeyPressed{Key: KeyEnter})
	req := findEffect[CompletionRequest](t, effects)

	s, _ = c.Reduce(s, InputChanged{Value: "search abcd"})
	result := req.Action.CompleteAction(context.Background(), req.Tokens)
	s, effects = c.Reduce(s, ActionCompleted{Gen: req.Gen, Action: req.Action, Result: result})

	assert.Empty(t, s.ActionValues)
	assert.Empty(t, effects)
	assert.Equal(t, "search abcd", s.InputValue)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	h := newHarness(Config{})
	h.commit("search a")
	h.commit("search b")

	before := h.state
	snapshot := append([]ActionValue(nil), before.ActionValues...)
	_, _ = h.ctrl.Reduce(before, ValueRemoved{Index: 0})
	assert.Equal(t, snapshot, before.ActionValues)
}

func TestUniqueValuesFetchedAndCached(t *testing.T) {
	h := newHarness(Config{})
	h.values.values["columnA"] = []string{"item10", "item2", "a b"}

	h.send(InputChanged{Value: "filter columnA ="})
	assert.Equal(t, []string{"columnA"}, h.values.calls)
	assert.False(t, h.state.UniqueValuesLoading)
	assert.Equal(t, []string{"a b", "item2", "item10"}, h.state.UniqueValues)
	assert.Equal(t, []string{"a b", "item2", "item10"}, labels(h.state.Options))

	h.send(InputChanged{Value: "filter columnA = item"})
	assert.Len(t, h.values.calls, 1, "cached per keyword and field")
	assert.Equal(t, []string{"item2", "item10"}, labels(h.state.Options))

	h.send(OptionClicked{Index: 1})
	require.Len(t, h.state.ActionValues, 1)
	assert.Equal(t, "columnA Equals item10", h.state.ActionValues[0].DisplayValue)
}

func TestUniqueValuesInvalidatedOnActionChange(t *testing.T) {
	h := newHarness(Config{})
	h.values.values["columnA"] = []string{"x"}

	h.send(InputChanged{Value: "filter columnA ="})
	require.NotEmpty(t, h.state.UniqueValues)

	h.send(InputChanged{Value: "sort columnA"})
	assert.Nil(t, h.state.UniqueValues)

	h.send(InputChanged{Value: "filter columnA ="})
	assert.Len(t, h.values.calls, 2)
}

func TestUniqueValuesError(t *testing.T) {
	h := newHarness(Config{})
	h.values.err = errors.New("connection refused")

	h.send(InputChanged{Value: "filter columnA ="})
	assert.False(t, h.state.UniqueValuesLoading)
	assert.Empty(t, h.state.UniqueValues)
	assert.Empty(t, h.state.Options)
}

func TestStaleUniqueValuesDiscarded(t *testing.T) {
	c := newHarness(Config{}).ctrl
	s := c.Init()

	s, effects := c.Reduce(s, InputChanged{Value: "filter columnA ="})
	req := findEffect[UniqueValuesRequest](t, effects)

	s, _ = c.Reduce(s, InputChanged{Value: "filter columnB ="})
	s, effects = c.Reduce(s, UniqueValuesFetched{Key: req.Key, Values: []string{"old"}})
	assert.Empty(t, effects)
	assert.Nil(t, s.UniqueValues)
	assert.True(t, s.UniqueValuesLoading)
}

func TestDebounce(t *testing.T) {
	h := newHarness(Config{Debounce: 50 * time.Millisecond})
	c := h.ctrl
	s := c.Init()

	s, effects := c.Reduce(s, InputChanged{Value: "hel"})
	first := findEffect[DebounceRequest](t, effects)
	assert.Equal(t, 50*time.Millisecond, first.Delay)
	for _, e := range effects {
		assert.IsType(t, DebounceRequest{}, e)
	}

	s, effects = c.Reduce(s, InputChanged{Value: "hello"})
	second := findEffect[DebounceRequest](t, effects)

	_, effects = c.Reduce(s, DebounceElapsed{Gen: first.Gen})
	assert.Empty(t, effects)

	_, effects = c.Reduce(s, DebounceElapsed{Gen: second.Gen})
	req := findEffect[OptionsRequest](t, effects)
	assert.Equal(t, []string{"hello"}, req.Tokens)

	_, effects = c.Reduce(s, InputChanged{Value: "filter q"})
	findEffect[OptionsRequest](t, effects)
}

func TestRunnerDebounceWaits(t *testing.T) {
	r := NewRunner(nil, nil, 0)
	ev := r.Execute(context.Background(), DebounceRequest{Gen: 7, Delay: time.Millisecond})
	assert.Equal(t, DebounceElapsed{Gen: 7}, ev)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Nil(t, r.Execute(ctx, DebounceRequest{Gen: 8, Delay: time.Hour}))
}

func TestRunnerWithoutValueSource(t *testing.T) {
	r := NewRunner(nil, nil, 0)
	ev := r.Execute(context.Background(), UniqueValuesRequest{Key: "k", FieldKey: "f"})
	fetched, ok := ev.(UniqueValuesFetched)
	require.True(t, ok)
	assert.Error(t, fetched.Err)
}

func findEffect[T Effect](t *testing.T, effects []Effect) T {
	t.Helper()
	for _, e := range effects {
		if v, ok := e.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T in %v", zero, effects)
	return zero
}
