package omnibox

import (
	"context"

	"github.com/rebeliceyang/omnipg/internal/models"
)

func testColumns() []models.QueryColumn {
	return []models.QueryColumn{
		{Name: "columnA", JSONType: models.JSONString},
		{Name: "columnB", JSONType: models.JSONString},
		{Name: "extra_test_column", ShortCaption: "Extra Test Column", JSONType: models.JSONString},
		{Name: "molecule_set", ShortCaption: "Molecule Set", JSONType: models.JSONString},
		{Name: "qty", ShortCaption: "Qty", JSONType: models.JSONInt},
		{
			Name:         "sample",
			ShortCaption: "Sample",
			JSONType:     models.JSONInt,
			Lookup: &models.Lookup{
				Schema: "public",
				Table:  "samples",
				Key:    "id",
				Columns: []models.QueryColumn{
					{Name: "label", ShortCaption: "Label", JSONType: models.JSONString},
					{Name: "id", JSONType: models.JSONInt},
				},
			},
		},
	}
}

type fakeValues struct {
	calls  []string
	values map[string][]string
	err    error
}

func (f *fakeValues) DistinctValues(_ context.Context, fieldKey string, _ int) ([]string, error) {
	f.calls = append(f.calls, fieldKey)
	return f.values[fieldKey], f.err
}

type harness struct {
	ctrl    *Controller
	runner  *Runner
	values  *fakeValues
	state   State
	changes []Changed
}

func newHarness(cfg Config) *harness {
	columns := func() []models.QueryColumn { return testColumns() }
	if cfg.Actions == nil {
		cfg.Actions = []Action{
			NewFilterAction(columns),
			NewSearchAction(),
			NewSortAction(columns),
		}
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return "omnibox-test" }
	}

	h := &harness{
		ctrl:   NewController(cfg),
		values: &fakeValues{values: map[string][]string{}},
	}
	h.runner = NewRunner(h.values, nil, 100)
	h.state = h.ctrl.Init()
	return h
}

func (h *harness) send(ev Event) {
	var changes []Changed
	h.state, changes = h.runner.Dispatch(context.Background(), h.ctrl, h.state, ev)
	h.changes = append(h.changes, changes...)
}

func (h *harness) commit(input string) {
	h.send(InputChanged{Value: input})
	h.send(KeyPressed{Key: KeyEnter})
}

func (h *harness) displays() []string {
	var out []string
	for _, v := range h.state.ActionValues {
		out = append(out, v.DisplayValue)
	}
	return out
}

func labels(opts []ActionOption) []string {
	var out []string
	for _, o := range opts {
		out = append(out, o.Label)
	}
	return out
}
