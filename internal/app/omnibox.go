package app

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/rebeliceyang/omnipg/internal/config"
	"github.com/rebeliceyang/omnipg/internal/db"
	"github.com/rebeliceyang/omnipg/internal/logging"
	"github.com/rebeliceyang/omnipg/internal/models"
	"github.com/rebeliceyang/omnipg/internal/omnibox"
)

// NewController builds the OmniBox controller and effect runner for src
func NewController(cfg *config.Config, src db.Source, logger logging.Logger) (*omnibox.Controller, *omnibox.Runner) {
	oc := cfg.OmniBox
	columns := func() []models.QueryColumn { return src.Columns() }

	c := omnibox.NewController(omnibox.Config{
		Actions: []omnibox.Action{
			omnibox.NewFilterAction(columns, omnibox.WithSingleton(oc.SingletonFilter)),
			omnibox.NewSearchAction(),
			omnibox.NewSortAction(columns, omnibox.WithSingleton(oc.SingletonSort)),
		},
		BackspaceRemoves: oc.BackspaceRemoves,
		CloseOnComplete:  oc.CloseOnComplete,
		Debounce:         time.Duration(oc.DebounceMS) * time.Millisecond,
		MaxOptions:       oc.MaxOptions,
	})
	return c, omnibox.NewRunner(src, logger, oc.DistinctLimit)
}

// ApplyTexts commits each text as if typed into the OmniBox and confirmed
// with enter, starting from params. Text that does not commit is an error.
func ApplyTexts(ctx context.Context, c *omnibox.Controller, r *omnibox.Runner, params, texts []string) ([]omnibox.ActionValue, error) {
	values, unknown := omnibox.Restore(c.Actions(), params)
	if len(unknown) > 0 {
		return nil, errors.Errorf("unrecognised parameters: %v", unknown)
	}

	s, _ := r.Dispatch(ctx, c, c.Init(), omnibox.ValuesReplaced{Values: values})
	for _, text := range texts {
		before := len(s.ActionValues)
		s, _ = r.Dispatch(ctx, c, s, omnibox.InputChanged{Value: text})
		var changes []omnibox.Changed
		s, changes = r.Dispatch(ctx, c, s, omnibox.KeyPressed{Key: omnibox.KeyEnter})
		if len(changes) == 0 && len(s.ActionValues) <= before {
			return nil, errors.Errorf("could not apply %q", text)
		}
	}
	return s.ActionValues, nil
}

// FetchAll pages through every row of src matching view
func FetchAll(ctx context.Context, src db.Source, view models.View, pageSize int) (*models.TableData, error) {
	if pageSize <= 0 {
		pageSize = 1000
	}

	all := &models.TableData{}
	for offset := 0; ; offset += pageSize {
		page, err := src.Page(ctx, view, offset, pageSize)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fetch rows at offset %d", offset)
		}
		all.Columns = page.Columns
		all.TotalRows = page.TotalRows
		all.Rows = append(all.Rows, page.Rows...)
		if len(page.Rows) < pageSize || int64(len(all.Rows)) >= page.TotalRows {
			return all, nil
		}
	}
}
