package omnibox

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/rebeliceyang/omnipg/internal/logging"
)

// ValueSource supplies distinct values of a column for suggestions
type ValueSource interface {
	DistinctValues(ctx context.Context, fieldKey string, limit int) ([]string, error)
}

// Runner executes the effects Reduce returns
type Runner struct {
	values ValueSource
	logger logging.Logger
	limit  int
}

// NewRunner creates a runner. limit caps the distinct values fetched per
// column.
func NewRunner(values ValueSource, logger logging.Logger, limit int) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{
		values: values,
		logger: logger,
		limit:  limit,
	}
}

// Execute performs one effect and returns the event it produces, or nil.
// It blocks; interactive callers run it off the UI loop.
func (r *Runner) Execute(ctx context.Context, eff Effect) Event {
	switch e := eff.(type) {
	case OptionsRequest:
		return OptionsFetched{
			Gen:     e.Gen,
			Options: e.Action.FetchOptions(ctx, e.Tokens, e.Context),
		}
	case CompletionRequest:
		return ActionCompleted{
			Gen:     e.Gen,
			Action:  e.Action,
			Result:  e.Action.CompleteAction(ctx, e.Tokens),
			Trigger: e.Trigger,
		}
	case UniqueValuesRequest:
		if r.values == nil {
			return UniqueValuesFetched{Key: e.Key, Err: errors.New("no value source")}
		}
		values, err := r.values.DistinctValues(ctx, e.FieldKey, r.limit)
		if err != nil {
			r.logger.Error(ctx, "failed to fetch distinct values", err, "field", e.FieldKey)
		}
		return UniqueValuesFetched{Key: e.Key, Values: values, Err: err}
	case DebounceRequest:
		t := time.NewTimer(e.Delay)
		defer t.Stop()
		select {
		case <-t.C:
			return DebounceElapsed{Gen: e.Gen}
		case <-ctx.Done():
			return nil
		}
	case Warning:
		r.logger.Warn(ctx, e.Message, "input", e.Input)
	case Changed:
	}
	return nil
}

// Dispatch applies ev and drains every resulting effect synchronously,
// skipping debounce delays. It returns the settled state and the change
// notifications in order.
func (r *Runner) Dispatch(ctx context.Context, c *Controller, s State, ev Event) (State, []Changed) {
	var changes []Changed
	queue := []Event{ev}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		var effects []Effect
		s, effects = c.Reduce(s, next)
		for _, eff := range effects {
			switch e := eff.(type) {
			case Changed:
				changes = append(changes, e)
			case DebounceRequest:
				queue = append(queue, DebounceElapsed{Gen: e.Gen})
			default:
				if out := r.Execute(ctx, eff); out != nil {
					queue = append(queue, out)
				}
			}
		}
	}
	return s, changes
}
