package omnibox

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/rebeliceyang/omnipg/internal/filter"
	"github.com/rebeliceyang/omnipg/internal/models"
)

// BuildView converts committed values into the view a data source queries
func BuildView(collections []ActionValueCollection) (models.View, error) {
	var view models.View
	for _, c := range collections {
		for _, v := range c.Values {
			switch c.Action.Kind() {
			case KindFilter:
				f, err := filter.ParseParam(v.Param)
				if err != nil {
					return models.View{}, errors.Wrapf(err, "invalid filter %q", v.DisplayValue)
				}
				view.Conditions = append(view.Conditions, f.Condition())
			case KindSearch:
				text, ok := singleParam(v.Param, SearchParam)
				if !ok {
					return models.View{}, errors.Errorf("invalid search %q", v.Param)
				}
				view.Search = append(view.Search, text)
			case KindSort:
				key, ok := singleParam(v.Param, SortParam)
				if !ok {
					return models.View{}, errors.Errorf("invalid sort %q", v.Param)
				}
				view.Sorts = append(view.Sorts, models.Sort{
					FieldKey: strings.TrimPrefix(key, "-"),
					Desc:     strings.HasPrefix(key, "-"),
				})
			default:
				return models.View{}, errors.Errorf("unknown action kind %s", c.Action.Kind())
			}
		}
	}
	return view, nil
}

// Params returns the URL parameters of values in commit order
func Params(values []ActionValue) []string {
	params := make([]string, 0, len(values))
	for _, v := range values {
		params = append(params, v.Param)
	}
	return params
}

// QueryString joins the parameters of the committed set
func QueryString(collections []ActionValueCollection) string {
	var params []string
	for _, c := range collections {
		for _, v := range c.Values {
			params = append(params, v.Param)
		}
	}
	return strings.Join(params, "&")
}

// Restore rebuilds committed values from URL parameters. Parameters that no
// action recognises are returned separately.
func Restore(actions []Action, params []string) ([]ActionValue, []string) {
	var values []ActionValue
	var unknown []string
	for _, p := range params {
		found := false
		for _, a := range actions {
			if v, ok := a.ParseParam(p); ok {
				values = append(values, v)
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, p)
		}
	}
	return values, unknown
}
