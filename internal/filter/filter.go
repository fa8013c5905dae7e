package filter

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/rebeliceyang/omnipg/internal/models"
)

// DefaultRegion prefixes every filter parameter name
const DefaultRegion = "query"

// MultiValueSeparator joins values of multi-valued types
const MultiValueSeparator = ";"

// Filter is a single column condition: field key, operator and raw value
type Filter struct {
	fieldKey string
	typ      Type
	value    string
}

// Create builds a filter. Values of types that take none are dropped.
func Create(fieldKey, value string, typ Type) Filter {
	if !typ.RequiresValue {
		value = ""
	}
	return Filter{
		fieldKey: fieldKey,
		typ:      typ,
		value:    strings.TrimSpace(value),
	}
}

// ColumnName returns the field key the filter applies to
func (f Filter) ColumnName() string {
	return f.fieldKey
}

// FilterType returns the operator
func (f Filter) FilterType() Type {
	return f.typ
}

// Value returns the raw value
func (f Filter) Value() string {
	return f.value
}

// Values splits the value of a multi-valued filter
func (f Filter) Values() []string {
	if !f.typ.MultiValued {
		return []string{f.value}
	}
	var vals []string
	for _, v := range strings.Split(f.value, MultiValueSeparator) {
		if v = strings.TrimSpace(v); v != "" {
			vals = append(vals, v)
		}
	}
	return vals
}

// URLParameterName returns "<region>.<fieldKey>~<suffix>"
func (f Filter) URLParameterName(region string) string {
	if region == "" {
		region = DefaultRegion
	}
	return region + "." + f.fieldKey + "~" + f.typ.Suffix
}

// URLParameterValue returns the value as carried in a URL
func (f Filter) URLParameterValue() string {
	return f.value
}

// URLParam returns the encoded "name=value" pair for the default region
func (f Filter) URLParam() string {
	return url.Values{f.URLParameterName(DefaultRegion): {f.URLParameterValue()}}.Encode()
}

// Condition converts the filter for a data source view
func (f Filter) Condition() models.Condition {
	return models.Condition{
		FieldKey: f.fieldKey,
		Suffix:   f.typ.Suffix,
		Value:    f.value,
	}
}

// FromCondition rebuilds a filter from a view condition
func FromCondition(cond models.Condition) (Filter, error) {
	typ, ok := BySuffix(cond.Suffix)
	if !ok {
		return Filter{}, errors.Errorf("unknown filter type %q", cond.Suffix)
	}
	return Create(cond.FieldKey, cond.Value, typ), nil
}

// ParseParam parses an encoded "region.fieldKey~suffix=value" pair
func ParseParam(param string) (Filter, error) {
	vals, err := url.ParseQuery(param)
	if err != nil {
		return Filter{}, errors.Wrapf(err, "failed to parse filter param %q", param)
	}
	if len(vals) != 1 {
		return Filter{}, errors.Errorf("expected one filter in %q, got %d", param, len(vals))
	}

	var name, value string
	for k, v := range vals {
		name = k
		if len(v) > 0 {
			value = v[0]
		}
	}

	dot := strings.Index(name, ".")
	tilde := strings.LastIndex(name, "~")
	if dot < 0 || tilde < dot+2 {
		return Filter{}, errors.Errorf("malformed filter name %q", name)
	}

	typ, ok := BySuffix(name[tilde+1:])
	if !ok {
		return Filter{}, errors.Errorf("unknown filter type %q", name[tilde+1:])
	}
	return Create(name[dot+1:tilde], value, typ), nil
}
