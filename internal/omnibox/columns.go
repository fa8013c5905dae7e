package omnibox

import (
	"strings"

	"github.com/rebeliceyang/omnipg/internal/models"
)

// ColumnsFunc returns the columns of the table being browsed
type ColumnsFunc func() []models.QueryColumn

// columnMatch is the result of resolving leading tokens to a column
type columnMatch struct {
	name     string // text as typed
	column   *models.QueryColumn
	target   *models.QueryColumn // lookup target for "owner/field"
	fieldKey string
	consumed int
}

// pending reports a lookup column whose target field is not resolved yet
func (m columnMatch) pending() bool {
	return m.column != nil && m.column.IsLookup() && m.target == nil && strings.Contains(m.fieldKey, "/")
}

// effective is the column whose type governs operators
func (m columnMatch) effective() *models.QueryColumn {
	if m.target != nil {
		return m.target
	}
	return m.column
}

func (m columnMatch) caption() string {
	if m.column == nil {
		return m.name
	}
	if m.target != nil {
		return m.column.Caption() + "/" + m.target.Caption()
	}
	return m.column.Caption()
}

// text is the column as it re-tokenizes
func (m columnMatch) text() string {
	if m.target != nil {
		return quoteIfNeeded(m.column.Name + "/" + m.target.Name)
	}
	return quoteIfNeeded(m.column.Name)
}

// resolveColumn resolves the longest run of leading tokens that exactly names
// a column. Unresolved input leaves the first token as the column name.
func resolveColumn(tokens []string, columns []models.QueryColumn) columnMatch {
	for n := len(tokens); n >= 1; n-- {
		candidate := strings.Join(tokens[:n], " ")
		if m, ok := matchColumn(candidate, columns); ok {
			if n > 1 && m.pending() {
				continue
			}
			m.name = candidate
			m.consumed = n
			return m
		}
	}
	if len(tokens) > 0 {
		return columnMatch{name: tokens[0], consumed: 1}
	}
	return columnMatch{}
}

// matchColumn matches by name, then short caption, then "lookup/field".
// Matches are exact and case-insensitive.
func matchColumn(candidate string, columns []models.QueryColumn) (columnMatch, bool) {
	for i := range columns {
		if strings.EqualFold(columns[i].Name, candidate) {
			return columnMatch{column: &columns[i], fieldKey: columns[i].Key()}, true
		}
	}
	for i := range columns {
		if columns[i].ShortCaption != "" && strings.EqualFold(columns[i].ShortCaption, candidate) {
			return columnMatch{column: &columns[i], fieldKey: columns[i].Key()}, true
		}
	}

	owner, field, ok := strings.Cut(candidate, "/")
	if !ok {
		return columnMatch{}, false
	}
	for i := range columns {
		col := &columns[i]
		if !col.IsLookup() || !(strings.EqualFold(col.Name, owner) || strings.EqualFold(col.ShortCaption, owner)) {
			continue
		}
		m := columnMatch{column: col, fieldKey: col.Key() + "/" + field}
		for j := range col.Lookup.Columns {
			lc := &col.Lookup.Columns[j]
			if strings.EqualFold(lc.Name, field) || (lc.ShortCaption != "" && strings.EqualFold(lc.ShortCaption, field)) {
				m.target = lc
				m.fieldKey = col.Key() + "/" + lc.Name
				break
			}
		}
		return m, true
	}
	return columnMatch{}, false
}

// columnByKey resolves a field key from a URL parameter
func columnByKey(fieldKey string, columns []models.QueryColumn) (columnMatch, bool) {
	key, field, isLookup := strings.Cut(fieldKey, "/")
	for i := range columns {
		col := &columns[i]
		if !strings.EqualFold(col.Key(), key) {
			continue
		}
		if !isLookup {
			return columnMatch{name: col.Name, column: col, fieldKey: col.Key()}, true
		}
		if !col.IsLookup() {
			return columnMatch{}, false
		}
		for j := range col.Lookup.Columns {
			lc := &col.Lookup.Columns[j]
			if strings.EqualFold(lc.Name, field) {
				return columnMatch{name: col.Name + "/" + lc.Name, column: col, target: lc, fieldKey: col.Key() + "/" + lc.Name}, true
			}
		}
		return columnMatch{}, false
	}
	return columnMatch{}, false
}

// columnOptions lists columns whose name or caption contains typed
func columnOptions(columns []models.QueryColumn, typed string) []ActionOption {
	typed = strings.ToLower(typed)
	var opts []ActionOption
	for _, col := range columns {
		if typed != "" &&
			!strings.Contains(strings.ToLower(col.Name), typed) &&
			!strings.Contains(strings.ToLower(col.ShortCaption), typed) {
			continue
		}
		next := string(col.JSONType)
		switch {
		case col.IsLookup():
			next = "lookup"
		case col.MultiValue:
			next = "list"
		}
		opts = append(opts, ActionOption{
			Label:       col.Caption(),
			NextLabel:   next,
			Value:       quoteIfNeeded(col.Name),
			Replacement: quoteIfNeeded(col.Name),
			Selectable:  true,
		})
	}
	return opts
}

// lookupOptions lists the target fields of a lookup column
func lookupOptions(m columnMatch) []ActionOption {
	_, typed, _ := strings.Cut(m.name, "/")
	typed = strings.ToLower(typed)

	var opts []ActionOption
	for _, lc := range m.column.Lookup.Columns {
		if typed != "" &&
			!strings.Contains(strings.ToLower(lc.Name), typed) &&
			!strings.Contains(strings.ToLower(lc.ShortCaption), typed) {
			continue
		}
		value := quoteIfNeeded(m.column.Name + "/" + lc.Name)
		opts = append(opts, ActionOption{
			Label:       m.column.Caption() + "/" + lc.Caption(),
			NextLabel:   string(lc.JSONType),
			Value:       value,
			Replacement: value,
			Selectable:  true,
		})
	}
	return opts
}
