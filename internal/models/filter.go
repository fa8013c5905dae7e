package models

// Sort is a single ORDER BY directive
type Sort struct {
	FieldKey string
	Desc     bool
}

// Condition is one compiled filter: field key, operator URL suffix and value.
// The filter package owns the operator semantics.
type Condition struct {
	FieldKey string
	Suffix   string
	Value    string
}

// View is the complete query state applied to a data source
type View struct {
	Conditions []Condition
	Search     []string
	Sorts      []Sort
}

// IsEmpty reports whether the view applies nothing
func (v View) IsEmpty() bool {
	return len(v.Conditions) == 0 && len(v.Search) == 0 && len(v.Sorts) == 0
}

// TableData represents a page of rows
type TableData struct {
	Columns   []string
	Rows      [][]string
	TotalRows int64
}
