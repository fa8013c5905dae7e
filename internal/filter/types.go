package filter

import (
	"strings"

	"github.com/rebeliceyang/omnipg/internal/models"
)

// Type describes a filter operator
type Type struct {
	Name          string
	Display       string // human text, e.g. "Is Not Blank"
	Symbol        string // short symbol, e.g. "="; empty if none
	Suffix        string // URL suffix, e.g. "isnonblank"
	RequiresValue bool
	MultiValued   bool
	SuggestValues bool // distinct column values make sensible completions
}

// String returns the operator as shown in a display value
func (t Type) String() string {
	return t.Display
}

// IsZero reports whether t is the zero Type
func (t Type) IsZero() bool {
	return t.Suffix == ""
}

// Filter operator types
var (
	Equal              = Type{Name: "EQUAL", Display: "Equals", Symbol: "=", Suffix: "eq", RequiresValue: true, SuggestValues: true}
	NotEqual           = Type{Name: "NEQ", Display: "Does Not Equal", Symbol: "<>", Suffix: "neq", RequiresValue: true, SuggestValues: true}
	GreaterThan        = Type{Name: "GT", Display: "Is Greater Than", Symbol: ">", Suffix: "gt", RequiresValue: true}
	GreaterThanOrEqual = Type{Name: "GTE", Display: "Is Greater Than or Equal To", Symbol: ">=", Suffix: "gte", RequiresValue: true}
	LessThan           = Type{Name: "LT", Display: "Is Less Than", Symbol: "<", Suffix: "lt", RequiresValue: true}
	LessThanOrEqual    = Type{Name: "LTE", Display: "Is Less Than or Equal To", Symbol: "=<", Suffix: "lte", RequiresValue: true}
	IsBlank            = Type{Name: "ISBLANK", Display: "Is Blank", Suffix: "isblank"}
	NonBlank           = Type{Name: "NONBLANK", Display: "Is Not Blank", Suffix: "isnonblank"}
	Contains           = Type{Name: "CONTAINS", Display: "Contains", Suffix: "contains", RequiresValue: true}
	DoesNotContain     = Type{Name: "DOES_NOT_CONTAIN", Display: "Does Not Contain", Suffix: "doesnotcontain", RequiresValue: true}
	StartsWith         = Type{Name: "STARTS_WITH", Display: "Starts With", Suffix: "startswith", RequiresValue: true}
	DoesNotStartWith   = Type{Name: "DOES_NOT_START_WITH", Display: "Does Not Start With", Suffix: "doesnotstartwith", RequiresValue: true}
	In                 = Type{Name: "IN", Display: "Equals One Of", Suffix: "in", RequiresValue: true, MultiValued: true}
	NotIn              = Type{Name: "NOT_IN", Display: "Does Not Equal Any Of", Suffix: "notin", RequiresValue: true, MultiValued: true}
	Search             = Type{Name: "Q", Display: "Search", Suffix: "q", RequiresValue: true}
)

// All lists every known type; used to resolve URL suffixes
var All = []Type{
	Equal, NotEqual,
	GreaterThan, GreaterThanOrEqual, LessThan, LessThanOrEqual,
	IsBlank, NonBlank,
	Contains, DoesNotContain, StartsWith, DoesNotStartWith,
	In, NotIn, Search,
}

var comparable = []Type{
	Equal, NotEqual,
	IsBlank, NonBlank,
	GreaterThan, GreaterThanOrEqual, LessThan, LessThanOrEqual,
	In, NotIn,
}

var typesByJSON = map[models.JSONType][]Type{
	models.JSONString: {
		Equal, NotEqual,
		IsBlank, NonBlank,
		GreaterThan, GreaterThanOrEqual, LessThan, LessThanOrEqual,
		Contains, DoesNotContain, StartsWith, DoesNotStartWith,
		In, NotIn,
	},
	models.JSONInt:     comparable,
	models.JSONFloat:   comparable,
	models.JSONDate:    comparable,
	models.JSONBoolean: {Equal, NotEqual, IsBlank, NonBlank},
}

// TypesForJSON returns the operators usable on a column of the given type,
// in display order
func TypesForJSON(jt models.JSONType) []Type {
	types, ok := typesByJSON[jt]
	if !ok {
		types = typesByJSON[models.JSONString]
	}
	return append([]Type(nil), types...)
}

// TypesForColumn returns the operators usable on col. List columns only
// support the blank checks.
func TypesForColumn(col models.QueryColumn) []Type {
	if col.MultiValue {
		return []Type{IsBlank, NonBlank}
	}
	return TypesForJSON(col.JSONType)
}

// BlankOnly reports whether t is one of the blank checks
func BlankOnly(t Type) bool {
	return t.Suffix == IsBlank.Suffix || t.Suffix == NonBlank.Suffix
}

// BySuffix resolves a URL suffix, case-insensitively
func BySuffix(suffix string) (Type, bool) {
	for _, t := range All {
		if strings.EqualFold(t.Suffix, suffix) {
			return t, true
		}
	}
	return Type{}, false
}
