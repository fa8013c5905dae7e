package models

import "strings"

// JSONType is the coarse value type of a column, used to pick filter operators
type JSONType string

const (
	JSONString  JSONType = "string"
	JSONInt     JSONType = "int"
	JSONFloat   JSONType = "float"
	JSONBoolean JSONType = "boolean"
	JSONDate    JSONType = "date"
)

// Lookup describes a foreign-key target a column can be traversed through
// with a "column/field" field key
type Lookup struct {
	Schema  string
	Table   string
	Key     string
	Columns []QueryColumn
}

// QueryColumn holds the metadata of one queryable column
type QueryColumn struct {
	Name         string
	ShortCaption string
	FieldKey     string
	DataType     string // source type name, e.g. "character varying"
	JSONType     JSONType
	Nullable     bool
	MultiValue   bool
	Lookup       *Lookup
}

// Caption returns the display caption, falling back to the name
func (c QueryColumn) Caption() string {
	if c.ShortCaption != "" {
		return c.ShortCaption
	}
	return c.Name
}

// Key returns the field key used in filter parameters
func (c QueryColumn) Key() string {
	if c.FieldKey != "" {
		return c.FieldKey
	}
	return c.Name
}

// IsLookup reports whether the column can be traversed with "/"
func (c QueryColumn) IsLookup() bool {
	return c.Lookup != nil
}

var jsonTypes = map[string]JSONType{
	"boolean": JSONBoolean,
	"bool":    JSONBoolean,

	"smallint":  JSONInt,
	"integer":   JSONInt,
	"bigint":    JSONInt,
	"int":       JSONInt,
	"int2":      JSONInt,
	"int4":      JSONInt,
	"int8":      JSONInt,
	"tinyint":   JSONInt,
	"hugeint":   JSONInt,
	"utinyint":  JSONInt,
	"usmallint": JSONInt,
	"uinteger":  JSONInt,
	"ubigint":   JSONInt,
	"uhugeint":  JSONInt,

	"numeric":          JSONFloat,
	"decimal":          JSONFloat,
	"real":             JSONFloat,
	"float":            JSONFloat,
	"float4":           JSONFloat,
	"float8":           JSONFloat,
	"double":           JSONFloat,
	"double precision": JSONFloat,

	"date":                        JSONDate,
	"timestamp":                   JSONDate,
	"timestamptz":                 JSONDate,
	"timestamp without time zone": JSONDate,
	"timestamp with time zone":    JSONDate,
	"timestamp_s":                 JSONDate,
	"timestamp_ms":                JSONDate,
	"timestamp_ns":                JSONDate,
}

// JSONTypeFor maps a PostgreSQL or DuckDB type name onto a JSONType. Type
// modifiers such as "(10,2)" are ignored; unknown types, arrays, ranges,
// intervals and times of day are strings.
func JSONTypeFor(dataType string) JSONType {
	t := strings.ToLower(strings.TrimSpace(dataType))
	if strings.HasSuffix(t, "[]") {
		return JSONString
	}
	// "timestamp(3) with time zone" keeps the words around the modifier
	if open := strings.Index(t, "("); open >= 0 {
		rest := ""
		if end := strings.Index(t[open:], ")"); end >= 0 {
			rest = t[open+end+1:]
		}
		t = strings.Join(strings.Fields(t[:open]+" "+rest), " ")
	}
	if typ, ok := jsonTypes[t]; ok {
		return typ
	}
	return JSONString
}

// CaptionFor builds a human caption from a snake_case or camelCase name:
// "extra_test_column" and "extraTestColumn" both become "Extra Test Column"
func CaptionFor(name string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == ' ' || r == '-':
			flush()
		case r >= 'A' && r <= 'Z' && i > 0 && runes[i-1] >= 'a' && runes[i-1] <= 'z':
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()

	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
