package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/rebeliceyang/omnipg/internal/models"
)

// Dialect selects the placeholder style of generated SQL
type Dialect int

const (
	Postgres Dialect = iota // $1, $2, ...
	DuckDB                  // ?
)

// tableAlias names the browsed table in generated queries
const tableAlias = "t"

// dateLayouts accept user input and the text form of timestamps as both
// databases print them; fractional seconds are accepted by every layout
// with seconds
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Builder generates SQL WHERE and ORDER BY clauses from views
type Builder struct {
	dialect Dialect
	columns []models.QueryColumn
}

// NewBuilder creates a new builder for the given columns
func NewBuilder(dialect Dialect, columns []models.QueryColumn) *Builder {
	return &Builder{
		dialect: dialect,
		columns: columns,
	}
}

// clause accumulates SQL fragments and their arguments
type clause struct {
	dialect Dialect
	args    []any
}

func (c *clause) arg(v any) string {
	c.args = append(c.args, v)
	if c.dialect == DuckDB {
		return "?"
	}
	return fmt.Sprintf("$%d", len(c.args))
}

// BuildWhere generates a WHERE clause for the view's conditions and search terms
func (b *Builder) BuildWhere(view models.View) (string, []any, error) {
	if len(view.Conditions) == 0 && len(view.Search) == 0 {
		return "", nil, nil
	}

	c := &clause{dialect: b.dialect}
	var parts []string

	for _, cond := range view.Conditions {
		f, err := FromCondition(cond)
		if err != nil {
			return "", nil, err
		}
		part, err := b.buildFilter(c, f)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, part)
	}

	for _, term := range view.Search {
		parts = append(parts, b.buildSearch(c, term))
	}

	return "WHERE " + strings.Join(parts, " AND "), c.args, nil
}

// BuildOrderBy generates an ORDER BY clause
func (b *Builder) BuildOrderBy(sorts []models.Sort) (string, error) {
	if len(sorts) == 0 {
		return "", nil
	}

	var parts []string
	for _, s := range sorts {
		expr, _, err := b.columnExpr(s.FieldKey)
		if err != nil {
			return "", err
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		parts = append(parts, expr+" "+dir)
	}
	return "ORDER BY " + strings.Join(parts, ", "), nil
}

// Column resolves a field key to its column; lookup keys resolve to the
// target column of the lookup
func (b *Builder) Column(fieldKey string) (models.QueryColumn, error) {
	base, field, isLookup := strings.Cut(fieldKey, "/")
	for _, col := range b.columns {
		if !strings.EqualFold(col.Key(), base) {
			continue
		}
		if !isLookup {
			return col, nil
		}
		if col.Lookup == nil {
			return models.QueryColumn{}, errors.Errorf("column %q is not a lookup", base)
		}
		for _, lc := range col.Lookup.Columns {
			if strings.EqualFold(lc.Name, field) {
				return lc, nil
			}
		}
		return models.QueryColumn{}, errors.Errorf("lookup %q has no column %q", base, field)
	}
	return models.QueryColumn{}, errors.Errorf("unknown column %q", fieldKey)
}

// columnExpr returns the SQL expression selecting fieldKey, traversing
// lookups with a correlated subquery
func (b *Builder) columnExpr(fieldKey string) (string, models.QueryColumn, error) {
	col, err := b.Column(fieldKey)
	if err != nil {
		return "", col, err
	}

	base, _, isLookup := strings.Cut(fieldKey, "/")
	if !isLookup {
		return quoteIdent(col.Name), col, nil
	}

	var owner models.QueryColumn
	for _, c := range b.columns {
		if strings.EqualFold(c.Key(), base) {
			owner = c
			break
		}
	}
	lk := owner.Lookup
	expr := fmt.Sprintf("(SELECT l.%s FROM %s l WHERE l.%s = %s.%s)",
		quoteIdent(col.Name), Qualified(lk.Schema, lk.Table), quoteIdent(lk.Key), tableAlias, quoteIdent(owner.Name))
	return expr, col, nil
}

// buildFilter builds a single condition
func (b *Builder) buildFilter(c *clause, f Filter) (string, error) {
	expr, col, err := b.columnExpr(f.ColumnName())
	if err != nil {
		return "", err
	}
	text := "CAST(" + expr + " AS VARCHAR)"

	typ := f.FilterType()
	if col.MultiValue && !BlankOnly(typ) {
		return "", errors.Errorf("filter %s is not supported on list column %q", typ.Name, f.ColumnName())
	}
	if typ.RequiresValue && f.Value() == "" {
		return "", errors.Errorf("filter %s on %q requires a value", typ.Name, f.ColumnName())
	}

	switch typ.Suffix {
	case IsBlank.Suffix:
		return expr + " IS NULL", nil
	case NonBlank.Suffix:
		return expr + " IS NOT NULL", nil
	case Contains.Suffix:
		return fmt.Sprintf("%s ILIKE %s ESCAPE '\\'", text, c.arg("%"+escapeLike(f.Value())+"%")), nil
	case DoesNotContain.Suffix:
		return fmt.Sprintf("(%s IS NULL OR %s NOT ILIKE %s ESCAPE '\\')", expr, text, c.arg("%"+escapeLike(f.Value())+"%")), nil
	case StartsWith.Suffix:
		return fmt.Sprintf("%s ILIKE %s ESCAPE '\\'", text, c.arg(escapeLike(f.Value())+"%")), nil
	case DoesNotStartWith.Suffix:
		return fmt.Sprintf("(%s IS NULL OR %s NOT ILIKE %s ESCAPE '\\')", expr, text, c.arg(escapeLike(f.Value())+"%")), nil
	case In.Suffix, NotIn.Suffix:
		var holders []string
		for _, v := range f.Values() {
			arg, err := typedArg(col, v)
			if err != nil {
				return "", err
			}
			holders = append(holders, c.arg(arg))
		}
		if len(holders) == 0 {
			return "", errors.Errorf("filter %s on %q requires a value", typ.Name, f.ColumnName())
		}
		op := "IN"
		if typ.Suffix == NotIn.Suffix {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", expr, op, strings.Join(holders, ", ")), nil
	case Search.Suffix:
		return fmt.Sprintf("%s ILIKE %s ESCAPE '\\'", text, c.arg("%"+escapeLike(f.Value())+"%")), nil
	}

	op, ok := comparisonOps[typ.Suffix]
	if !ok {
		return "", errors.Errorf("unsupported filter type: %s", typ.Name)
	}
	arg, err := typedArg(col, f.Value())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", expr, op, c.arg(arg)), nil
}

var comparisonOps = map[string]string{
	Equal.Suffix:              "=",
	NotEqual.Suffix:           "<>",
	GreaterThan.Suffix:        ">",
	GreaterThanOrEqual.Suffix: ">=",
	LessThan.Suffix:           "<",
	LessThanOrEqual.Suffix:    "<=",
}

// buildSearch matches a term against every text column
func (b *Builder) buildSearch(c *clause, term string) string {
	var cols []string
	for _, col := range b.columns {
		if col.JSONType == models.JSONString {
			cols = append(cols, quoteIdent(col.Name))
		}
	}
	if len(cols) == 0 {
		for _, col := range b.columns {
			cols = append(cols, quoteIdent(col.Name))
		}
	}

	pattern := "%" + escapeLike(term) + "%"
	var ors []string
	for _, col := range cols {
		ors = append(ors, fmt.Sprintf("CAST(%s AS VARCHAR) ILIKE %s ESCAPE '\\'", col, c.arg(pattern)))
	}
	return "(" + strings.Join(ors, " OR ") + ")"
}

// typedArg converts a raw value into the Go type matching the column
func typedArg(col models.QueryColumn, raw string) (any, error) {
	switch col.JSONType {
	case models.JSONInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		return v, errors.Wrapf(err, "invalid integer %q for %s", raw, col.Name)
	case models.JSONFloat:
		v, err := strconv.ParseFloat(raw, 64)
		return v, errors.Wrapf(err, "invalid number %q for %s", raw, col.Name)
	case models.JSONBoolean:
		v, err := strconv.ParseBool(raw)
		return v, errors.Wrapf(err, "invalid boolean %q for %s", raw, col.Name)
	case models.JSONDate:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, errors.Errorf("invalid date %q for %s", raw, col.Name)
	default:
		return raw, nil
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Qualified quotes a schema-qualified table name
func Qualified(schema, table string) string {
	if schema == "" {
		return quoteIdent(table)
	}
	return quoteIdent(schema) + "." + quoteIdent(table)
}
