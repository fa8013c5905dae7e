package filter

import (
	"fmt"
	"strings"

	"github.com/rebeliceyang/omnipg/internal/models"
)

// BuildSelect builds the query for one page of the view over from
func (b *Builder) BuildSelect(from string, view models.View, offset, limit int) (string, []any, error) {
	where, args, err := b.BuildWhere(view)
	if err != nil {
		return "", nil, err
	}
	order, err := b.BuildOrderBy(view.Sorts)
	if err != nil {
		return "", nil, err
	}

	cols := make([]string, len(b.columns))
	for i, col := range b.columns {
		cols[i] = tableAlias + "." + quoteIdent(col.Name)
	}
	selectList := "*"
	if len(cols) > 0 {
		selectList = strings.Join(cols, ", ")
	}

	parts := []string{fmt.Sprintf("SELECT %s FROM %s %s", selectList, from, tableAlias)}
	if where != "" {
		parts = append(parts, where)
	}
	if order != "" {
		parts = append(parts, order)
	}
	parts = append(parts, fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset))
	return strings.Join(parts, " "), args, nil
}

// BuildCount builds the query counting rows of the view
func (b *Builder) BuildCount(from string, view models.View) (string, []any, error) {
	where, args, err := b.BuildWhere(view)
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", from, tableAlias)
	if where != "" {
		sql += " " + where
	}
	return sql, args, nil
}

// BuildDistinct builds the query listing distinct non-null values of
// fieldKey as text
func (b *Builder) BuildDistinct(from, fieldKey string, limit int) (string, error) {
	expr, _, err := b.columnExpr(fieldKey)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"SELECT DISTINCT CAST(%s AS VARCHAR) AS value FROM %s %s WHERE %s IS NOT NULL ORDER BY 1 LIMIT %d",
		expr, from, tableAlias, expr, limit), nil
}
