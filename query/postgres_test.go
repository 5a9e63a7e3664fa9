package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueExpr(t *testing.T) {
	expr, ok := ValueExpr("status")
	require.True(t, ok)
	assert.Equal(t, "object ->> 'status'", expr)

	expr, ok = ValueExpr("address.city")
	require.True(t, ok)
	assert.Equal(t, "object #>> '{address,city}'", expr)

	expr, ok = ValueExpr("created")
	require.True(t, ok)
	assert.Equal(t, "created_at", expr)

	expr, ok = ValueExpr("id")
	require.True(t, ok)
	assert.Equal(t, "id", expr)
}

func TestValueExprRejectsUnsafeSegments(t *testing.T) {
	_, ok := ValueExpr("name'; DROP TABLE objects; --")
	assert.False(t, ok)

	_, ok = ValueExpr("a.b c")
	assert.False(t, ok)

	_, ok = ValueExpr("")
	assert.False(t, ok)
}

func TestFilterClauseScalar(t *testing.T) {
	expr, args, ok := FilterClause("status", "open")
	require.True(t, ok)
	// Scalar filters also match array membership.
	assert.Equal(t, "(object ->> 'status' = ? OR object -> 'status' @> to_jsonb(?::text))", expr)
	assert.Equal(t, []interface{}{"open", "open"}, args)
}

func TestFilterClauseNativeColumn(t *testing.T) {
	expr, args, ok := FilterClause("version", "0.0.2")
	require.True(t, ok)
	assert.Equal(t, "version = ?", expr)
	assert.Equal(t, []interface{}{"0.0.2"}, args)
}

func TestFilterClauseRangeNumeric(t *testing.T) {
	// A text comparison would put '9' above '10'.
	expr, args, ok := FilterClause("price", map[string]interface{}{"gte": "10"})
	require.True(t, ok)
	assert.Equal(t, "(object ->> 'price')::numeric >= ?", expr)
	assert.Equal(t, []interface{}{float64(10)}, args)
}

func TestFilterClauseRangeText(t *testing.T) {
	expr, args, ok := FilterClause("published", map[string]interface{}{"lt": "2026-01-01"})
	require.True(t, ok)
	assert.Equal(t, "object ->> 'published' < ?", expr)
	assert.Equal(t, []interface{}{"2026-01-01"}, args)
}

func TestFilterClauseRangeNativeColumn(t *testing.T) {
	// Native columns already carry their own types, no cast.
	expr, args, ok := FilterClause("id", map[string]interface{}{"lte": "42"})
	require.True(t, ok)
	assert.Equal(t, "id <= ?", expr)
	assert.Equal(t, []interface{}{"42"}, args)
}

func TestFilterClauseRangeUnknownOperator(t *testing.T) {
	_, _, ok := FilterClause("price", map[string]interface{}{"near": "10"})
	assert.False(t, ok)
}

func TestFilterClauseList(t *testing.T) {
	expr, args, ok := FilterClause("status", []interface{}{"open", "closed"})
	require.True(t, ok)
	assert.Contains(t, expr, " OR ")
	// Two predicates per element: equality and array membership.
	assert.Len(t, args, 4)
}

func TestFilterClauseUnsafeKey(t *testing.T) {
	_, _, ok := FilterClause("status'; --", "open")
	assert.False(t, ok)
}

func TestOrderClause(t *testing.T) {
	expr, ok := OrderClause(SortField{Field: "name", Direction: "DESC"})
	require.True(t, ok)
	assert.Equal(t, "object ->> 'name' DESC", expr)

	expr, ok = OrderClause(SortField{Field: "created", Direction: "asc"})
	require.True(t, ok)
	assert.Equal(t, "created_at ASC", expr)

	_, ok = OrderClause(SortField{Field: "x; DROP", Direction: "ASC"})
	assert.False(t, ok)
}

func TestDescendantPath(t *testing.T) {
	path, ok := DescendantPath("items_0_name")
	require.True(t, ok)
	assert.Equal(t, `$."items".**."name"`, path)

	path, ok = DescendantPath("entries_12_value")
	require.True(t, ok)
	assert.Equal(t, `$."entries".**."value"`, path)
}

func TestDescendantPathPlainSnakeCaseStaysLiteral(t *testing.T) {
	// Ordinary snake_case names carry no numeric segment and stay
	// literal field names.
	_, ok := DescendantPath("first_name")
	assert.False(t, ok)

	_, ok = DescendantPath("created")
	assert.False(t, ok)

	_, ok = DescendantPath("address.city")
	assert.False(t, ok)
}

func TestFilterClauseDescendant(t *testing.T) {
	expr, args, ok := FilterClause("items_0_name", "widget")
	require.True(t, ok)
	assert.Equal(t, "jsonb_path_exists(object, CAST(? AS jsonpath))", expr)
	require.Len(t, args, 1)
	assert.Equal(t, `$."items".**."name" ? (@ == "widget")`, args[0])
}

func TestFilterClauseDescendantNumericValue(t *testing.T) {
	_, args, ok := FilterClause("items_0_count", "5")
	require.True(t, ok)
	require.Len(t, args, 1)
	// Numeric strings match both string and number representations.
	assert.Equal(t, `$."items".**."count" ? (@ == "5" || @ == 5)`, args[0])
}
