package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObjectQueryDefaults(t *testing.T) {
	q, err := ParseObjectQuery("")
	require.NoError(t, err)

	assert.Equal(t, 20, q.Limit)
	assert.Equal(t, 0, q.Offset)
	assert.Empty(t, q.Filters)
	assert.Empty(t, q.Sort)
	assert.False(t, q.Published)
	assert.False(t, q.IncludeDeleted)
}

func TestParseObjectQueryPagination(t *testing.T) {
	q, err := ParseObjectQuery("_page=2&_limit=10")
	require.NoError(t, err)

	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 10, q.Offset)
	assert.Equal(t, 2, q.Page)
}

func TestParseObjectQueryOffsetWins(t *testing.T) {
	// An explicit page recomputes the offset from the limit.
	q, err := ParseObjectQuery("_offset=5&_limit=10&_page=3")
	require.NoError(t, err)
	assert.Equal(t, 20, q.Offset)
}

func TestParseObjectQueryFilters(t *testing.T) {
	q, err := ParseObjectQuery("status=open&priority=high&_search=urgent")
	require.NoError(t, err)

	assert.Equal(t, "open", q.Filters["status"])
	assert.Equal(t, "high", q.Filters["priority"])
	assert.Equal(t, "urgent", q.Search)
}

func TestParseObjectQueryReservedKeysAreNotFilters(t *testing.T) {
	q, err := ParseObjectQuery("_limit=5&_published=true&_includeDeleted=1&register=3&status=open")
	require.NoError(t, err)

	assert.True(t, q.Published)
	assert.True(t, q.IncludeDeleted)
	require.Len(t, q.Filters, 1)
	assert.Equal(t, "open", q.Filters["status"])
}

func TestParseObjectQueryMultiValueFilter(t *testing.T) {
	q, err := ParseObjectQuery("status=open&status=pending")
	require.NoError(t, err)

	list, ok := q.Filters["status"].([]interface{})
	require.True(t, ok)
	assert.ElementsMatch(t, []interface{}{"open", "pending"}, list)
}

func TestParseObjectQueryRangeFilter(t *testing.T) {
	q, err := ParseObjectQuery("price%5Bgte%5D=10&price%5Blt%5D=100")
	require.NoError(t, err)

	ranges, ok := q.Filters["price"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "10", ranges["gte"])
	assert.Equal(t, "100", ranges["lt"])
}

func TestParseObjectQueryBracketPathSegment(t *testing.T) {
	// A bracket sub-key that is not a range operator addresses a nested
	// JSON path.
	q, err := ParseObjectQuery("address%5Bcity%5D=Berlin")
	require.NoError(t, err)
	assert.Equal(t, "Berlin", q.Filters["address.city"])
}

func TestParseObjectQuerySortOrderPreserved(t *testing.T) {
	q, err := ParseObjectQuery("_order%5Bpriority%5D=DESC&_order%5Bname%5D=ASC")
	require.NoError(t, err)

	require.Len(t, q.Sort, 2)
	assert.Equal(t, SortField{Field: "priority", Direction: "DESC"}, q.Sort[0])
	assert.Equal(t, SortField{Field: "name", Direction: "ASC"}, q.Sort[1])
}

func TestParseObjectQueryCompactSort(t *testing.T) {
	q, err := ParseObjectQuery("_order=name,-created")
	require.NoError(t, err)

	require.Len(t, q.Sort, 2)
	assert.Equal(t, SortField{Field: "name", Direction: "ASC"}, q.Sort[0])
	assert.Equal(t, SortField{Field: "created", Direction: "DESC"}, q.Sort[1])
}

func TestParseObjectQueryFieldsUnsetExtend(t *testing.T) {
	q, err := ParseObjectQuery("_fields=name,email&_unset=secret&_extend=owner")
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "email"}, q.Fields)
	assert.Equal(t, []string{"secret"}, q.Unset)
	assert.Equal(t, []string{"owner"}, q.Extend)
}

func TestParseObjectQueryFacets(t *testing.T) {
	q, err := ParseObjectQuery("_facets%5Bstatus%5D%5Btype%5D=terms&_facets%5Bcreated%5D%5Btype%5D=date_histogram&_facets%5Bcreated%5D%5Binterval%5D=month")
	require.NoError(t, err)

	require.Len(t, q.Facets, 2)
	assert.Equal(t, FacetTerms, q.Facets["status"].Type)
	assert.Equal(t, FacetDateHistogram, q.Facets["created"].Type)
	assert.Equal(t, "month", q.Facets["created"].Interval)
}

func TestParseObjectQueryFacetRanges(t *testing.T) {
	q, err := ParseObjectQuery("_facets%5Bprice%5D%5Btype%5D=range&_facets%5Bprice%5D%5Branges%5D=0-10,10-100")
	require.NoError(t, err)

	cfg := q.Facets["price"]
	require.Len(t, cfg.Ranges, 2)
	assert.Equal(t, 0.0, *cfg.Ranges[0].From)
	assert.Equal(t, 10.0, *cfg.Ranges[0].To)
	assert.Equal(t, 100.0, *cfg.Ranges[1].To)
}

func TestIsReserved(t *testing.T) {
	assert.True(t, IsReserved("_limit"))
	assert.True(t, IsReserved("_order[name]"))
	assert.True(t, IsReserved("_anything"))
	assert.True(t, IsReserved("register"))
	assert.False(t, IsReserved("status"))
	assert.False(t, IsReserved("price[gte]"))
}

func TestRangeOperator(t *testing.T) {
	for key, want := range map[string]string{
		"after":           ">=",
		"gte":             ">=",
		"before":          "<=",
		"lte":             "<=",
		"strictly_after":  ">",
		"gt":              ">",
		"strictly_before": "<",
		"lt":              "<",
	} {
		op, ok := RangeOperator(key)
		require.True(t, ok, key)
		assert.Equal(t, want, op, key)
	}
	_, ok := RangeOperator("near")
	assert.False(t, ok)
}

func TestWithoutFilter(t *testing.T) {
	filters := map[string]interface{}{"status": "open", "priority": "high"}
	out := WithoutFilter(filters, "status")

	assert.NotContains(t, out, "status")
	assert.Equal(t, "high", out["priority"])
	// The original stays intact.
	assert.Equal(t, "open", filters["status"])
}
