// Package query implements the generic filter/sort/search/facet surface
// of the register engine and its translation into storage dialects. The
// object payload lives in a jsonb column named "object"; every
// non-reserved filter key addresses a path inside that payload.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Reserved keys of the query surface. Everything else is treated as an
// object-field filter against the JSON payload.
var reservedKeys = map[string]bool{
	"limit":           true,
	"_limit":          true,
	"offset":          true,
	"_offset":         true,
	"page":            true,
	"_page":           true,
	"_search":         true,
	"_order":          true,
	"sort":            true,
	"_extend":         true,
	"_fields":         true,
	"_unset":          true,
	"_filter":         true,
	"_ids":            true,
	"_published":      true,
	"_includeDeleted": true,
	"_facets":         true,
	"_facetable":      true,
	// Native columns, never JSON paths.
	"register": true,
	"schema":   true,
	"created":  true,
	"updated":  true,
	"uses":     true,
}

// Range operators accepted inside associative filter values.
var rangeOperators = map[string]string{
	"after":           ">=",
	"gte":             ">=",
	">=":              ">=",
	"before":          "<=",
	"lte":             "<=",
	"<=":              "<=",
	"strictly_after":  ">",
	"gt":              ">",
	">":               ">",
	"strictly_before": "<",
	"lt":              "<",
	"<":               "<",
}

// RangeOperator resolves an associative filter sub-key to its SQL
// comparison operator. Returns false for unknown sub-keys.
func RangeOperator(key string) (string, bool) {
	op, ok := rangeOperators[key]
	return op, ok
}

// IsReserved reports whether the key belongs to the query surface
// itself rather than to the object payload.
func IsReserved(key string) bool {
	if reservedKeys[key] {
		return true
	}
	// Bracketed reserved keys such as _order[name] or _facets[status][type].
	if idx := strings.Index(key, "["); idx > 0 && reservedKeys[key[:idx]] {
		return true
	}
	return strings.HasPrefix(key, "_")
}

// SortField is one ordering term; slice order defines precedence.
type SortField struct {
	Field     string
	Direction string // "ASC" or "DESC"
}

// FacetRange is one bucket boundary of a range facet.
type FacetRange struct {
	From *float64 `json:"from,omitempty"`
	To   *float64 `json:"to,omitempty"`
}

// FacetConfig configures one requested facet field.
type FacetConfig struct {
	Type     string       `json:"type"` // terms, date_histogram, range
	Interval string       `json:"interval,omitempty"`
	Ranges   []FacetRange `json:"ranges,omitempty"`
}

// ObjectQuery is the parsed query surface handed to the repository.
type ObjectQuery struct {
	Filters        map[string]interface{}
	Search         string
	Sort           []SortField
	Limit          int
	Offset         int
	Page           int
	IDs            []string
	Published      bool
	IncludeDeleted bool
	Facets         map[string]FacetConfig
	Facetable      bool
	Extend         []string
	Fields         []string
	Unset          []string
	Uses           string
}

// NewObjectQuery returns an empty query with the default page size.
func NewObjectQuery() *ObjectQuery {
	return &ObjectQuery{
		Filters: map[string]interface{}{},
		Facets:  map[string]FacetConfig{},
		Limit:   20,
	}
}

// ParseObjectQuery builds an ObjectQuery from a raw URL query string.
// The raw string (not url.Values) is used so that the relative order of
// sort terms is preserved: mapping order defines sort precedence.
func ParseObjectQuery(rawQuery string) (*ObjectQuery, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, err
	}
	q := NewObjectQuery()

	if v := first(values, "_limit", "limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Limit = n
		}
	}
	if v := first(values, "_offset", "offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			q.Offset = n
		}
	}
	if v := first(values, "_page", "page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Page = n
			q.Offset = (n - 1) * q.Limit
		}
	}
	q.Search = values.Get("_search")
	q.Published = isTruthy(values.Get("_published"))
	q.IncludeDeleted = isTruthy(values.Get("_includeDeleted"))
	q.Facetable = isTruthy(values.Get("_facetable"))
	q.Uses = values.Get("uses")

	q.IDs = splitList(values["_ids"])
	q.Extend = splitList(values["_extend"])
	q.Fields = splitList(values["_fields"])
	q.Unset = splitList(append(values["_unset"], values["_filter"]...))

	q.Sort = parseSort(rawQuery, values)
	q.Facets = parseFacets(values)

	for key, vals := range values {
		if IsReserved(key) || len(vals) == 0 {
			continue
		}
		if field, sub, ok := bracketKey(key); ok {
			if _, isRange := RangeOperator(sub); isRange {
				ranges, _ := q.Filters[field].(map[string]interface{})
				if ranges == nil {
					ranges = map[string]interface{}{}
				}
				ranges[sub] = vals[0]
				q.Filters[field] = ranges
				continue
			}
			// Unknown sub-key, treat the bracket as a literal path segment.
			key = field + "." + sub
		}
		if len(vals) > 1 {
			list := make([]interface{}, 0, len(vals))
			for _, v := range vals {
				list = append(list, v)
			}
			q.Filters[key] = list
		} else {
			q.Filters[key] = vals[0]
		}
	}
	return q, nil
}

// WithoutFilter returns a copy of filters with one field removed. Facet
// counts for a field are computed as if its own filter were absent.
func WithoutFilter(filters map[string]interface{}, field string) map[string]interface{} {
	out := make(map[string]interface{}, len(filters))
	for key, value := range filters {
		if key == field {
			continue
		}
		out[key] = value
	}
	return out
}

func parseSort(rawQuery string, values url.Values) []SortField {
	var sort []SortField
	seen := map[string]bool{}
	// Scan the raw query so bracketed sort keys keep their given order.
	for _, pair := range strings.Split(rawQuery, "&") {
		key := pair
		value := ""
		if idx := strings.Index(pair, "="); idx >= 0 {
			key = pair[:idx]
			value = pair[idx+1:]
		}
		key, _ = url.QueryUnescape(key)
		value, _ = url.QueryUnescape(value)
		field, ok := sortKeyField(key)
		if !ok || seen[field] {
			continue
		}
		seen[field] = true
		sort = append(sort, SortField{Field: field, Direction: sortDirection(value)})
	}
	// Compact form: _order=field1,-field2
	for _, term := range splitList(values["_order"]) {
		direction := "ASC"
		field := term
		if strings.HasPrefix(term, "-") {
			direction = "DESC"
			field = term[1:]
		}
		if field == "" || strings.Contains(field, "[") || seen[field] {
			continue
		}
		seen[field] = true
		sort = append(sort, SortField{Field: field, Direction: direction})
	}
	return sort
}

func sortKeyField(key string) (string, bool) {
	for _, prefix := range []string{"_order[", "sort["} {
		if strings.HasPrefix(key, prefix) && strings.HasSuffix(key, "]") {
			field := key[len(prefix) : len(key)-1]
			if field != "" {
				return field, true
			}
		}
	}
	return "", false
}

func sortDirection(value string) string {
	if strings.EqualFold(value, "DESC") {
		return "DESC"
	}
	return "ASC"
}

func parseFacets(values url.Values) map[string]FacetConfig {
	facets := map[string]FacetConfig{}
	for key, vals := range values {
		if !strings.HasPrefix(key, "_facets[") || len(vals) == 0 {
			continue
		}
		inner := strings.TrimPrefix(key, "_facets[")
		parts := strings.SplitN(inner, "]", 2)
		field := parts[0]
		if field == "" {
			continue
		}
		cfg := facets[field]
		attr := ""
		if len(parts) == 2 {
			attr = strings.Trim(parts[1], "[]")
		}
		switch attr {
		case "", "type":
			cfg.Type = vals[0]
		case "interval":
			cfg.Interval = vals[0]
		case "ranges":
			cfg.Ranges = parseFacetRanges(vals[0])
		}
		if cfg.Type == "" {
			cfg.Type = FacetTerms
		}
		facets[field] = cfg
	}
	return facets
}

func parseFacetRanges(raw string) []FacetRange {
	var ranges []FacetRange
	for _, pair := range strings.Split(raw, ",") {
		bounds := strings.SplitN(pair, "-", 2)
		if len(bounds) != 2 {
			continue
		}
		var r FacetRange
		if from, err := strconv.ParseFloat(strings.TrimSpace(bounds[0]), 64); err == nil {
			r.From = &from
		}
		if to, err := strconv.ParseFloat(strings.TrimSpace(bounds[1]), 64); err == nil {
			r.To = &to
		}
		if r.From != nil || r.To != nil {
			ranges = append(ranges, r)
		}
	}
	return ranges
}

func first(values url.Values, keys ...string) string {
	for _, key := range keys {
		if v := values.Get(key); v != "" {
			return v
		}
	}
	return ""
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func splitList(vals []string) []string {
	var out []string
	for _, val := range vals {
		for _, part := range strings.Split(val, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func bracketKey(key string) (field, sub string, ok bool) {
	open := strings.Index(key, "[")
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	return key[:open], key[open+1 : len(key)-1], true
}
