package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Columns addressable directly instead of through the JSON payload.
var nativeColumns = map[string]string{
	"id":       "id",
	"uuid":     "uuid",
	"uri":      "uri",
	"register": "register",
	"schema":   "schema",
	"version":  "version",
	"created":  "created_at",
	"updated":  "updated_at",
}

var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// PostgresTranslator translates the query surface into jsonb
// expressions against the "object" column.
type PostgresTranslator struct{}

func NewPostgresTranslator() *PostgresTranslator {
	return &PostgresTranslator{}
}

// ApplyFilters adds one predicate per filter key.
func (t *PostgresTranslator) ApplyFilters(tx *gorm.DB, filters map[string]interface{}) *gorm.DB {
	for key, value := range filters {
		expr, args, ok := FilterClause(key, value)
		if !ok {
			continue
		}
		tx = tx.Where(expr, args...)
	}
	return tx
}

// ApplySearch matches a free-text term case-insensitively against the
// whole payload, no field targeting.
func (t *PostgresTranslator) ApplySearch(tx *gorm.DB, term string) *gorm.DB {
	if term == "" {
		return tx
	}
	return tx.Where("CAST(object AS TEXT) ILIKE ?", "%"+term+"%")
}

// ApplySort adds an order term per field in slice order.
func (t *PostgresTranslator) ApplySort(tx *gorm.DB, sort []SortField) *gorm.DB {
	for _, field := range sort {
		expr, ok := OrderClause(field)
		if !ok {
			continue
		}
		tx = tx.Order(expr)
	}
	return tx
}

type facetRow struct {
	Value string
	Count int64
}

// Aggregate runs one grouped count query per facet field, each on a
// fresh builder from the base factory so bound parameters never leak
// between fields. The factory omits the field's own filter, which keeps
// a field's own options present while it is filtered on (disjunctive
// faceting).
func (t *PostgresTranslator) Aggregate(base func(excludeFilter string) *gorm.DB, facets map[string]FacetConfig) (Facets, error) {
	result := Facets{}
	for field, cfg := range facets {
		buckets, err := t.aggregateField(base, field, cfg)
		if err != nil {
			return nil, err
		}
		result[field] = buckets
	}
	return result, nil
}

func (t *PostgresTranslator) aggregateField(base func(string) *gorm.DB, field string, cfg FacetConfig) ([]FacetBucket, error) {
	switch cfg.Type {
	case FacetDateHistogram:
		return t.dateHistogram(base(field), field, cfg.Interval)
	case FacetRangeBuckets:
		return t.rangeBuckets(base, field, cfg.Ranges)
	default:
		return t.termCounts(base(field), field)
	}
}

func (t *PostgresTranslator) termCounts(tx *gorm.DB, field string) ([]FacetBucket, error) {
	expr, ok := ValueExpr(field)
	if !ok {
		return nil, fmt.Errorf("unsupported facet field %q", field)
	}
	var rows []facetRow
	err := tx.
		Select(expr+" AS value, COUNT(*) AS count").
		Where(expr+" IS NOT NULL").
		Group(expr).
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toBuckets(rows), nil
}

func (t *PostgresTranslator) dateHistogram(tx *gorm.DB, field, interval string) ([]FacetBucket, error) {
	switch interval {
	case "hour", "day", "week", "month", "year":
	default:
		interval = "month"
	}
	expr, ok := ValueExpr(field)
	if !ok {
		return nil, fmt.Errorf("unsupported facet field %q", field)
	}
	cast := expr
	if !isNative(field) {
		cast = "(" + expr + ")::timestamptz"
	}
	bucket := fmt.Sprintf("date_trunc('%s', %s)", interval, cast)
	var rows []facetRow
	err := tx.
		Select(bucket+" AS value, COUNT(*) AS count").
		Where(expr+" IS NOT NULL").
		Group(bucket).
		Order("value ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toBuckets(rows), nil
}

func (t *PostgresTranslator) rangeBuckets(base func(string) *gorm.DB, field string, ranges []FacetRange) ([]FacetBucket, error) {
	expr, ok := ValueExpr(field)
	if !ok {
		return nil, fmt.Errorf("unsupported facet field %q", field)
	}
	numeric := "(" + expr + ")::numeric"
	buckets := make([]FacetBucket, 0, len(ranges))
	for _, r := range ranges {
		tx := base(field).Where(expr + " IS NOT NULL")
		label := ""
		if r.From != nil {
			tx = tx.Where(numeric+" >= ?", *r.From)
			label = trimFloat(*r.From)
		}
		label += "-"
		if r.To != nil {
			tx = tx.Where(numeric+" < ?", *r.To)
			label += trimFloat(*r.To)
		}
		var count int64
		if err := tx.Count(&count).Error; err != nil {
			return nil, err
		}
		buckets = append(buckets, FacetBucket{Value: label, Count: count})
	}
	return buckets, nil
}

// FilterClause builds the predicate for one filter key. Scalars match
// by equality or array membership, lists OR their elements, associative
// values carry range operators. Returns ok=false for keys that cannot
// be translated.
func FilterClause(key string, value interface{}) (string, []interface{}, bool) {
	if path, ok := DescendantPath(key); ok {
		return descendantClause(path, value)
	}
	expr, ok := ValueExpr(key)
	if !ok {
		return "", nil, false
	}
	elem, hasElem := elemExpr(key)

	switch typed := value.(type) {
	case map[string]interface{}:
		var parts []string
		var args []interface{}
		for sub, bound := range typed {
			op, known := RangeOperator(sub)
			if !known {
				continue
			}
			// Text comparison misorders numbers ('9' > '10'), so a
			// numeric bound compares through a numeric cast. Dates and
			// other text bounds keep the plain text comparison.
			text := fmt.Sprint(bound)
			if number, err := strconv.ParseFloat(text, 64); err == nil && !isNative(key) {
				parts = append(parts, "("+expr+")::numeric "+op+" ?")
				args = append(args, number)
				continue
			}
			parts = append(parts, expr+" "+op+" ?")
			args = append(args, text)
		}
		if len(parts) == 0 {
			return "", nil, false
		}
		return strings.Join(parts, " AND "), args, true
	case []interface{}:
		var parts []string
		var args []interface{}
		for _, item := range typed {
			parts = append(parts, expr+" = ?")
			args = append(args, fmt.Sprint(item))
			if hasElem {
				parts = append(parts, elem+" @> to_jsonb(?::text)")
				args = append(args, fmt.Sprint(item))
			}
		}
		if len(parts) == 0 {
			return "", nil, false
		}
		return "(" + strings.Join(parts, " OR ") + ")", args, true
	default:
		if !hasElem {
			return expr + " = ?", []interface{}{fmt.Sprint(value)}, true
		}
		return "(" + expr + " = ? OR " + elem + " @> to_jsonb(?::text))",
			[]interface{}{fmt.Sprint(value), fmt.Sprint(value)}, true
	}
}

// OrderClause builds an ORDER BY term for one sort field.
func OrderClause(field SortField) (string, bool) {
	expr, ok := ValueExpr(field.Field)
	if !ok {
		return "", false
	}
	direction := "ASC"
	if strings.EqualFold(field.Direction, "DESC") {
		direction = "DESC"
	}
	return expr + " " + direction, true
}

// ValueExpr returns the SQL expression extracting the unquoted value at
// a filter path: a native column name, ->> for plain fields, #>> for
// dotted paths. Returns ok=false when a segment is not a safe
// identifier; path segments are inlined, never parameters.
func ValueExpr(key string) (string, bool) {
	if column, ok := nativeColumns[key]; ok {
		return column, true
	}
	segments := strings.Split(key, ".")
	for _, segment := range segments {
		if !segmentPattern.MatchString(segment) {
			return "", false
		}
	}
	if len(segments) == 1 {
		return "object ->> '" + segments[0] + "'", true
	}
	return "object #>> '{" + strings.Join(segments, ",") + "}'", true
}

func elemExpr(key string) (string, bool) {
	if _, native := nativeColumns[key]; native {
		return "", false
	}
	segments := strings.Split(key, ".")
	for _, segment := range segments {
		if !segmentPattern.MatchString(segment) {
			return "", false
		}
	}
	if len(segments) == 1 {
		return "object -> '" + segments[0] + "'", true
	}
	return "object #> '{" + strings.Join(segments, ",") + "}'", true
}

// DescendantPath normalizes underscore-delimited bracket notation into
// a jsonpath with wildcard-descendant joins: "items_0_name" becomes
// $."items".**."name" with numeric segments widened to any depth. Only
// keys carrying at least one all-numeric segment take this route;
// ordinary snake_case field names stay literal field names.
func DescendantPath(key string) (string, bool) {
	if !strings.Contains(key, "_") || strings.Contains(key, ".") {
		return "", false
	}
	segments := strings.Split(key, "_")
	hasNumeric := false
	for _, segment := range segments {
		if segment == "" || !segmentPattern.MatchString(segment) {
			return "", false
		}
		if _, err := strconv.Atoi(segment); err == nil {
			hasNumeric = true
		}
	}
	if !hasNumeric {
		return "", false
	}
	var parts []string
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			// Positional segments widen to any descendant.
			continue
		}
		parts = append(parts, `"`+segment+`"`)
	}
	if len(parts) == 0 {
		return "", false
	}
	return "$." + strings.Join(parts, ".**.") + "", true
}

func descendantClause(path string, value interface{}) (string, []interface{}, bool) {
	scalar, ok := value.(string)
	if !ok {
		switch typed := value.(type) {
		case []interface{}:
			var parts []string
			var args []interface{}
			for _, item := range typed {
				expr, itemArgs, itemOK := descendantClause(path, fmt.Sprint(item))
				if !itemOK {
					continue
				}
				parts = append(parts, expr)
				args = append(args, itemArgs...)
			}
			if len(parts) == 0 {
				return "", nil, false
			}
			return "(" + strings.Join(parts, " OR ") + ")", args, true
		default:
			scalar = fmt.Sprint(value)
		}
	}
	quoted := `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(scalar) + `"`
	predicate := path + " ? (@ == " + quoted
	if _, err := strconv.ParseFloat(scalar, 64); err == nil {
		predicate += " || @ == " + scalar
	}
	predicate += ")"
	return "jsonb_path_exists(object, CAST(? AS jsonpath))", []interface{}{predicate}, true
}

func isNative(key string) bool {
	_, ok := nativeColumns[key]
	return ok
}

func toBuckets(rows []facetRow) []FacetBucket {
	buckets := make([]FacetBucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, FacetBucket{Value: row.Value, Count: row.Count})
	}
	return buckets
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
