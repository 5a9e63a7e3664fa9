package query

import (
	"gorm.io/gorm"
)

// Facet types.
const (
	FacetTerms         = "terms"
	FacetDateHistogram = "date_histogram"
	FacetRangeBuckets  = "range"
)

// FacetBucket is one value/count pair of a facet result.
type FacetBucket struct {
	Value interface{} `json:"value"`
	Count int64       `json:"count"`
}

// Facets maps facet field name to its buckets.
type Facets map[string][]FacetBucket

// Translator turns the generic query surface into storage-level
// predicates, order clauses and aggregations for one backend dialect.
// The repository depends only on this interface; adding a backend means
// implementing it once, nothing in the repository changes.
type Translator interface {
	// ApplyFilters adds one predicate per filter key. Keys address paths
	// inside the JSON payload; reserved keys must be stripped by the
	// caller beforehand.
	ApplyFilters(tx *gorm.DB, filters map[string]interface{}) *gorm.DB

	// ApplySearch adds a case-insensitive free-text predicate across the
	// whole payload.
	ApplySearch(tx *gorm.DB, term string) *gorm.DB

	// ApplySort adds one order term per sort field, in slice order.
	ApplySort(tx *gorm.DB, sort []SortField) *gorm.DB

	// Aggregate runs one grouped count per facet field. The base factory
	// must return a fresh builder scoped to register/schema plus the
	// query's predicates, with the named field's own filter omitted
	// (disjunctive faceting); a fresh builder per field keeps bound
	// parameters from leaking between fields.
	Aggregate(base func(excludeFilter string) *gorm.DB, facets map[string]FacetConfig) (Facets, error)
}
