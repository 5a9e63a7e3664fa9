package utils

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ExtractRelations walks an object payload and collects reference-like
// string values: UUIDs of other objects and http(s) URIs. The result is
// deduplicated and sorted so repeated saves produce stable relation
// rows for uses/used-by lookups.
func ExtractRelations(payload map[string]interface{}) []string {
	seen := map[string]bool{}
	collectRelations(payload, seen)
	relations := make([]string, 0, len(seen))
	for relation := range seen {
		relations = append(relations, relation)
	}
	sort.Strings(relations)
	return relations
}

func collectRelations(value interface{}, seen map[string]bool) {
	switch typed := value.(type) {
	case map[string]interface{}:
		for _, nested := range typed {
			collectRelations(nested, seen)
		}
	case []interface{}:
		for _, nested := range typed {
			collectRelations(nested, seen)
		}
	case string:
		if isRelation(typed) {
			seen[typed] = true
		}
	}
}

func isRelation(value string) bool {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return true
	}
	if _, err := uuid.Parse(value); err == nil {
		return true
	}
	return false
}
