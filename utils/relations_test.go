package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRelations(t *testing.T) {
	payload := map[string]interface{}{
		"name":  "order-1",
		"owner": "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		"items": []interface{}{
			map[string]interface{}{
				"product": "https://example.org/api/objects/123",
			},
			"550e8400-e29b-41d4-a716-446655440000",
		},
		"count": float64(3),
		"note":  "just text",
	}

	relations := ExtractRelations(payload)
	assert.Equal(t, []string{
		"550e8400-e29b-41d4-a716-446655440000",
		"7c9e6679-7425-40de-944b-e07fc1f90ae7",
		"https://example.org/api/objects/123",
	}, relations)
}

func TestExtractRelationsDeduplicates(t *testing.T) {
	payload := map[string]interface{}{
		"a": "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		"b": "7c9e6679-7425-40de-944b-e07fc1f90ae7",
	}
	assert.Len(t, ExtractRelations(payload), 1)
}

func TestExtractRelationsEmpty(t *testing.T) {
	assert.Empty(t, ExtractRelations(map[string]interface{}{"name": "plain"}))
}
