package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-register-service/entity"
	"github.com/tnqbao/gau-register-service/exception"
	"gorm.io/datatypes"
)

func buildSchema(t *testing.T, properties map[string]*entity.Property, required []string) *entity.Schema {
	t.Helper()
	rawProperties, err := json.Marshal(properties)
	require.NoError(t, err)
	rawRequired, err := json.Marshal(required)
	require.NoError(t, err)
	return &entity.Schema{
		Title:          "person",
		Properties:     datatypes.JSON(rawProperties),
		Required:       datatypes.JSON(rawRequired),
		HardValidation: true,
	}
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func personSchema(t *testing.T) *entity.Schema {
	return buildSchema(t, map[string]*entity.Property{
		"name": {Type: "string"},
		"age":  {Type: "integer", Minimum: floatPtr(0)},
	}, []string{"name"})
}

func TestValidateObjectCollectsAllIssues(t *testing.T) {
	v := NewValidator()

	verr := v.ValidateObject(map[string]interface{}{
		"age": float64(-5),
	}, personSchema(t))

	require.NotNil(t, verr)
	require.Len(t, verr.Issues, 2)

	paths := []string{verr.Issues[0].Path, verr.Issues[1].Path}
	assert.Contains(t, paths, "name")
	assert.Contains(t, paths, "age")
}

func TestValidateObjectValidPayload(t *testing.T) {
	v := NewValidator()

	verr := v.ValidateObject(map[string]interface{}{
		"name": "ada",
		"age":  float64(36),
	}, personSchema(t))

	assert.Nil(t, verr)
}

func TestValidateObjectTypeMismatches(t *testing.T) {
	v := NewValidator()
	schema := buildSchema(t, map[string]*entity.Property{
		"name":   {Type: "string"},
		"age":    {Type: "integer"},
		"active": {Type: "boolean"},
		"tags":   {Type: "array", Items: &entity.Property{Type: "string"}},
	}, nil)

	verr := v.ValidateObject(map[string]interface{}{
		"name":   42,
		"age":    float64(1.5),
		"active": "yes",
		"tags":   []interface{}{"ok", 7},
	}, schema)

	require.NotNil(t, verr)
	assert.Len(t, verr.Issues, 4)
}

func TestValidateObjectStringConstraints(t *testing.T) {
	v := NewValidator()
	schema := buildSchema(t, map[string]*entity.Property{
		"email": {Type: "string", Format: "email"},
		"code":  {Type: "string", MinLength: intPtr(3), MaxLength: intPtr(5), Pattern: "^[A-Z]+$"},
	}, nil)

	verr := v.ValidateObject(map[string]interface{}{
		"email": "not-an-email",
		"code":  "ab",
	}, schema)

	require.NotNil(t, verr)
	// code violates both minLength and the pattern.
	assert.Len(t, verr.Issues, 3)
}

func TestValidateObjectEnum(t *testing.T) {
	v := NewValidator()
	schema := buildSchema(t, map[string]*entity.Property{
		"status": {Type: "string", Enum: []interface{}{"open", "closed"}},
	}, nil)

	assert.Nil(t, v.ValidateObject(map[string]interface{}{"status": "open"}, schema))

	verr := v.ValidateObject(map[string]interface{}{"status": "pending"}, schema)
	require.NotNil(t, verr)
	assert.Equal(t, "status", verr.Issues[0].Path)
}

func TestValidateObjectNestedObject(t *testing.T) {
	v := NewValidator()
	schema := buildSchema(t, map[string]*entity.Property{
		"address": {
			Type: "object",
			Properties: map[string]*entity.Property{
				"city": {Type: "string"},
				"zip":  {Type: "string"},
			},
			Required: []string{"city"},
		},
	}, nil)

	verr := v.ValidateObject(map[string]interface{}{
		"address": map[string]interface{}{"zip": 1234},
	}, schema)

	require.NotNil(t, verr)
	require.Len(t, verr.Issues, 2)
	paths := []string{verr.Issues[0].Path, verr.Issues[1].Path}
	assert.Contains(t, paths, "address.city")
	assert.Contains(t, paths, "address.zip")
}

func TestValidateDefinitionSound(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.ValidateDefinition(personSchema(t)))
}

func TestValidateDefinitionCollectsAllIssues(t *testing.T) {
	v := NewValidator()
	schema := buildSchema(t, map[string]*entity.Property{
		"kind":  {Type: "enumeration"},
		"score": {Type: "number", Minimum: floatPtr(10), Maximum: floatPtr(1)},
		"tag":   {Type: "string", Pattern: "(["},
		"empty": {Type: "string", Enum: []interface{}{}},
	}, nil)

	err := v.ValidateDefinition(schema)
	require.Error(t, err)

	verr, ok := exception.IsValidation(err)
	require.True(t, ok)
	assert.Len(t, verr.Issues, 4)
}

func TestValidateDefinitionNestedItems(t *testing.T) {
	v := NewValidator()
	schema := buildSchema(t, map[string]*entity.Property{
		"entries": {Type: "array", Items: &entity.Property{Type: "mystery"}},
	}, nil)

	err := v.ValidateDefinition(schema)
	require.Error(t, err)
	verr, ok := exception.IsValidation(err)
	require.True(t, ok)
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, "entries.items", verr.Issues[0].Path)
}
