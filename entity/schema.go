package entity

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Schema is a type definition objects conform to. Properties and the
// required set are stored as jsonb; HardValidation controls whether
// instance violations block persistence or are stored as warnings.
type Schema struct {
	ID             uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	UUID           string         `json:"uuid" gorm:"type:uuid;uniqueIndex;not null"`
	Title          string         `json:"title" gorm:"type:varchar(255);not null"`
	Description    string         `json:"description" gorm:"type:text"`
	Version        string         `json:"version" gorm:"type:varchar(32);default:'0.0.1'"`
	Properties     datatypes.JSON `json:"properties" gorm:"type:jsonb;default:'{}'::jsonb"`
	Required       datatypes.JSON `json:"required" gorm:"type:jsonb;default:'[]'::jsonb"`
	HardValidation bool           `json:"hardValidation" gorm:"default:true"`
	CreatedAt      time.Time      `json:"created" gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `json:"updated" gorm:"autoUpdateTime"`
}

func (Schema) TableName() string {
	return "schemas"
}

// Property is the definition of a single schema property.
type Property struct {
	Type        string               `json:"type"`
	Format      string               `json:"format,omitempty"`
	Description string               `json:"description,omitempty"`
	Enum        []interface{}        `json:"enum,omitempty"`
	Items       *Property            `json:"items,omitempty"`
	Properties  map[string]*Property `json:"properties,omitempty"`
	Required    []string             `json:"required,omitempty"`
	Minimum     *float64             `json:"minimum,omitempty"`
	Maximum     *float64             `json:"maximum,omitempty"`
	MinLength   *int                 `json:"minLength,omitempty"`
	MaxLength   *int                 `json:"maxLength,omitempty"`
	Pattern     string               `json:"pattern,omitempty"`
	Default     interface{}          `json:"default,omitempty"`
	// Facetable marks the property as eligible for facet discovery.
	Facetable *bool `json:"facetable,omitempty"`
	// Visible toggles the property in rendered output.
	Visible *bool `json:"visible,omitempty"`
}

// PropertyMap decodes the stored property definitions.
func (s *Schema) PropertyMap() (map[string]*Property, error) {
	properties := map[string]*Property{}
	if len(s.Properties) == 0 {
		return properties, nil
	}
	if err := json.Unmarshal(s.Properties, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

// RequiredFields decodes the stored required field names.
func (s *Schema) RequiredFields() []string {
	var required []string
	if len(s.Required) == 0 {
		return required
	}
	_ = json.Unmarshal(s.Required, &required)
	return required
}
