package entity

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Register is a named collection grouping schemas. Objects reference a
// register by id; deleting a register does not cascade into object rows.
type Register struct {
	ID          uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	UUID        string         `json:"uuid" gorm:"type:uuid;uniqueIndex;not null"`
	Title       string         `json:"title" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Version     string         `json:"version" gorm:"type:varchar(32);default:'0.0.1'"`
	Folder      string         `json:"folder" gorm:"type:varchar(1024)"`
	Schemas     datatypes.JSON `json:"schemas" gorm:"type:jsonb;default:'[]'::jsonb"`
	CreatedAt   time.Time      `json:"created" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated" gorm:"autoUpdateTime"`
}

func (Register) TableName() string {
	return "registers"
}

// SchemaIDs decodes the stored schema id list.
func (r *Register) SchemaIDs() []uint64 {
	var ids []uint64
	if len(r.Schemas) == 0 {
		return ids
	}
	_ = json.Unmarshal(r.Schemas, &ids)
	return ids
}

// SetSchemaIDs stores the schema id list.
func (r *Register) SetSchemaIDs(ids []uint64) {
	if ids == nil {
		ids = []uint64{}
	}
	raw, _ := json.Marshal(ids)
	r.Schemas = datatypes.JSON(raw)
}

// HasSchema reports whether the register owns the given schema id.
func (r *Register) HasSchema(schemaID uint64) bool {
	for _, id := range r.SchemaIDs() {
		if id == schemaID {
			return true
		}
	}
	return false
}
