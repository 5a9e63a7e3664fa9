package entity

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Audit trail actions.
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionRestore = "restore"
)

// FieldChange is the old/new pair recorded for one changed field.
type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// AuditTrail is one immutable row per object mutation. Entries survive
// object destruction; they are only removed by administrative cleanup.
type AuditTrail struct {
	ID         uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	UUID       string         `json:"uuid" gorm:"type:uuid;uniqueIndex;not null"`
	Action     string         `json:"action" gorm:"type:varchar(32);not null;index"`
	ObjectUUID string         `json:"object" gorm:"type:uuid;not null;index"`
	RegisterID uint64         `json:"register" gorm:"column:register;not null;index"`
	SchemaID   uint64         `json:"schema" gorm:"column:schema;not null;index"`
	UserID     string         `json:"user" gorm:"type:varchar(255)"`
	UserName   string         `json:"userName" gorm:"type:varchar(255)"`
	Changed    datatypes.JSON `json:"changed" gorm:"type:jsonb;default:'{}'::jsonb"`
	Version    string         `json:"version" gorm:"type:varchar(32)"`
	Session    string         `json:"session" gorm:"type:varchar(255)"`
	Request    string         `json:"request" gorm:"type:varchar(255)"`
	Size       int64          `json:"size"`
	CreatedAt  time.Time      `json:"created" gorm:"autoCreateTime;index"`
}

func (AuditTrail) TableName() string {
	return "audit_trails"
}

// Changes decodes the stored per-field diff.
func (a *AuditTrail) Changes() (map[string]FieldChange, error) {
	changes := map[string]FieldChange{}
	if len(a.Changed) == 0 {
		return changes, nil
	}
	if err := json.Unmarshal(a.Changed, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// SetChanges encodes the per-field diff into the jsonb column.
func (a *AuditTrail) SetChanges(changes map[string]FieldChange) error {
	raw, err := json.Marshal(changes)
	if err != nil {
		return err
	}
	a.Changed = datatypes.JSON(raw)
	a.Size = int64(len(raw))
	return nil
}
