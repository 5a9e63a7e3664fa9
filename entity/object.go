package entity

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/tnqbao/gau-register-service/exception"
)

// ObjectEntity is one stored JSON record plus its metadata. The payload
// lives in the jsonb Object column and is the single source of truth;
// Relations is derived from it on every save for uses/used-by lookups.
type ObjectEntity struct {
	ID         uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	UUID       string         `json:"uuid" gorm:"type:uuid;uniqueIndex;not null"`
	URI        string         `json:"uri" gorm:"type:varchar(1024)"`
	RegisterID uint64         `json:"register" gorm:"column:register;not null;index:idx_objects_register_schema"`
	SchemaID   uint64         `json:"schema" gorm:"column:schema;not null;index:idx_objects_register_schema"`
	Object     datatypes.JSON `json:"object" gorm:"type:jsonb;not null"`
	Version    string         `json:"version" gorm:"type:varchar(32);default:'0.0.1'"`
	Relations  datatypes.JSON `json:"relations" gorm:"type:jsonb;default:'[]'::jsonb"`
	Folder     string         `json:"folder" gorm:"type:varchar(1024)"`

	// Warnings from the last soft validation; null means the payload was
	// valid against its schema when stored.
	ValidationErrors datatypes.JSON `json:"validationErrors,omitempty" gorm:"type:jsonb"`

	LockedBy      string     `json:"-" gorm:"type:varchar(255)"`
	LockedProcess string     `json:"-" gorm:"type:varchar(255)"`
	LockedUntil   *time.Time `json:"-"`

	Published   *time.Time     `json:"published,omitempty"`
	Depublished *time.Time     `json:"depublished,omitempty"`
	Deleted     *time.Time     `json:"deleted,omitempty" gorm:"index"`
	CreatedAt   time.Time      `json:"created" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated" gorm:"autoUpdateTime"`
}

func (ObjectEntity) TableName() string {
	return "objects"
}

// LockInfo is the API shape of an active lock.
type LockInfo struct {
	LockedBy string    `json:"lockedBy"`
	Process  string    `json:"process,omitempty"`
	Until    time.Time `json:"until"`
}

// Lock returns the active lock, or nil when the object is unlocked or
// the lock has expired. Expiry is evaluated lazily at access time.
func (o *ObjectEntity) Lock(now time.Time) *LockInfo {
	if o.LockedBy == "" || o.LockedUntil == nil {
		return nil
	}
	if !o.LockedUntil.After(now) {
		return nil
	}
	return &LockInfo{
		LockedBy: o.LockedBy,
		Process:  o.LockedProcess,
		Until:    *o.LockedUntil,
	}
}

// ClearLock removes any lock fields from the object.
func (o *ObjectEntity) ClearLock() {
	o.LockedBy = ""
	o.LockedProcess = ""
	o.LockedUntil = nil
}

// IsPublished reports whether the object is visible at the given time:
// published in the past and not depublished before then.
func (o *ObjectEntity) IsPublished(now time.Time) bool {
	if o.Published == nil || o.Published.After(now) {
		return false
	}
	if o.Depublished != nil && !o.Depublished.After(now) {
		return false
	}
	return true
}

// Payload decodes the stored object payload into a generic map.
func (o *ObjectEntity) Payload() (map[string]interface{}, error) {
	payload := map[string]interface{}{}
	if len(o.Object) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(o.Object, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SetPayload encodes the payload back into the jsonb column.
func (o *ObjectEntity) SetPayload(payload map[string]interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	o.Object = datatypes.JSON(raw)
	return nil
}

// SetValidationIssues stores soft-validation warnings on the object.
// An empty result clears the column back to null.
func (o *ObjectEntity) SetValidationIssues(verr *exception.ValidationError) error {
	if verr.Empty() {
		o.ValidationErrors = nil
		return nil
	}
	raw, err := json.Marshal(verr.Issues)
	if err != nil {
		return err
	}
	o.ValidationErrors = datatypes.JSON(raw)
	return nil
}

// ValidationIssues decodes the stored soft-validation warnings.
func (o *ObjectEntity) ValidationIssues() []exception.ValidationIssue {
	var issues []exception.ValidationIssue
	if len(o.ValidationErrors) == 0 {
		return issues
	}
	_ = json.Unmarshal(o.ValidationErrors, &issues)
	return issues
}

// RelationURIs decodes the stored relation list.
func (o *ObjectEntity) RelationURIs() []string {
	var uris []string
	if len(o.Relations) == 0 {
		return uris
	}
	_ = json.Unmarshal(o.Relations, &uris)
	return uris
}

// SetRelations stores the derived relation list.
func (o *ObjectEntity) SetRelations(uris []string) {
	if uris == nil {
		uris = []string{}
	}
	raw, _ := json.Marshal(uris)
	o.Relations = datatypes.JSON(raw)
}
