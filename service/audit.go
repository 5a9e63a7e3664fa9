package service

import (
	"context"
	"reflect"
	"strconv"
	"time"

	"github.com/tnqbao/gau-register-service/entity"
	"github.com/tnqbao/gau-register-service/exception"
	"github.com/tnqbao/gau-register-service/infra"
	"github.com/tnqbao/gau-register-service/query"
	"github.com/tnqbao/gau-register-service/repository"
)

// AuditService records per-mutation diffs and reconstructs prior
// object states from them.
type AuditService struct {
	infra      *infra.Infra
	repository *repository.Repository
}

func NewAuditService(infra *infra.Infra, repo *repository.Repository) *AuditService {
	return &AuditService{infra: infra, repository: repo}
}

// Diff computes the per-field old/new pairs between two payloads.
// Added fields carry a nil old value, removed fields a nil new value.
func Diff(old, new map[string]interface{}) map[string]entity.FieldChange {
	changes := map[string]entity.FieldChange{}
	for field, oldValue := range old {
		newValue, present := new[field]
		if !present {
			changes[field] = entity.FieldChange{Old: oldValue, New: nil}
			continue
		}
		if !reflect.DeepEqual(oldValue, newValue) {
			changes[field] = entity.FieldChange{Old: oldValue, New: newValue}
		}
	}
	for field, newValue := range new {
		if _, present := old[field]; !present {
			changes[field] = entity.FieldChange{Old: nil, New: newValue}
		}
	}
	return changes
}

// Record writes one audit entry for a transition. Entries with no field
// changes are still written so the history stays complete.
func (s *AuditService) Record(ctx context.Context, scope *Scope, old, new *entity.ObjectEntity, action string) (*entity.AuditTrail, error) {
	entry, err := newTrailEntry(scope, old, new, action)
	if err != nil {
		return nil, err
	}
	if err := s.repository.AuditTrailRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// newTrailEntry builds the audit entry for a transition. Lifecycle
// transitions that keep the payload intact, a soft delete or a restore,
// pass the same entity on both sides and yield an action-only entry.
func newTrailEntry(scope *Scope, old, new *entity.ObjectEntity, action string) (*entity.AuditTrail, error) {
	oldPayload := map[string]interface{}{}
	newPayload := map[string]interface{}{}
	objectUUID := ""
	version := ""
	if old != nil {
		oldPayload, _ = old.Payload()
		objectUUID = old.UUID
		version = old.Version
	}
	if new != nil {
		newPayload, _ = new.Payload()
		objectUUID = new.UUID
		version = new.Version
	}

	entry := &entity.AuditTrail{
		Action:     action,
		ObjectUUID: objectUUID,
		RegisterID: scope.Register.ID,
		SchemaID:   scope.Schema.ID,
		UserID:     scope.UserID,
		UserName:   scope.UserName,
		Session:    scope.Session,
		Request:    scope.Request,
		Version:    version,
	}
	if err := entry.SetChanges(Diff(oldPayload, newPayload)); err != nil {
		return nil, err
	}
	return entry, nil
}

// TrailPage returns a filtered page of audit entries for one object.
func (s *AuditService) TrailPage(ctx context.Context, objectUUID string, q *query.ObjectQuery) ([]entity.AuditTrail, int64, error) {
	return s.repository.AuditTrailRepo.FindAllForObject(ctx, objectUUID, q)
}

// RevertTarget designates the point in the trail to revert to: a
// timestamp, an entry id, or a version tag. Exactly one is set.
type RevertTarget struct {
	Time    *time.Time
	EntryID uint64
	Version string
}

// ParseRevertTarget interprets an "until" parameter: RFC3339 timestamps
// revert by time, digit strings by audit entry id, anything else is
// treated as a version tag.
func ParseRevertTarget(until string) (RevertTarget, error) {
	if until == "" {
		return RevertTarget{}, exception.ErrInvalidIdentifier
	}
	if t, err := time.Parse(time.RFC3339, until); err == nil {
		return RevertTarget{Time: &t}, nil
	}
	if id, err := strconv.ParseUint(until, 10, 64); err == nil && id > 0 {
		return RevertTarget{EntryID: id}, nil
	}
	return RevertTarget{Version: until}, nil
}

// ReplayTrail walks the trail newest-first, undoing each entry's diff
// until the target point is reached. It returns the reconstructed
// payload and the version tag in effect at that point. The trail must
// be ordered newest first. Reaching the end without hitting the target
// means the target does not exist for this object.
func ReplayTrail(payload map[string]interface{}, trail []entity.AuditTrail, target RevertTarget) (map[string]interface{}, string, error) {
	reconstructed := deepCopyMap(payload)
	for _, entry := range trail {
		if reached(entry, target) {
			return reconstructed, entry.Version, nil
		}
		changes, err := entry.Changes()
		if err != nil {
			return nil, "", err
		}
		for field, change := range changes {
			if change.Old == nil {
				delete(reconstructed, field)
				continue
			}
			reconstructed[field] = change.Old
		}
	}
	return nil, "", exception.ErrNotFound
}

func reached(entry entity.AuditTrail, target RevertTarget) bool {
	switch {
	case target.Time != nil:
		return !entry.CreatedAt.After(*target.Time)
	case target.EntryID > 0:
		return entry.ID <= target.EntryID
	case target.Version != "":
		return entry.Version == target.Version
	}
	return false
}

func deepCopyMap(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src))
	for key, value := range src {
		dst[key] = deepCopyValue(value)
	}
	return dst
}

func deepCopyValue(value interface{}) interface{} {
	switch typed := value.(type) {
	case map[string]interface{}:
		return deepCopyMap(typed)
	case []interface{}:
		copied := make([]interface{}, len(typed))
		for idx, item := range typed {
			copied[idx] = deepCopyValue(item)
		}
		return copied
	default:
		return value
	}
}
