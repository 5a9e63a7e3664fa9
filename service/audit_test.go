package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-register-service/entity"
	"github.com/tnqbao/gau-register-service/exception"
	"gorm.io/datatypes"
)

func TestDiffChangedAddedRemoved(t *testing.T) {
	old := map[string]interface{}{
		"name":  "ada",
		"email": "ada@example.com",
		"age":   float64(36),
	}
	new := map[string]interface{}{
		"name": "ada lovelace",
		"age":  float64(36),
		"city": "london",
	}

	changes := Diff(old, new)
	require.Len(t, changes, 3)

	assert.Equal(t, entity.FieldChange{Old: "ada", New: "ada lovelace"}, changes["name"])
	assert.Equal(t, entity.FieldChange{Old: "ada@example.com", New: nil}, changes["email"])
	assert.Equal(t, entity.FieldChange{Old: nil, New: "london"}, changes["city"])
}

func TestDiffNoChanges(t *testing.T) {
	payload := map[string]interface{}{"name": "ada", "tags": []interface{}{"a", "b"}}
	assert.Empty(t, Diff(payload, map[string]interface{}{"name": "ada", "tags": []interface{}{"a", "b"}}))
}

func auditEntry(t *testing.T, id uint64, version string, createdAt time.Time, changes map[string]entity.FieldChange) entity.AuditTrail {
	t.Helper()
	raw, err := json.Marshal(changes)
	require.NoError(t, err)
	return entity.AuditTrail{
		ID:        id,
		Action:    entity.ActionUpdate,
		Version:   version,
		Changed:   datatypes.JSON(raw),
		CreatedAt: createdAt,
	}
}

// trailFixture builds the history of an object that went through three
// updates, newest first, matching the current payload below.
func trailFixture(t *testing.T) (map[string]interface{}, []entity.AuditTrail) {
	t.Helper()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	payload := map[string]interface{}{
		"name":  "carol",
		"email": "carol@example.org",
	}
	trail := []entity.AuditTrail{
		// 0.0.3 -> 0.0.4: renamed, email added.
		auditEntry(t, 30, "0.0.4", base.Add(2*time.Hour), map[string]entity.FieldChange{
			"name":  {Old: "bob", New: "carol"},
			"email": {Old: nil, New: "carol@example.org"},
		}),
		// 0.0.2 -> 0.0.3: age removed.
		auditEntry(t, 20, "0.0.3", base.Add(time.Hour), map[string]entity.FieldChange{
			"age": {Old: float64(30), New: nil},
		}),
		// 0.0.1 -> 0.0.2: renamed.
		auditEntry(t, 10, "0.0.2", base, map[string]entity.FieldChange{
			"name": {Old: "alice", New: "bob"},
		}),
	}
	return payload, trail
}

func TestReplayTrailByEntryID(t *testing.T) {
	payload, trail := trailFixture(t)

	// Revert to the state as of entry 20: undo entry 30 only.
	reverted, version, err := ReplayTrail(payload, trail, RevertTarget{EntryID: 20})
	require.NoError(t, err)
	assert.Equal(t, "0.0.3", version)
	assert.Equal(t, map[string]interface{}{"name": "bob"}, reverted)
}

func TestReplayTrailByVersion(t *testing.T) {
	payload, trail := trailFixture(t)

	// Undo entries 30 and 20 to land on 0.0.2.
	reverted, version, err := ReplayTrail(payload, trail, RevertTarget{Version: "0.0.2"})
	require.NoError(t, err)
	assert.Equal(t, "0.0.2", version)
	assert.Equal(t, map[string]interface{}{"name": "bob", "age": float64(30)}, reverted)
}

func TestReplayTrailByTime(t *testing.T) {
	payload, trail := trailFixture(t)

	// A timestamp between entries 20 and 30 keeps everything up to 20.
	cutoff := time.Date(2026, 5, 1, 13, 30, 0, 0, time.UTC)
	reverted, version, err := ReplayTrail(payload, trail, RevertTarget{Time: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, "0.0.3", version)
	assert.Equal(t, map[string]interface{}{"name": "bob"}, reverted)
}

func TestReplayTrailUnreachableTarget(t *testing.T) {
	payload, trail := trailFixture(t)

	_, _, err := ReplayTrail(payload, trail, RevertTarget{Version: "9.9.9"})
	assert.ErrorIs(t, err, exception.ErrNotFound)
}

func TestReplayTrailDoesNotMutateInput(t *testing.T) {
	payload, trail := trailFixture(t)

	_, _, err := ReplayTrail(payload, trail, RevertTarget{Version: "0.0.2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"name":  "carol",
		"email": "carol@example.org",
	}, payload)
}

func TestTrailEntrySoftDeleteKeepsPayload(t *testing.T) {
	deleted := time.Now()
	object := &entity.ObjectEntity{
		UUID:    "9d2e9dc2-98a4-4b50-a29c-2c7a0b3b2f01",
		Version: "0.0.2",
		Object:  datatypes.JSON(`{"name":"ada"}`),
		Deleted: &deleted,
	}
	scope := &Scope{
		Register: &entity.Register{ID: 1},
		Schema:   &entity.Schema{ID: 2},
		UserID:   "user-1",
		Request:  "req-123",
	}

	entry, err := newTrailEntry(scope, object, object, entity.ActionDelete)
	require.NoError(t, err)
	assert.Equal(t, entity.ActionDelete, entry.Action)
	assert.Equal(t, object.UUID, entry.ObjectUUID)
	assert.Equal(t, "0.0.2", entry.Version)
	assert.Equal(t, "req-123", entry.Request)

	// The payload is untouched by a soft delete, so no field changes.
	changes, err := entry.Changes()
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestReplayTrailAcrossDeleteWindow(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	payload := map[string]interface{}{"name": "bob"}

	restored := auditEntry(t, 40, "0.0.2", base.Add(3*time.Hour), map[string]entity.FieldChange{})
	restored.Action = entity.ActionRestore
	removed := auditEntry(t, 30, "0.0.2", base.Add(2*time.Hour), map[string]entity.FieldChange{})
	removed.Action = entity.ActionDelete
	updated := auditEntry(t, 20, "0.0.2", base.Add(time.Hour), map[string]entity.FieldChange{
		"name": {Old: "alice", New: "bob"},
	})
	created := auditEntry(t, 10, "0.0.1", base, map[string]entity.FieldChange{
		"name": {Old: nil, New: "alice"},
	})
	trail := []entity.AuditTrail{restored, removed, updated, created}

	// A target inside the soft-deleted window still carries the content
	// the object had when it was deleted.
	cutoff := base.Add(150 * time.Minute)
	reverted, version, err := ReplayTrail(payload, trail, RevertTarget{Time: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, "0.0.2", version)
	assert.Equal(t, map[string]interface{}{"name": "bob"}, reverted)
}

func TestParseRevertTarget(t *testing.T) {
	target, err := ParseRevertTarget("2026-05-01T12:00:00Z")
	require.NoError(t, err)
	require.NotNil(t, target.Time)

	target, err = ParseRevertTarget("42")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), target.EntryID)

	target, err = ParseRevertTarget("0.0.2")
	require.NoError(t, err)
	assert.Equal(t, "0.0.2", target.Version)

	_, err = ParseRevertTarget("")
	assert.Error(t, err)
}
