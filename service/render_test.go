package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-register-service/config"
	"github.com/tnqbao/gau-register-service/entity"
)

func renderFixture(t *testing.T) (*RenderService, *Scope, *entity.ObjectEntity) {
	t.Helper()
	cfg := &config.Config{EnvConfig: &config.EnvConfig{}}
	cfg.EnvConfig.Render.MaxExtendDepth = 3
	svc := NewRenderService(cfg, nil, nil)

	scope := &Scope{
		Register: &entity.Register{ID: 1},
		Schema:   &entity.Schema{ID: 2},
	}
	object := &entity.ObjectEntity{
		ID:         7,
		UUID:       "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		URI:        "https://example.org/api/registers/1/schemas/2/objects/7c9e6679-7425-40de-944b-e07fc1f90ae7",
		RegisterID: 1,
		SchemaID:   2,
		Version:    "0.0.3",
		CreatedAt:  time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, object.SetPayload(map[string]interface{}{
		"name":   "ada",
		"email":  "ada@example.com",
		"secret": "hunter2",
	}))
	return svc, scope, object
}

func TestRenderObjectIncludesSelfMetadata(t *testing.T) {
	svc, scope, object := renderFixture(t)

	doc, err := svc.RenderObject(context.Background(), scope, object, RenderOptions{})
	require.NoError(t, err)

	assert.Equal(t, "ada", doc["name"])
	assert.Equal(t, uint64(7), doc["id"])
	assert.Equal(t, object.UUID, doc["uuid"])

	self, ok := doc["@self"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "0.0.3", self["version"])
	assert.Equal(t, uint64(1), self["register"])
	assert.Equal(t, uint64(2), self["schema"])
	assert.NotContains(t, self, "deleted")
	assert.NotContains(t, self, "lock")
}

func TestRenderObjectFieldsAllowList(t *testing.T) {
	svc, scope, object := renderFixture(t)

	doc, err := svc.RenderObject(context.Background(), scope, object, RenderOptions{
		Fields: []string{"name"},
	})
	require.NoError(t, err)

	assert.Equal(t, "ada", doc["name"])
	assert.NotContains(t, doc, "email")
	assert.NotContains(t, doc, "secret")
	assert.Contains(t, doc, "@self")
}

func TestRenderObjectUnset(t *testing.T) {
	svc, scope, object := renderFixture(t)

	doc, err := svc.RenderObject(context.Background(), scope, object, RenderOptions{
		Unset: []string{"secret"},
	})
	require.NoError(t, err)

	assert.Contains(t, doc, "name")
	assert.Contains(t, doc, "email")
	assert.NotContains(t, doc, "secret")
}

func TestRenderObjectDoesNotMutateEntity(t *testing.T) {
	svc, scope, object := renderFixture(t)
	before := string(object.Object)

	_, err := svc.RenderObject(context.Background(), scope, object, RenderOptions{
		Unset: []string{"secret"},
	})
	require.NoError(t, err)

	assert.Equal(t, before, string(object.Object))
}

func TestRenderObjectExposesActiveLock(t *testing.T) {
	svc, scope, object := renderFixture(t)
	until := time.Now().Add(time.Hour)
	object.LockedBy = "user-1"
	object.LockedUntil = &until

	doc, err := svc.RenderObject(context.Background(), scope, object, RenderOptions{})
	require.NoError(t, err)

	self := doc["@self"].(map[string]interface{})
	lock, ok := self["lock"].(*entity.LockInfo)
	require.True(t, ok)
	assert.Equal(t, "user-1", lock.LockedBy)
}

func TestRenderObjectExpiredLockHidden(t *testing.T) {
	svc, scope, object := renderFixture(t)
	until := time.Now().Add(-time.Minute)
	object.LockedBy = "user-1"
	object.LockedUntil = &until

	doc, err := svc.RenderObject(context.Background(), scope, object, RenderOptions{})
	require.NoError(t, err)

	self := doc["@self"].(map[string]interface{})
	assert.NotContains(t, self, "lock")
}

func TestRenderObjectExtendsSelf(t *testing.T) {
	svc, scope, object := renderFixture(t)
	scope.Register.Title = "people"
	scope.Schema.Title = "person"

	doc, err := svc.RenderObject(context.Background(), scope, object, RenderOptions{
		Extend: []string{"@self.register", "@self.schema"},
	})
	require.NoError(t, err)

	self := doc["@self"].(map[string]interface{})
	register, ok := self["register"].(*entity.Register)
	require.True(t, ok)
	assert.Equal(t, "people", register.Title)
	schema, ok := self["schema"].(*entity.Schema)
	require.True(t, ok)
	assert.Equal(t, "person", schema.Title)

	// The payload itself is untouched by @self extension.
	assert.Equal(t, "ada", doc["name"])
}

func TestRenderObjectSelfExtendUnresolvable(t *testing.T) {
	svc, scope, object := renderFixture(t)
	// The related register is not the scope's and no repository is
	// wired, so the bare id stays in place.
	object.RegisterID = 99

	doc, err := svc.RenderObject(context.Background(), scope, object, RenderOptions{
		Extend: []string{"@self.register"},
	})
	require.NoError(t, err)

	self := doc["@self"].(map[string]interface{})
	assert.Equal(t, uint64(99), self["register"])
}
