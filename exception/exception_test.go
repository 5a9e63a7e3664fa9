package exception

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorAccumulates(t *testing.T) {
	ve := &ValidationError{}
	assert.True(t, ve.Empty())

	ve.Add("name", "required field is missing")
	ve.Add("age", "value %v is below minimum %v", -5, 0)

	assert.False(t, ve.Empty())
	require.Len(t, ve.Issues, 2)
	assert.Equal(t, "age", ve.Issues[1].Path)
	assert.Contains(t, ve.Error(), "name: required field is missing")
}

func TestValidationErrorNilReceiverEmpty(t *testing.T) {
	var ve *ValidationError
	assert.True(t, ve.Empty())
}

func TestIsValidationUnwraps(t *testing.T) {
	ve := &ValidationError{}
	ve.Add("name", "bad")
	wrapped := fmt.Errorf("saving object: %w", ve)

	got, ok := IsValidation(wrapped)
	require.True(t, ok)
	assert.Len(t, got.Issues, 1)

	_, ok = IsValidation(ErrNotFound)
	assert.False(t, ok)
}

func TestIsLockedUnwraps(t *testing.T) {
	le := &LockedError{LockedBy: "user-1", Until: time.Now().Add(time.Hour)}
	wrapped := fmt.Errorf("saving object: %w", le)

	got, ok := IsLocked(wrapped)
	require.True(t, ok)
	assert.Equal(t, "user-1", got.LockedBy)
	assert.Contains(t, le.Error(), "user-1")
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", ErrNotFound)))
	assert.False(t, IsNotFound(ErrNotAuthorized))
}
