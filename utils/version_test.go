package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBumpPatch(t *testing.T) {
	assert.Equal(t, "1.0.4", BumpPatch("1.0.3"))
	assert.Equal(t, "0.0.2", BumpPatch("0.0.1"))
	assert.Equal(t, "2.5.1", BumpPatch("2.5"))
	assert.Equal(t, "3.0.1", BumpPatch("3"))
	assert.Equal(t, "0.0.1", BumpPatch(""))
	assert.Equal(t, "0.0.1", BumpPatch("garbage"))
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, 0, CompareVersions("1.2.3", "1.2.3"))
	assert.Equal(t, -1, CompareVersions("1.2.3", "1.2.4"))
	assert.Equal(t, 1, CompareVersions("2.0.0", "1.9.9"))
	assert.Equal(t, -1, CompareVersions("0.9", "1.0.0"))
	assert.Equal(t, 0, CompareVersions("1.0", "1.0.0"))
}
