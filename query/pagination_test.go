package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(45, 10, 0, 10)

	assert.Equal(t, int64(45), p.Total)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 5, p.Pages)
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())
}

func TestNewPaginationMiddlePage(t *testing.T) {
	p := NewPagination(45, 10, 20, 10)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 5, p.Pages)
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())
}

func TestNewPaginationLastPage(t *testing.T) {
	p := NewPagination(45, 10, 40, 5)

	assert.Equal(t, 5, p.Page)
	assert.Equal(t, 5, p.Pages)
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())
}

func TestNewPaginationEmptyResult(t *testing.T) {
	p := NewPagination(0, 10, 0, 0)

	assert.Equal(t, int64(0), p.Total)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.Pages)
	assert.False(t, p.HasNext())
	assert.False(t, p.HasPrev())
}

func TestNewPaginationUndercountCorrected(t *testing.T) {
	// The count reported fewer rows than the page actually returned;
	// the total is raised so the envelope stays consistent.
	p := NewPagination(3, 10, 10, 7)

	assert.Equal(t, int64(17), p.Total)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 2, p.Pages)
}

func TestNewPaginationNormalizesBounds(t *testing.T) {
	p := NewPagination(5, 0, -3, 5)

	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, 1, p.Page)
}
