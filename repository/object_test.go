package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tnqbao/gau-register-service/exception"
	"github.com/tnqbao/gau-register-service/query"
)

func TestObjectQueryMalformedIdentifierList(t *testing.T) {
	r := NewObjectRepository(nil, query.NewPostgresTranslator(), 0)
	q := &query.ObjectQuery{IDs: []string{"12", "not-an-id"}}

	// A malformed _ids entry is a client error, not an empty match.
	_, err := r.FindAll(context.Background(), 1, 2, q)
	assert.ErrorIs(t, err, exception.ErrInvalidIdentifier)

	_, err = r.CountAll(context.Background(), 1, 2, q)
	assert.ErrorIs(t, err, exception.ErrInvalidIdentifier)
}
