package repository

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-register-service/exception"
)

// ParseIdentifier classifies an identifier as a numeric id or a UUID.
// Numeric-looking strings resolve as ids first; everything else must be
// a well-formed UUID. Malformed identifiers are a client error, never a
// silent empty result.
func ParseIdentifier(identifier string) (uint64, string, error) {
	if identifier == "" {
		return 0, "", exception.ErrInvalidIdentifier
	}
	if id, err := strconv.ParseUint(identifier, 10, 64); err == nil && id > 0 {
		return id, "", nil
	}
	if parsed, err := uuid.Parse(identifier); err == nil {
		return 0, parsed.String(), nil
	}
	return 0, "", exception.ErrInvalidIdentifier
}
