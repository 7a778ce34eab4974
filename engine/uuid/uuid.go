package uuid

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// UUID_LENGTH is length of a UUID in bytes
	UUID_LENGTH = 16
)

// UUID is a 128-bit universally unique identifier
type UUID = uuid.UUID

// Nil is the zero UUID
var Nil UUID

// GenUUID generates a new random (version 4) UUID.
//
// Uniqueness relies on the collision resistance of 122 random bits, which is treated as
// infallible at engine scale.
func GenUUID() UUID {
	return uuid.New()
}

// ParseUUID parses the canonical string form of a UUID
func ParseUUID(s string) (UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, errors.Wrapf(err, "invalid uuid %q", s)
	}
	return u, nil
}

// GenFixedUUID builds a UUID from b, left padding with zeros or truncating to 16 bytes
func GenFixedUUID(b []byte) UUID {
	var u UUID
	if len(b) > UUID_LENGTH {
		b = b[:UUID_LENGTH]
	}
	copy(u[UUID_LENGTH-len(b):], b)
	return u
}
