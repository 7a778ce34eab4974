package common

import (
	"github.com/xiaonanln/goworld2d/engine/uuid"
)

// ENTITYID_LENGTH is the length of Entity IDs in bytes
const ENTITYID_LENGTH = uuid.UUID_LENGTH

// EntityID is the stable identity of an entity. It never changes after creation and is never reused.
type EntityID uuid.UUID

// NilEntityID is the zero EntityID
var NilEntityID EntityID

// IsNil returns if EntityID is nil
func (id EntityID) IsNil() bool {
	return id == NilEntityID
}

func (id EntityID) String() string {
	return uuid.UUID(id).String()
}

// GenEntityID generates a new EntityID
func GenEntityID() EntityID {
	return EntityID(uuid.GenUUID())
}

// ParseEntityID parses the string form of an EntityID
func ParseEntityID(s string) (EntityID, error) {
	u, err := uuid.ParseUUID(s)
	return EntityID(u), err
}

// BodyID is the stable identity of a physics body handle
type BodyID uuid.UUID

// NilBodyID is the zero BodyID
var NilBodyID BodyID

// IsNil returns if BodyID is nil
func (id BodyID) IsNil() bool {
	return id == NilBodyID
}

func (id BodyID) String() string {
	return uuid.UUID(id).String()
}

// GenBodyID generates a new BodyID
func GenBodyID() BodyID {
	return BodyID(uuid.GenUUID())
}
