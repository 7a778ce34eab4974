// Package entity is the identity layer: it maps stable entity IDs to the transient store slots
// holding their components.
package entity

import (
	"fmt"

	"github.com/xiaonanln/goworld2d/engine/common"
	"github.com/xiaonanln/goworld2d/engine/store"
)

// Entity is a stable game object identity bound to its current store slot.
//
// ID is generated once and never changes. The slot is rewritten only by the owning world
// (merge, compaction) through Table.Rebind. Two Entity values with the same ID are the same
// logical entity whatever their slots.
type Entity struct {
	ID   common.EntityID
	slot store.Slot
	seq  uint64 // insertion order in the owning Table
}

// Slot returns the store slot the entity currently occupies
func (e *Entity) Slot() store.Slot {
	return e.slot
}

// Equal compares identities only
func (e *Entity) Equal(other *Entity) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.ID == other.ID
}

func (e *Entity) String() string {
	if e == nil {
		return "Entity<nil>"
	}
	return fmt.Sprintf("Entity<%s@%d#%d>", e.ID, e.slot.Index, e.slot.Gen)
}
