package entity

import (
	"github.com/petar/GoLLRB/llrb"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/common"
	"github.com/xiaonanln/goworld2d/engine/store"
)

var (
	// ErrDuplicateEntity is returned when inserting an entity whose ID is already in the table
	ErrDuplicateEntity = errors.New("duplicate entity")
	// ErrNoSuchEntity is returned when rebinding an entity the table does not hold
	ErrNoSuchEntity = errors.New("no such entity")
)

type orderItem struct {
	seq    uint64
	entity *Entity
}

func (it orderItem) Less(than llrb.Item) bool {
	return it.seq < than.(orderItem).seq
}

// Table is the indirection from entity IDs to store slots. Iteration follows insertion order.
// Not safe for concurrent use.
type Table struct {
	entities EntityMap
	order    *llrb.LLRB
	nextSeq  uint64
}

// NewTable creates an empty Table
func NewTable() *Table {
	return &Table{
		entities: EntityMap{},
		order:    llrb.New(),
		nextSeq:  1,
	}
}

func (t *Table) add(e *Entity, slot store.Slot) {
	e.slot = slot
	e.seq = t.nextSeq
	t.nextSeq += 1
	t.entities.Add(e)
	t.order.ReplaceOrInsert(orderItem{seq: e.seq, entity: e})
}

// Create allocates a fresh ID bound to slot
func (t *Table) Create(slot store.Slot) *Entity {
	e := &Entity{ID: common.GenEntityID()}
	t.add(e, slot)
	return e
}

// Insert adopts an existing entity, keeping its ID, at slot. Used when entities move between worlds.
func (t *Table) Insert(e *Entity, slot store.Slot) error {
	if t.entities.Get(e.ID) != nil {
		return errors.Wrapf(ErrDuplicateEntity, "%s", e.ID)
	}
	t.add(e, slot)
	return nil
}

// Rebind points e at a new slot. The ID is untouched.
func (t *Table) Rebind(e *Entity, slot store.Slot) error {
	if t.entities.Get(e.ID) != e {
		return errors.Wrapf(ErrNoSuchEntity, "rebind %s", e)
	}
	e.slot = slot
	return nil
}

// Lookup returns the entity of id
func (t *Table) Lookup(id common.EntityID) (*Entity, bool) {
	e := t.entities.Get(id)
	return e, e != nil
}

// Resolve returns the current slot of id
func (t *Table) Resolve(id common.EntityID) (store.Slot, bool) {
	e := t.entities.Get(id)
	if e == nil {
		return store.NilSlot, false
	}
	return e.slot, true
}

// Contains returns if id is in the table
func (t *Table) Contains(id common.EntityID) bool {
	return t.entities.Get(id) != nil
}

// Remove drops id from the table and returns its entity
func (t *Table) Remove(id common.EntityID) (*Entity, bool) {
	e := t.entities.Get(id)
	if e == nil {
		return nil, false
	}
	t.entities.Del(id)
	t.order.Delete(orderItem{seq: e.seq})
	return e, true
}

// Each calls cb for every entity in insertion order until cb returns false.
// cb must not add or remove entities.
func (t *Table) Each(cb func(e *Entity) bool) {
	t.order.AscendGreaterOrEqual(orderItem{seq: 0}, func(item llrb.Item) bool {
		return cb(item.(orderItem).entity)
	})
}

// Entities returns all entities in insertion order
func (t *Table) Entities() []*Entity {
	res := make([]*Entity, 0, t.Len())
	t.Each(func(e *Entity) bool {
		res = append(res, e)
		return true
	})
	return res
}

// Len returns the number of entities
func (t *Table) Len() int {
	return len(t.entities)
}
