// Package store is the component store: entity data lives in slots addressed by generational
// indices. Slots are transient; anything that must survive compaction or merging keys off
// entity IDs instead.
package store

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// ErrDeadSlot is returned when a slot is not (or no longer) allocated
var ErrDeadSlot = errors.New("dead slot")

// Slot is a generational index into a ComponentStore. Gen is 0 only for NilSlot.
type Slot struct {
	Index uint32
	Gen   uint32
}

// NilSlot never refers to a live slot
var NilSlot Slot

// IsNil returns if the slot is NilSlot
func (s Slot) IsNil() bool {
	return s.Gen == 0
}

func (s Slot) String() string {
	return fmt.Sprintf("Slot<%d#%d>", s.Index, s.Gen)
}

// ComponentStore is the storage capability the identity and world layers depend on
type ComponentStore interface {
	// Alloc allocates an empty slot
	Alloc() Slot
	// Free reclaims a slot and drops its components
	Free(slot Slot) error
	// Alive returns if slot is allocated
	Alive(slot Slot) bool
	// Set inserts or replaces a component in slot
	Set(slot Slot, c Component) error
	// Get returns the component of the given name in slot
	Get(slot Slot, name string) (Component, bool)
	// Remove removes the component of the given name from slot
	Remove(slot Slot, name string) (Component, bool)
	// Components returns all components in slot ordered by name
	Components(slot Slot) []Component
	// Each calls cb for every live slot in index order until cb returns false
	Each(cb func(slot Slot) bool)
	// Compact packs live slots into the lowest indices and returns the old to new mapping
	Compact() map[Slot]Slot
	// Len returns the number of live slots
	Len() int
}

type slotEntry struct {
	gen   uint32
	alive bool
	comps map[string]Component
}

// SlotStore is the default ComponentStore: a dense array of slots with a free list.
// Not safe for concurrent use.
type SlotStore struct {
	slots []slotEntry
	free  []uint32 // stack of free indices, next reuse at the end
	live  int
}

var _ ComponentStore = (*SlotStore)(nil)

// NewSlotStore creates an empty SlotStore
func NewSlotStore() *SlotStore {
	return &SlotStore{}
}

func (s *SlotStore) entry(slot Slot) *slotEntry {
	if slot.IsNil() || int(slot.Index) >= len(s.slots) {
		return nil
	}
	e := &s.slots[slot.Index]
	if !e.alive || e.gen != slot.Gen {
		return nil
	}
	return e
}

// Alloc allocates an empty slot, reusing freed indices with a bumped generation
func (s *SlotStore) Alloc() Slot {
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, slotEntry{gen: 1})
	}
	e := &s.slots[idx]
	e.alive = true
	e.comps = map[string]Component{}
	s.live += 1
	return Slot{Index: idx, Gen: e.gen}
}

// Free reclaims slot
func (s *SlotStore) Free(slot Slot) error {
	e := s.entry(slot)
	if e == nil {
		return errors.Wrapf(ErrDeadSlot, "free %s", slot)
	}
	e.alive = false
	e.comps = nil
	e.gen += 1
	s.free = append(s.free, slot.Index)
	s.live -= 1
	return nil
}

// Alive returns if slot is allocated
func (s *SlotStore) Alive(slot Slot) bool {
	return s.entry(slot) != nil
}

// Set inserts or replaces the component of c's registered type
func (s *SlotStore) Set(slot Slot, c Component) error {
	e := s.entry(slot)
	if e == nil {
		return errors.Wrapf(ErrDeadSlot, "set %T on %s", c, slot)
	}
	name, err := ComponentName(c)
	if err != nil {
		return err
	}
	e.comps[name] = c
	return nil
}

// Get returns the named component
func (s *SlotStore) Get(slot Slot, name string) (Component, bool) {
	e := s.entry(slot)
	if e == nil {
		return nil, false
	}
	c, ok := e.comps[name]
	return c, ok
}

// Remove removes the named component
func (s *SlotStore) Remove(slot Slot, name string) (Component, bool) {
	e := s.entry(slot)
	if e == nil {
		return nil, false
	}
	c, ok := e.comps[name]
	if ok {
		delete(e.comps, name)
	}
	return c, ok
}

// Components returns the slot's components ordered by name
func (s *SlotStore) Components(slot Slot) []Component {
	e := s.entry(slot)
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.comps))
	for name := range e.comps {
		names = append(names, name)
	}
	sort.Strings(names)
	res := make([]Component, len(names))
	for i, name := range names {
		res[i] = e.comps[name]
	}
	return res
}

// Each calls cb for every live slot in index order
func (s *SlotStore) Each(cb func(slot Slot) bool) {
	for idx := range s.slots {
		e := &s.slots[idx]
		if !e.alive {
			continue
		}
		if !cb(Slot{Index: uint32(idx), Gen: e.gen}) {
			break
		}
	}
}

// Compact moves live slots into indices [0, Len()). Every moved slot gets a generation above
// anything its new index ever had, and vacated indices are bumped too, so stale Slot values never
// resolve after compaction.
func (s *SlotStore) Compact() map[Slot]Slot {
	moved := make(map[Slot]Slot, s.live)
	w := 0
	for r := range s.slots {
		e := s.slots[r]
		if !e.alive {
			continue
		}
		old := Slot{Index: uint32(r), Gen: e.gen}
		if r == w {
			moved[old] = old
			w++
			continue
		}
		dst := &s.slots[w]
		gen := dst.gen + 1
		*dst = slotEntry{gen: gen, alive: true, comps: e.comps}
		src := &s.slots[r]
		src.alive = false
		src.comps = nil
		src.gen += 1
		moved[old] = Slot{Index: uint32(w), Gen: gen}
		w++
	}

	s.free = s.free[:0]
	for idx := len(s.slots) - 1; idx >= w; idx-- {
		s.free = append(s.free, uint32(idx))
	}
	return moved
}

// Len returns the number of live slots
func (s *SlotStore) Len() int {
	return s.live
}
