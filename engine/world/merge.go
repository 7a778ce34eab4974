package world

import (
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/common"
	"github.com/xiaonanln/goworld2d/engine/consts"
	"github.com/xiaonanln/goworld2d/engine/entity"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
	"github.com/xiaonanln/goworld2d/engine/opmon"
	"github.com/xiaonanln/goworld2d/engine/store"
)

// MergeError is returned when a merge fails. The destination world is left as it was unless
// Rollback is set: then some physics body could not be moved back to the source layer and stays
// in the destination layer.
type MergeError struct {
	Entity   common.EntityID // nil when the merge failed before touching any entity
	Err      error
	Rollback error // first error of the rollback, nil when the rollback was complete
}

func (e *MergeError) Error() string {
	msg := "merge failed"
	if !e.Entity.IsNil() {
		msg += " at " + e.Entity.String()
	}
	msg += ": " + e.Err.Error()
	if e.Rollback != nil {
		msg += " (rollback incomplete: " + e.Rollback.Error() + ")"
	}
	return msg
}

// Cause returns the error that failed the merge
func (e *MergeError) Cause() error {
	return e.Err
}

// Unwrap returns the error that failed the merge
func (e *MergeError) Unwrap() error {
	return e.Err
}

// undo journal of a merge, replayed in reverse on failure
type mergeJournal struct {
	undo []func() error
}

func (j *mergeJournal) record(f func() error) {
	j.undo = append(j.undo, f)
}

// rollback runs every undo step even when some fail, and returns the first failure
func (j *mergeJournal) rollback() error {
	var firstErr error
	for i := len(j.undo) - 1; i >= 0; i-- {
		if err := j.undo[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	j.undo = nil
	return firstErr
}

type mergePlan struct {
	e       *entity.Entity
	oldSlot store.Slot
	newSlot store.Slot
}

// Merge moves every entity of src into w. See Merge.
func (w *World) Merge(src *World) error {
	return Merge(w, src)
}

// Merge moves every entity of src into dst, keeping entity IDs and the *entity.Entity values.
// Components are cloned into new dst slots and physics bodies follow their entities. Asset
// references need nothing since the cache is keyed by path.
//
// Merge is atomic: on failure every dst slot allocated and every body moved so far is rolled
// back, dst keeps its entity count and component state and src is unchanged. The only step of
// the rollback that can fail is moving a body back across backends; MergeError.Rollback reports it. On success src is
// left empty and every later mutation of it returns ErrWorldMerged.
func Merge(dst, src *World) error {
	op := opmon.StartOperation("world.merge")
	defer op.Finish(consts.OPMON_DEFAULT_WARN_THRESHOLD)

	if dst == src {
		return &MergeError{Err: errors.Errorf("can not merge %s into itself", dst)}
	}
	if err := dst.checkAlive(); err != nil {
		return &MergeError{Err: err}
	}
	if err := src.checkAlive(); err != nil {
		return &MergeError{Err: err}
	}

	entities := src.entities.Entities()
	for _, e := range entities {
		if dst.entities.Contains(e.ID) {
			return &MergeError{Entity: e.ID, Err: errors.Wrapf(entity.ErrDuplicateEntity, "%s already in %s", e.ID, dst.name)}
		}
		if src.physics != nil && dst.physics == nil {
			if _, ok := src.physics.Lookup(e.ID); ok {
				return &MergeError{Entity: e.ID, Err: ErrNoPhysics}
			}
		}
	}

	if dst.debug {
		gwlog.Debugf("merge: %s <- %s (%d entities)", dst, src, len(entities))
	}

	journal := &mergeJournal{}
	fail := func(id common.EntityID, err error) error {
		rerr := journal.rollback()
		if rerr != nil {
			gwlog.Errorf("merge: %s <- %s rollback incomplete: %v", dst, src, rerr)
		} else if dst.debug {
			gwlog.Debugf("merge: %s <- %s rolled back: %v", dst, src, err)
		}
		return &MergeError{Entity: id, Err: err, Rollback: rerr}
	}

	// allocate and copy components
	plan := make([]mergePlan, 0, len(entities))
	for _, e := range entities {
		slot := dst.store.Alloc()
		journal.record(func() error {
			return dst.store.Free(slot)
		})
		for _, c := range src.store.Components(e.Slot()) {
			clone, err := store.Clone(c)
			if err != nil {
				return fail(e.ID, errors.Wrapf(err, "clone %T", c))
			}
			if err := dst.store.Set(slot, clone); err != nil {
				return fail(e.ID, err)
			}
		}
		plan = append(plan, mergePlan{e: e, oldSlot: e.Slot(), newSlot: slot})
	}

	// move physics bodies
	if src.physics != nil && src.physics != dst.physics {
		for _, p := range plan {
			id := p.e.ID
			if _, ok := src.physics.Lookup(id); !ok {
				continue
			}
			if err := src.physics.Transfer(id, dst.physics); err != nil {
				return fail(id, err)
			}
			journal.record(func() error {
				return errors.Wrapf(dst.physics.Transfer(id, src.physics), "move body of %s back to %s", id, src.name)
			})
		}
	}

	// commit identities, nothing below fails
	for _, p := range plan {
		src.entities.Remove(p.e.ID)
		if err := src.store.Free(p.oldSlot); err != nil {
			gwlog.Errorf("merge: free %s of %s in %s: %v", p.oldSlot, p.e.ID, src, err)
		}
		if err := dst.entities.Insert(p.e, p.newSlot); err != nil {
			gwlog.Panicf("merge: insert %s into %s: %v", p.e, dst, err)
		}
	}
	src.merged = true

	if dst.debug {
		gwlog.Debugf("merge: %s <- %s done", dst, src.name)
	}
	return nil
}
