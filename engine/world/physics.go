package world

import (
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/common"
	"github.com/xiaonanln/goworld2d/engine/entity"
	"github.com/xiaonanln/goworld2d/engine/physics"
)

// AttachBody creates a physics body for entity id. The body starts at the entity's Transform and
// Velocity when it has them.
func (w *World) AttachBody(id common.EntityID, params physics.BodyParams) (*physics.BodyHandle, error) {
	if err := w.checkAlive(); err != nil {
		return nil, err
	}
	if w.physics == nil {
		return nil, ErrNoPhysics
	}
	if _, err := w.slotOf(id); err != nil {
		return nil, err
	}
	if t, ok := w.Transform(id); ok {
		params.Position = t.Position
	}
	if v, ok := w.Velocity(id); ok {
		params.Velocity = v.Linear
	}
	return w.physics.Attach(id, params)
}

// DetachBody destroys the physics body of entity id
func (w *World) DetachBody(id common.EntityID) error {
	if err := w.checkAlive(); err != nil {
		return err
	}
	if w.physics == nil {
		return ErrNoPhysics
	}
	return w.physics.Detach(id)
}

// Body returns the physics body of entity id
func (w *World) Body(id common.EntityID) (*physics.BodyHandle, bool) {
	if w.physics == nil {
		return nil, false
	}
	if !w.entities.Contains(id) {
		return nil, false
	}
	return w.physics.Lookup(id)
}

// StepPhysics pushes Transform and Velocity of every entity with a body into the simulation,
// steps it by dt and writes the results back. Returns the collisions drained from the layer,
// including any queued by earlier steps. A shared physics layer is stepped as a whole, so only
// one of the worlds sharing it should step it each frame.
func (w *World) StepPhysics(dt float64) ([]physics.Collision, error) {
	if err := w.checkAlive(); err != nil {
		return nil, err
	}
	if w.physics == nil {
		return nil, ErrNoPhysics
	}

	var bodies []*entity.Entity
	var err error
	w.entities.Each(func(e *entity.Entity) bool {
		if _, ok := w.physics.Lookup(e.ID); !ok {
			return true
		}
		bodies = append(bodies, e)
		t, hasT := w.Transform(e.ID)
		v, hasV := w.Velocity(e.ID)
		if !hasT && !hasV {
			return true
		}
		st, err2 := w.physics.State(e.ID)
		if err2 != nil {
			err = err2
			return false
		}
		if hasT {
			st.Position = t.Position
		}
		if hasV {
			st.Velocity = v.Linear
		}
		if err = w.physics.SetState(e.ID, st); err != nil {
			return false
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrapf(err, "%s: sync bodies", w)
	}

	w.physics.Step(dt)
	collisions := w.physics.DrainCollisions()

	for _, e := range bodies {
		st, err := w.physics.State(e.ID)
		if err != nil {
			return collisions, errors.Wrapf(err, "%s: read back %s", w, e)
		}
		if t, ok := w.Transform(e.ID); ok {
			t.Position = st.Position
		}
		if v, ok := w.Velocity(e.ID); ok {
			v.Linear = st.Velocity
		}
	}
	return collisions, nil
}
