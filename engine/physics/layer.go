// Package physics is the body handle layer: it maps entity IDs to the bodies and colliders of a
// physics Backend. Gameplay code never sees backend handles, so entities can be renumbered or
// moved between worlds without the backend knowing.
package physics

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/common"
	"github.com/xiaonanln/goworld2d/engine/consts"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
	"github.com/xiaonanln/goworld2d/engine/opmon"
)

var (
	// ErrDuplicateBody is returned by Attach when the entity already has a live body
	ErrDuplicateBody = errors.New("duplicate body")
	// ErrNoSuchBody is returned when the entity has no body
	ErrNoSuchBody = errors.New("no such body")
)

// serializes cross-layer transfers so two layers are always locked in the same order
var transferLock sync.Mutex

// BodyHandle is the stable handle of a physics body owned by an entity
type BodyHandle struct {
	BodyID   common.BodyID
	EntityID common.EntityID
	Params   BodyParams

	body     BodyRef
	collider ColliderRef
}

func (h *BodyHandle) String() string {
	return "Body<" + h.BodyID.String() + "@" + h.EntityID.String() + ">"
}

// Collision is a contact between two bodies, translated to the entities owning them
type Collision struct {
	A     common.EntityID
	B     common.EntityID
	BodyA common.BodyID
	BodyB common.BodyID
}

// Layer owns the body handles of one Backend. All methods are safe for concurrent use.
type Layer struct {
	sync.Mutex

	backend    Backend
	handles    map[common.EntityID]*BodyHandle
	byBody     map[BodyRef]*BodyHandle
	collisions []Collision
	dropping   bool // warned about a full queue since the last drain
}

// NewLayer creates a Layer driving backend
func NewLayer(backend Backend) *Layer {
	return &Layer{
		backend: backend,
		handles: map[common.EntityID]*BodyHandle{},
		byBody:  map[BodyRef]*BodyHandle{},
	}
}

// Backend returns the backend of the layer
func (l *Layer) Backend() Backend {
	return l.backend
}

func (l *Layer) addHandle(h *BodyHandle) {
	l.handles[h.EntityID] = h
	l.byBody[h.body] = h
}

func (l *Layer) delHandle(h *BodyHandle) {
	delete(l.handles, h.EntityID)
	delete(l.byBody, h.body)
}

// Attach creates a body for entity id
func (l *Layer) Attach(id common.EntityID, params BodyParams) (*BodyHandle, error) {
	l.Lock()
	defer l.Unlock()

	if _, ok := l.handles[id]; ok {
		return nil, errors.Wrapf(ErrDuplicateBody, "attach %s", id)
	}
	body, collider, err := l.backend.CreateBody(params)
	if err != nil {
		return nil, errors.Wrapf(err, "attach %s: create %s body", id, params.Shape)
	}
	h := &BodyHandle{
		BodyID:   common.GenBodyID(),
		EntityID: id,
		Params:   params,
		body:     body,
		collider: collider,
	}
	l.addHandle(h)
	if consts.DEBUG_BODIES {
		gwlog.Debugf("physics: %s attached on %s", h, l.backend.Name())
	}
	cp := *h
	return &cp, nil
}

// Detach destroys the body of entity id. Returns ErrNoSuchBody if there is none.
// The backend body is destroyed before the handle is dropped; if destroying fails the handle is kept.
func (l *Layer) Detach(id common.EntityID) error {
	l.Lock()
	defer l.Unlock()

	h, ok := l.handles[id]
	if !ok {
		return errors.Wrapf(ErrNoSuchBody, "detach %s", id)
	}
	if err := l.backend.DestroyBody(h.body, h.collider); err != nil {
		return errors.Wrapf(err, "detach %s", h)
	}
	l.delHandle(h)
	if consts.DEBUG_BODIES {
		gwlog.Debugf("physics: %s detached", h)
	}
	return nil
}

// Lookup returns a copy of the handle of entity id
func (l *Layer) Lookup(id common.EntityID) (*BodyHandle, bool) {
	l.Lock()
	h, ok := l.handles[id]
	l.Unlock()
	if !ok {
		return nil, false
	}
	cp := *h
	return &cp, true
}

// Len returns the number of live bodies
func (l *Layer) Len() int {
	l.Lock()
	n := len(l.handles)
	l.Unlock()
	return n
}

// State returns the simulated state of the body of entity id
func (l *Layer) State(id common.EntityID) (BodyState, error) {
	l.Lock()
	defer l.Unlock()

	h, ok := l.handles[id]
	if !ok {
		return BodyState{}, errors.Wrapf(ErrNoSuchBody, "state of %s", id)
	}
	return l.backend.BodyState(h.body)
}

// SetState overwrites the simulated state of the body of entity id
func (l *Layer) SetState(id common.EntityID, st BodyState) error {
	l.Lock()
	defer l.Unlock()

	h, ok := l.handles[id]
	if !ok {
		return errors.Wrapf(ErrNoSuchBody, "set state of %s", id)
	}
	return l.backend.SetBodyState(h.body, st)
}

// Step advances the backend by dt seconds. Contacts are translated to collisions, queued for
// DrainCollisions and returned. The queue keeps at most PHYSICS_COLLISION_QUEUE_MAXLEN
// collisions; the oldest are dropped when nobody drains it.
func (l *Layer) Step(dt float64) []Collision {
	op := opmon.StartOperation("physics.step")
	defer op.Finish(consts.PHYSICS_STEP_WARN_THRESHOLD)

	l.Lock()
	defer l.Unlock()

	contacts := l.backend.Step(dt)
	if len(contacts) == 0 {
		return nil
	}
	collisions := make([]Collision, 0, len(contacts))
	for _, c := range contacts {
		ha, hb := l.byBody[c.A], l.byBody[c.B]
		if ha == nil || hb == nil {
			gwlog.Warnf("physics: %s reported a contact with an unknown body", l.backend.Name())
			continue
		}
		collisions = append(collisions, Collision{
			A:     ha.EntityID,
			B:     hb.EntityID,
			BodyA: ha.BodyID,
			BodyB: hb.BodyID,
		})
	}
	l.collisions = append(l.collisions, collisions...)
	if over := len(l.collisions) - consts.PHYSICS_COLLISION_QUEUE_MAXLEN; over > 0 {
		if !l.dropping {
			gwlog.Warnf("physics: %s collision queue full, dropping oldest collisions until drained", l.backend.Name())
			l.dropping = true
		}
		l.collisions = append(l.collisions[:0], l.collisions[over:]...)
	}
	return collisions
}

// PendingCollisions returns the number of queued collisions not drained yet
func (l *Layer) PendingCollisions() int {
	l.Lock()
	n := len(l.collisions)
	l.Unlock()
	return n
}

// DrainCollisions returns and clears the queued collisions
func (l *Layer) DrainCollisions() []Collision {
	l.Lock()
	collisions := l.collisions
	l.collisions = nil
	l.dropping = false
	l.Unlock()
	return collisions
}

// Transfer moves the body of entity id into layer to. The BodyID is kept. If both layers share a
// backend only the handle moves; otherwise the body is recreated in the destination backend with
// its current state and destroyed in the source.
func (l *Layer) Transfer(id common.EntityID, to *Layer) error {
	if to == l {
		return nil
	}

	transferLock.Lock()
	defer transferLock.Unlock()
	l.Lock()
	defer l.Unlock()
	to.Lock()
	defer to.Unlock()

	h, ok := l.handles[id]
	if !ok {
		return errors.Wrapf(ErrNoSuchBody, "transfer %s", id)
	}
	if _, ok := to.handles[id]; ok {
		return errors.Wrapf(ErrDuplicateBody, "transfer %s", id)
	}

	if l.backend == to.backend {
		l.delHandle(h)
		to.addHandle(h)
		return nil
	}

	st, err := l.backend.BodyState(h.body)
	if err != nil {
		return errors.Wrapf(err, "transfer %s", h)
	}
	params := h.Params
	params.Position = st.Position
	params.Velocity = st.Velocity
	body, collider, err := to.backend.CreateBody(params)
	if err != nil {
		return errors.Wrapf(err, "transfer %s: create on %s", h, to.backend.Name())
	}
	if err := l.backend.DestroyBody(h.body, h.collider); err != nil {
		if err2 := to.backend.DestroyBody(body, collider); err2 != nil {
			gwlog.TraceError("physics: leaked body on %s while transferring %s: %v", to.backend.Name(), h, err2)
		}
		return errors.Wrapf(err, "transfer %s: destroy on %s", h, l.backend.Name())
	}

	l.delHandle(h)
	moved := &BodyHandle{
		BodyID:   h.BodyID,
		EntityID: h.EntityID,
		Params:   params,
		body:     body,
		collider: collider,
	}
	to.addHandle(moved)
	if consts.DEBUG_BODIES {
		gwlog.Debugf("physics: %s moved from %s to %s", moved, l.backend.Name(), to.backend.Name())
	}
	return nil
}
