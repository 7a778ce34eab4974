package physics_test

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/common"
	"github.com/xiaonanln/goworld2d/engine/config"
	"github.com/xiaonanln/goworld2d/engine/consts"
	"github.com/xiaonanln/goworld2d/engine/physics"
	"github.com/xiaonanln/goworld2d/engine/physics/backend"
	"github.com/xiaonanln/goworld2d/engine/physics/backend/kinematic"
)

func ball(x common.Coord) physics.BodyParams {
	return physics.BodyParams{
		Shape:    physics.ShapeCircle,
		Radius:   1,
		Mass:     1,
		Position: common.Vector2{X: x},
	}
}

type brokenBackend struct {
	*kinematic.Backend
	failDestroy bool
}

func (b *brokenBackend) DestroyBody(body physics.BodyRef, collider physics.ColliderRef) error {
	if b.failDestroy {
		return errors.New("destroy failed")
	}
	return b.Backend.DestroyBody(body, collider)
}

func TestAttachDetach(t *testing.T) {
	kb := kinematic.New(common.Vector2{}, 1)
	layer := physics.NewLayer(kb)
	id := common.GenEntityID()

	h, err := layer.Attach(id, ball(0))
	assert.Equal(t, nil, err)
	assert.Equal(t, id, h.EntityID)
	assert.T(t, !h.BodyID.IsNil(), "body id generated")

	_, err = layer.Attach(id, ball(5))
	assert.T(t, errors.Cause(err) == physics.ErrDuplicateBody, "second attach")
	assert.Equal(t, 1, kb.Len())

	got, ok := layer.Lookup(id)
	assert.T(t, ok, "lookup")
	assert.Equal(t, h.BodyID, got.BodyID)

	assert.Equal(t, nil, layer.Detach(id))
	_, ok = layer.Lookup(id)
	assert.T(t, !ok, "lookup after detach")
	assert.Equal(t, 0, kb.Len())
	assert.T(t, errors.Cause(layer.Detach(id)) == physics.ErrNoSuchBody, "detach twice")

	_, err = layer.Attach(id, physics.BodyParams{Shape: physics.ShapeBox})
	assert.T(t, err != nil, "backend rejects body")
	assert.Equal(t, 0, layer.Len())
}

func TestDetachKeepsHandleWhenBackendFails(t *testing.T) {
	bb := &brokenBackend{Backend: kinematic.New(common.Vector2{}, 1)}
	layer := physics.NewLayer(bb)
	id := common.GenEntityID()
	layer.Attach(id, ball(0))

	bb.failDestroy = true
	assert.T(t, layer.Detach(id) != nil, "destroy fails")
	_, ok := layer.Lookup(id)
	assert.T(t, ok, "handle kept")

	bb.failDestroy = false
	assert.Equal(t, nil, layer.Detach(id))
}

func TestStepCollisions(t *testing.T) {
	layer := physics.NewLayer(kinematic.New(common.Vector2{}, 1))
	a, b := common.GenEntityID(), common.GenEntityID()
	ha, _ := layer.Attach(a, ball(0))
	hb, _ := layer.Attach(b, ball(10))

	assert.Equal(t, 0, len(layer.Step(0.1)))

	assert.Equal(t, nil, layer.SetState(b, physics.BodyState{Position: common.Vector2{X: 1}}))
	collisions := layer.Step(0.1)
	assert.Equal(t, 1, len(collisions))
	assert.Equal(t, physics.Collision{A: a, B: b, BodyA: ha.BodyID, BodyB: hb.BodyID}, collisions[0])

	layer.Step(0.1)
	assert.Equal(t, 2, len(layer.DrainCollisions()))
	assert.Equal(t, 0, len(layer.DrainCollisions()))

	st, err := layer.State(b)
	assert.Equal(t, nil, err)
	assert.Equal(t, common.Coord(1), st.Position.X)
	_, err = layer.State(common.GenEntityID())
	assert.T(t, errors.Cause(err) == physics.ErrNoSuchBody, "state of unknown")
}

func TestCollisionQueueBounded(t *testing.T) {
	layer := physics.NewLayer(kinematic.New(common.Vector2{}, 1))
	layer.Attach(common.GenEntityID(), ball(0))
	layer.Attach(common.GenEntityID(), ball(1))

	delivered := 0
	for i := 0; i < 10000; i++ {
		delivered += len(layer.Step(0.016))
	}
	assert.Equal(t, 10000, delivered)
	assert.Equal(t, consts.PHYSICS_COLLISION_QUEUE_MAXLEN, layer.PendingCollisions())
	assert.Equal(t, consts.PHYSICS_COLLISION_QUEUE_MAXLEN, len(layer.DrainCollisions()))
	assert.Equal(t, 0, layer.PendingCollisions())
}

func TestTransfer(t *testing.T) {
	shared := kinematic.New(common.Vector2{}, 1)
	src := physics.NewLayer(shared)
	sameBackend := physics.NewLayer(shared)
	otherBackend := kinematic.New(common.Vector2{}, 1)
	other := physics.NewLayer(otherBackend)

	id := common.GenEntityID()
	p := ball(3)
	p.Velocity = common.Vector2{X: 1}
	h, _ := src.Attach(id, p)
	src.Step(1)

	assert.Equal(t, nil, src.Transfer(id, src))
	assert.Equal(t, nil, src.Transfer(id, sameBackend))
	_, ok := src.Lookup(id)
	assert.T(t, !ok, "moved out")
	moved, ok := sameBackend.Lookup(id)
	assert.T(t, ok && moved.BodyID == h.BodyID, "same body id")
	assert.Equal(t, 1, shared.Len())

	assert.Equal(t, nil, sameBackend.Transfer(id, other))
	assert.Equal(t, 0, shared.Len())
	assert.Equal(t, 1, otherBackend.Len())
	moved, _ = other.Lookup(id)
	assert.Equal(t, h.BodyID, moved.BodyID)
	st, _ := other.State(id)
	assert.Equal(t, common.Coord(4), st.Position.X)
	assert.Equal(t, common.Coord(1), st.Velocity.X)

	assert.T(t, errors.Cause(src.Transfer(id, other)) == physics.ErrNoSuchBody, "nothing to transfer")
	src.Attach(id, ball(0))
	assert.T(t, errors.Cause(src.Transfer(id, other)) == physics.ErrDuplicateBody, "destination already has the body")
}

func TestOpenBackend(t *testing.T) {
	cfg := config.Default()
	b, err := backend.Open(&cfg.Physics)
	assert.Equal(t, nil, err)
	assert.Equal(t, "kinematic", b.Name())

	cfg.Physics.Backend = "chipmunk"
	_, err = backend.Open(&cfg.Physics)
	assert.T(t, err != nil, "unknown backend")
}
