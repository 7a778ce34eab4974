// Package kinematic is an in-memory physics Backend: bodies move by velocity and gravity and
// overlapping colliders are reported as contacts. There is no collision response.
package kinematic

import (
	"math"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/common"
	"github.com/xiaonanln/goworld2d/engine/physics"
)

// ErrUnknownBody is returned for bodies this backend did not create or already destroyed
var ErrUnknownBody = errors.New("unknown body")

type body struct {
	id     uint64
	params physics.BodyParams
	pos    common.Vector2
	vel    common.Vector2
}

type collider struct {
	body *body
}

// Backend is the kinematic simulation
type Backend struct {
	gravity  common.Vector2
	substeps int
	nextID   uint64
	bodies   []*body // creation order
}

var _ physics.Backend = (*Backend)(nil)

// New creates a kinematic backend. substeps below 1 are treated as 1.
func New(gravity common.Vector2, substeps int) *Backend {
	if substeps < 1 {
		substeps = 1
	}
	return &Backend{
		gravity:  gravity,
		substeps: substeps,
	}
}

// Name returns "kinematic"
func (b *Backend) Name() string {
	return "kinematic"
}

// Len returns the number of bodies in the simulation
func (b *Backend) Len() int {
	return len(b.bodies)
}

// CreateBody creates a body and its collider
func (b *Backend) CreateBody(params physics.BodyParams) (physics.BodyRef, physics.ColliderRef, error) {
	switch params.Shape {
	case physics.ShapeCircle:
		if params.Radius <= 0 {
			return nil, nil, errors.Errorf("circle radius must be positive: %v", params.Radius)
		}
	case physics.ShapeBox:
		if params.Size.X <= 0 || params.Size.Y <= 0 {
			return nil, nil, errors.Errorf("box size must be positive: %s", params.Size)
		}
	default:
		return nil, nil, errors.Errorf("unsupported shape: %s", params.Shape)
	}

	b.nextID += 1
	bd := &body{
		id:     b.nextID,
		params: params,
		pos:    params.Position,
		vel:    params.Velocity,
	}
	if params.Static {
		bd.vel = common.Vector2{}
	}
	b.bodies = append(b.bodies, bd)
	return bd, &collider{body: bd}, nil
}

func (b *Backend) indexOf(ref physics.BodyRef) int {
	bd, ok := ref.(*body)
	if !ok {
		return -1
	}
	for i, x := range b.bodies {
		if x == bd {
			return i
		}
	}
	return -1
}

// DestroyBody removes the body and its collider
func (b *Backend) DestroyBody(ref physics.BodyRef, col physics.ColliderRef) error {
	idx := b.indexOf(ref)
	if idx < 0 {
		return errors.Wrap(ErrUnknownBody, "destroy")
	}
	if c, ok := col.(*collider); !ok || c.body != b.bodies[idx] {
		return errors.Errorf("collider does not belong to body %d", b.bodies[idx].id)
	}
	b.bodies = append(b.bodies[:idx], b.bodies[idx+1:]...)
	return nil
}

// BodyState returns the state of the body
func (b *Backend) BodyState(ref physics.BodyRef) (physics.BodyState, error) {
	idx := b.indexOf(ref)
	if idx < 0 {
		return physics.BodyState{}, errors.Wrap(ErrUnknownBody, "state")
	}
	bd := b.bodies[idx]
	return physics.BodyState{Position: bd.pos, Velocity: bd.vel}, nil
}

// SetBodyState overwrites the state of the body. Static bodies keep zero velocity.
func (b *Backend) SetBodyState(ref physics.BodyRef, st physics.BodyState) error {
	idx := b.indexOf(ref)
	if idx < 0 {
		return errors.Wrap(ErrUnknownBody, "set state")
	}
	bd := b.bodies[idx]
	bd.pos = st.Position
	if !bd.params.Static {
		bd.vel = st.Velocity
	}
	return nil
}

// Step integrates dynamic bodies over dt in substeps and returns each overlapping pair once,
// in creation order.
func (b *Backend) Step(dt float64) []physics.Contact {
	if dt > 0 {
		h := common.Coord(dt / float64(b.substeps))
		for i := 0; i < b.substeps; i++ {
			for _, bd := range b.bodies {
				if bd.params.Static {
					continue
				}
				bd.vel = bd.vel.Add(b.gravity.Mul(h))
				bd.pos = bd.pos.Add(bd.vel.Mul(h))
			}
		}
	}

	var contacts []physics.Contact
	for i, a := range b.bodies {
		for _, c := range b.bodies[i+1:] {
			if a.params.Static && c.params.Static {
				continue
			}
			if overlaps(a, c) {
				contacts = append(contacts, physics.Contact{A: a, B: c})
			}
		}
	}
	return contacts
}

func overlaps(a, b *body) bool {
	as, bs := a.params.Shape, b.params.Shape
	switch {
	case as == physics.ShapeCircle && bs == physics.ShapeCircle:
		return a.pos.DistanceTo(b.pos) < a.params.Radius+b.params.Radius
	case as == physics.ShapeBox && bs == physics.ShapeBox:
		return math.Abs(float64(a.pos.X-b.pos.X)) < float64(a.params.Size.X+b.params.Size.X)/2 &&
			math.Abs(float64(a.pos.Y-b.pos.Y)) < float64(a.params.Size.Y+b.params.Size.Y)/2
	case as == physics.ShapeBox:
		return circleBox(b, a)
	default:
		return circleBox(a, b)
	}
}

func circleBox(circle, box *body) bool {
	half := box.params.Size.Mul(0.5)
	nearest := common.Vector2{
		X: clamp(circle.pos.X, box.pos.X-half.X, box.pos.X+half.X),
		Y: clamp(circle.pos.Y, box.pos.Y-half.Y, box.pos.Y+half.Y),
	}
	return circle.pos.DistanceTo(nearest) < circle.params.Radius
}

func clamp(v, lo, hi common.Coord) common.Coord {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
