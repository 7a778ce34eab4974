package physics

import (
	"fmt"

	"github.com/xiaonanln/goworld2d/engine/common"
)

// Shape is the collider shape of a body
type Shape int

const (
	// ShapeCircle is a circle of Radius centered on the body position
	ShapeCircle Shape = iota
	// ShapeBox is an axis aligned box of Size centered on the body position
	ShapeBox
)

func (s Shape) String() string {
	switch s {
	case ShapeCircle:
		return "circle"
	case ShapeBox:
		return "box"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// BodyParams describes the body and collider to create
type BodyParams struct {
	Shape    Shape
	Radius   common.Coord
	Size     common.Vector2
	Mass     float64
	Static   bool
	Sensor   bool
	Position common.Vector2
	Velocity common.Vector2
}

// BodyState is the simulated state of a body
type BodyState struct {
	Position common.Vector2
	Velocity common.Vector2
}

// BodyRef is a backend's body handle. Must be comparable.
type BodyRef interface{}

// ColliderRef is a backend's collider handle
type ColliderRef interface{}

// Contact is an overlap reported by a backend step
type Contact struct {
	A BodyRef
	B BodyRef
}

// Backend is the physics simulation the Layer drives. Backends are not required to be safe for
// concurrent use; the Layer serializes all calls.
type Backend interface {
	// Name identifies the backend in logs
	Name() string
	// CreateBody creates a body and its collider
	CreateBody(params BodyParams) (BodyRef, ColliderRef, error)
	// DestroyBody removes the body and its collider from the simulation
	DestroyBody(body BodyRef, collider ColliderRef) error
	// BodyState returns the current state of body
	BodyState(body BodyRef) (BodyState, error)
	// SetBodyState overwrites the state of body
	SetBodyState(body BodyRef, st BodyState) error
	// Step advances the simulation by dt seconds and returns overlapping body pairs
	Step(dt float64) []Contact
}
