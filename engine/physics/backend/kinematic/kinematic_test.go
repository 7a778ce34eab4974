package kinematic

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/common"
	"github.com/xiaonanln/goworld2d/engine/physics"
)

func circle(x, y, r common.Coord) physics.BodyParams {
	return physics.BodyParams{Shape: physics.ShapeCircle, Radius: r, Position: common.Vector2{X: x, Y: y}, Mass: 1}
}

func box(x, y, w, h common.Coord) physics.BodyParams {
	return physics.BodyParams{Shape: physics.ShapeBox, Size: common.Vector2{X: w, Y: h}, Position: common.Vector2{X: x, Y: y}, Static: true}
}

func TestIntegrate(t *testing.T) {
	b := New(common.Vector2{Y: -10}, 4)
	p := circle(0, 100, 1)
	p.Velocity = common.Vector2{X: 2}
	ref, _, err := b.CreateBody(p)
	assert.Equal(t, nil, err)
	wall, _, _ := b.CreateBody(box(50, 50, 2, 2))

	b.Step(1)
	st, err := b.BodyState(ref)
	assert.Equal(t, nil, err)
	assert.Equal(t, common.Coord(-10), st.Velocity.Y)
	assert.T(t, st.Position.Y < 100 && st.Position.Y > 90, "fell")
	assert.T(t, st.Position.X > 1.99 && st.Position.X < 2.01, "moved right")

	ws, _ := b.BodyState(wall)
	assert.Equal(t, common.Vector2{X: 50, Y: 50}, ws.Position)

	assert.Equal(t, nil, b.SetBodyState(wall, physics.BodyState{Position: common.Vector2{}, Velocity: common.Vector2{X: 1}}))
	ws, _ = b.BodyState(wall)
	assert.Equal(t, common.Vector2{}, ws.Velocity)
}

func TestContacts(t *testing.T) {
	b := New(common.Vector2{}, 1)
	a, _, _ := b.CreateBody(circle(0, 0, 1))
	c, _, _ := b.CreateBody(circle(1.5, 0, 1))
	far, _, _ := b.CreateBody(circle(100, 0, 1))
	floor, _, _ := b.CreateBody(box(100, -1.5, 10, 2))
	b.CreateBody(box(108, -1.5, 10, 2)) // overlaps floor, static pairs are never reported

	contacts := b.Step(0)
	assert.Equal(t, 2, len(contacts))
	assert.T(t, contacts[0].A == a && contacts[0].B == c, "circle pair")
	assert.T(t, contacts[1].A == far && contacts[1].B == floor, "circle box pair")
}

func TestDestroy(t *testing.T) {
	b := New(common.Vector2{}, 1)
	ref, col, _ := b.CreateBody(circle(0, 0, 1))
	other, otherCol, _ := b.CreateBody(circle(0, 0, 1))
	assert.T(t, b.DestroyBody(ref, otherCol) != nil, "collider mismatch")
	assert.Equal(t, nil, b.DestroyBody(ref, col))
	assert.Equal(t, 1, b.Len())
	assert.T(t, errors.Cause(b.DestroyBody(ref, col)) == ErrUnknownBody, "double destroy")
	_, err := b.BodyState(ref)
	assert.T(t, errors.Cause(err) == ErrUnknownBody, "state of destroyed")
	assert.Equal(t, 0, len(b.Step(1)))
	assert.Equal(t, nil, b.DestroyBody(other, otherCol))

	_, _, err = b.CreateBody(physics.BodyParams{Shape: physics.ShapeCircle})
	assert.T(t, err != nil, "zero radius")
	_, _, err = b.CreateBody(physics.BodyParams{Shape: physics.Shape(7), Radius: 1})
	assert.T(t, err != nil, "bad shape")
}
