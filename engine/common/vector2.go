package common

import (
	"fmt"
	"math"
)

// Coord is the type of world coordinates
type Coord float64

// Vector2 is a 2D position, velocity or size
type Vector2 struct {
	X Coord
	Y Coord
}

func (p Vector2) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// DistanceTo calculates distance between two positions
func (p Vector2) DistanceTo(o Vector2) Coord {
	return p.Sub(o).Len()
}

// Len returns the length of the vector
func (p Vector2) Len() Coord {
	return Coord(math.Sqrt(float64(p.X*p.X + p.Y*p.Y)))
}

// Sub calculates Vector2 p - Vector2 o
func (p Vector2) Sub(o Vector2) Vector2 {
	return Vector2{p.X - o.X, p.Y - o.Y}
}

func (p Vector2) Add(o Vector2) Vector2 {
	return Vector2{p.X + o.X, p.Y + o.Y}
}

// Mul calculates Vector2 p * m
func (p Vector2) Mul(m Coord) Vector2 {
	return Vector2{p.X * m, p.Y * m}
}

func (p *Vector2) Normalize() {
	d := p.Len()
	if d == 0 {
		return
	}
	p.X /= d
	p.Y /= d
}

func (p Vector2) Normalized() Vector2 {
	p.Normalize()
	return p
}
