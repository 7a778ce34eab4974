// Package gwvar publishes engine state through expvar, served at /debug/vars by the http server
package gwvar

import "expvar"

// Bool is an expvar published as 0 or 1
type Bool struct {
	val *expvar.Int
}

// NewBool publishes a new Bool under name
func NewBool(name string) *Bool {
	return &Bool{
		val: expvar.NewInt(name),
	}
}

// Value returns the current value
func (b *Bool) Value() bool {
	return b.val.Value() > 0
}

// Set sets the value
func (b *Bool) Set(v bool) {
	if v {
		b.val.Set(1)
	} else {
		b.val.Set(0)
	}
}

var (
	// IsGameRunning is set while a game routine runs frames
	IsGameRunning = NewBool("IsGameRunning")
	// FrameCount is the number of frames run by the current game
	FrameCount = expvar.NewInt("FrameCount")
	// EntityCount is the entity count of the running world, sampled every frame
	EntityCount = expvar.NewInt("EntityCount")
)
