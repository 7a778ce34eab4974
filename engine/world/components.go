package world

import (
	"github.com/xiaonanln/goworld2d/engine/common"
	"github.com/xiaonanln/goworld2d/engine/store"
)

// Transform is the position of an entity. StepPhysics keeps it in sync with the entity's body.
type Transform struct {
	Position common.Vector2
	Rotation float64
	Scale    common.Vector2
}

// Velocity is the linear velocity of an entity, synced with its body like Transform
type Velocity struct {
	Linear common.Vector2
}

// AssetRef references an asset by path. Assets are shared through the cache, never owned by entities.
type AssetRef struct {
	Path string
}

// Component names of the built-in components
const (
	TransformComponent = "Transform"
	VelocityComponent  = "Velocity"
	AssetRefComponent  = "AssetRef"
)

func init() {
	store.RegisterComponent(TransformComponent, &Transform{})
	store.RegisterComponent(VelocityComponent, &Velocity{})
	store.RegisterComponent(AssetRefComponent, &AssetRef{})
}
