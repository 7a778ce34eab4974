// Package world owns the component store and the entities of one simulation, and coordinates
// them with the physics layer and the asset cache. A World is driven by a single update routine
// and is not safe for concurrent use.
package world

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/assets"
	"github.com/xiaonanln/goworld2d/engine/common"
	"github.com/xiaonanln/goworld2d/engine/consts"
	"github.com/xiaonanln/goworld2d/engine/entity"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
	"github.com/xiaonanln/goworld2d/engine/physics"
	"github.com/xiaonanln/goworld2d/engine/store"
)

var (
	// ErrNoSuchEntity is returned for entity IDs the world does not hold
	ErrNoSuchEntity = entity.ErrNoSuchEntity
	// ErrWorldMerged is returned by every mutation of a world that was merged into another
	ErrWorldMerged = errors.New("world merged")
	// ErrNoPhysics is returned by body operations of a world without a physics layer
	ErrNoPhysics = errors.New("world has no physics layer")
	// ErrNoAssets is returned by asset operations of a world without an asset cache
	ErrNoAssets = errors.New("world has no asset cache")
)

// World is a set of entities and their components
type World struct {
	name     string
	store    store.ComponentStore
	entities *entity.Table
	physics  *physics.Layer
	assets   *assets.Cache
	merged   bool
	debug    bool
}

// Option configures a World
type Option func(w *World)

// WithName names the world in logs
func WithName(name string) Option {
	return func(w *World) {
		w.name = name
	}
}

// WithStore sets the component store. Defaults to a new store.SlotStore.
func WithStore(s store.ComponentStore) Option {
	return func(w *World) {
		w.store = s
	}
}

// WithPhysics sets the physics layer. It may be shared between worlds.
func WithPhysics(layer *physics.Layer) Option {
	return func(w *World) {
		w.physics = layer
	}
}

// WithAssets sets the asset cache. It may be shared between worlds.
func WithAssets(cache *assets.Cache) Option {
	return func(w *World) {
		w.assets = cache
	}
}

// WithDebug enables debug logs of merges
func WithDebug(debug bool) Option {
	return func(w *World) {
		w.debug = debug
	}
}

// New creates an empty World
func New(opts ...Option) *World {
	w := &World{
		name:     "world",
		entities: entity.NewTable(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.store == nil {
		w.store = store.NewSlotStore()
	}
	return w
}

func (w *World) String() string {
	return fmt.Sprintf("World<%s|%d>", w.name, w.entities.Len())
}

// Name returns the name of the world
func (w *World) Name() string {
	return w.name
}

// Physics returns the physics layer, or nil
func (w *World) Physics() *physics.Layer {
	return w.physics
}

// Assets returns the asset cache, or nil
func (w *World) Assets() *assets.Cache {
	return w.assets
}

// Merged returns if the world was merged into another world
func (w *World) Merged() bool {
	return w.merged
}

func (w *World) checkAlive() error {
	if w.merged {
		return errors.Wrapf(ErrWorldMerged, "%s", w.name)
	}
	return nil
}

func (w *World) slotOf(id common.EntityID) (store.Slot, error) {
	slot, ok := w.entities.Resolve(id)
	if !ok {
		return store.NilSlot, errors.Wrapf(ErrNoSuchEntity, "%s in %s", id, w.name)
	}
	return slot, nil
}

// Spawn creates an entity with components
func (w *World) Spawn(components ...store.Component) (*entity.Entity, error) {
	if err := w.checkAlive(); err != nil {
		return nil, err
	}
	slot := w.store.Alloc()
	for _, c := range components {
		if err := w.store.Set(slot, c); err != nil {
			w.store.Free(slot)
			return nil, errors.Wrapf(err, "spawn in %s", w.name)
		}
	}
	e := w.entities.Create(slot)
	if consts.DEBUG_ENTITIES {
		gwlog.Debugf("%s: spawned %s", w, e)
	}
	return e, nil
}

// Despawn destroys an entity. Its physics body is destroyed before its slot is reclaimed; if that
// fails the entity is left intact.
func (w *World) Despawn(id common.EntityID) error {
	if err := w.checkAlive(); err != nil {
		return err
	}
	slot, err := w.slotOf(id)
	if err != nil {
		return err
	}
	if w.physics != nil {
		if err := w.physics.Detach(id); err != nil && errors.Cause(err) != physics.ErrNoSuchBody {
			return errors.Wrapf(err, "despawn %s", id)
		}
	}
	if err := w.store.Free(slot); err != nil {
		gwlog.Panicf("%s: slot %s of %s is dead: %v", w, slot, id, err)
	}
	e, _ := w.entities.Remove(id)
	if consts.DEBUG_ENTITIES {
		gwlog.Debugf("%s: despawned %s", w, e)
	}
	return nil
}

// Entity returns the entity of id
func (w *World) Entity(id common.EntityID) (*entity.Entity, bool) {
	return w.entities.Lookup(id)
}

// Len returns the number of entities
func (w *World) Len() int {
	return w.entities.Len()
}

// Each calls cb for every entity in spawn order until cb returns false. cb must not spawn or
// despawn entities.
func (w *World) Each(cb func(e *entity.Entity) bool) {
	w.entities.Each(cb)
}

// Entities returns all entities in spawn order
func (w *World) Entities() []*entity.Entity {
	return w.entities.Entities()
}

// EachWith calls cb for every entity having the named component, in spawn order
func (w *World) EachWith(name string, cb func(e *entity.Entity, c store.Component) bool) {
	w.entities.Each(func(e *entity.Entity) bool {
		c, ok := w.store.Get(e.Slot(), name)
		if !ok {
			return true
		}
		return cb(e, c)
	})
}

// Set inserts or replaces a component of entity id
func (w *World) Set(id common.EntityID, c store.Component) error {
	if err := w.checkAlive(); err != nil {
		return err
	}
	slot, err := w.slotOf(id)
	if err != nil {
		return err
	}
	return w.store.Set(slot, c)
}

// Get returns the named component of entity id
func (w *World) Get(id common.EntityID, name string) (store.Component, bool) {
	slot, ok := w.entities.Resolve(id)
	if !ok {
		return nil, false
	}
	return w.store.Get(slot, name)
}

// Has returns if entity id has the named component
func (w *World) Has(id common.EntityID, name string) bool {
	_, ok := w.Get(id, name)
	return ok
}

// Remove removes the named component of entity id
func (w *World) Remove(id common.EntityID, name string) (store.Component, bool) {
	if w.merged {
		return nil, false
	}
	slot, ok := w.entities.Resolve(id)
	if !ok {
		return nil, false
	}
	return w.store.Remove(slot, name)
}

// Components returns all components of entity id ordered by name
func (w *World) Components(id common.EntityID) []store.Component {
	slot, ok := w.entities.Resolve(id)
	if !ok {
		return nil
	}
	return w.store.Components(slot)
}

// Transform returns the Transform of entity id
func (w *World) Transform(id common.EntityID) (*Transform, bool) {
	c, ok := w.Get(id, TransformComponent)
	if !ok {
		return nil, false
	}
	return c.(*Transform), true
}

// Velocity returns the Velocity of entity id
func (w *World) Velocity(id common.EntityID) (*Velocity, bool) {
	c, ok := w.Get(id, VelocityComponent)
	if !ok {
		return nil, false
	}
	return c.(*Velocity), true
}

// Compact renumbers store slots densely and rebinds every entity. Returns the number of entities
// whose slot changed.
func (w *World) Compact() (int, error) {
	if err := w.checkAlive(); err != nil {
		return 0, err
	}
	moved := w.store.Compact()
	n := 0
	var err error
	w.entities.Each(func(e *entity.Entity) bool {
		slot, ok := moved[e.Slot()]
		if !ok {
			err = errors.Errorf("%s: %s lost its slot in compaction", w, e)
			return false
		}
		if slot != e.Slot() {
			if err = w.entities.Rebind(e, slot); err != nil {
				return false
			}
			n += 1
		}
		return true
	})
	return n, err
}
