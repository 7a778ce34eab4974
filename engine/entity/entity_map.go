package entity

import "github.com/xiaonanln/goworld2d/engine/common"

// EntityMap indexes the entities of a Table by ID
type EntityMap map[common.EntityID]*Entity

// Add adds a new entity to EntityMap
func (em EntityMap) Add(entity *Entity) {
	em[entity.ID] = entity
}

// Del deletes an entity from EntityMap
func (em EntityMap) Del(id common.EntityID) {
	delete(em, id)
}

// Get returns the Entity of specified entity ID in EntityMap
func (em EntityMap) Get(id common.EntityID) *Entity {
	return em[id]
}
