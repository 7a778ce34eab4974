package world

import (
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/assets"
	"github.com/xiaonanln/goworld2d/engine/common"
)

// Asset returns the buffer of path from the asset cache
func (w *World) Asset(path string) (*assets.Buffer, error) {
	if w.assets == nil {
		return nil, ErrNoAssets
	}
	return w.assets.GetOrLoad(path)
}

// AssetOf returns the buffer referenced by the AssetRef of entity id
func (w *World) AssetOf(id common.EntityID) (*assets.Buffer, error) {
	c, ok := w.Get(id, AssetRefComponent)
	if !ok {
		return nil, errors.Errorf("%s has no %s", id, AssetRefComponent)
	}
	return w.Asset(c.(*AssetRef).Path)
}
