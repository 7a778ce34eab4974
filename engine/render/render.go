// Package render builds the per-frame draw queue of a world. Drawing itself is left to a
// Renderer implementation.
package render

import (
	"github.com/petar/GoLLRB/llrb"
	"github.com/xiaonanln/goworld2d/engine/assets"
	"github.com/xiaonanln/goworld2d/engine/common"
	"github.com/xiaonanln/goworld2d/engine/entity"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
	"github.com/xiaonanln/goworld2d/engine/store"
	"github.com/xiaonanln/goworld2d/engine/world"
)

// SpriteComponent is the registered name of Sprite
const SpriteComponent = "Sprite"

// Sprite draws a texture at the entity's Transform
type Sprite struct {
	Texture string
	Layer   int
	Offset  common.Vector2
	Hidden  bool
}

func init() {
	store.RegisterComponent(SpriteComponent, &Sprite{})
}

// DrawItem is one sprite to draw
type DrawItem struct {
	Entity   common.EntityID
	Texture  *assets.Buffer
	Position common.Vector2
	Rotation float64
	Scale    common.Vector2
	Layer    int
}

// Renderer draws a frame. Items are ordered back to front.
type Renderer interface {
	Draw(items []DrawItem) error
}

type queueItem struct {
	layer int
	seq   int
	item  DrawItem
}

func (qi queueItem) Less(than llrb.Item) bool {
	other := than.(queueItem)
	if qi.layer != other.layer {
		return qi.layer < other.layer
	}
	return qi.seq < other.seq
}

// BuildDrawQueue collects the visible sprites of w ordered by layer, then spawn order. Sprites
// without a Transform draw at the origin. Sprites whose texture fails to load are skipped and
// the first load error is returned along with the queue.
func BuildDrawQueue(w *world.World) ([]DrawItem, error) {
	tree := llrb.New()
	var firstErr error
	seq := 0
	w.EachWith(SpriteComponent, func(e *entity.Entity, c store.Component) bool {
		sprite := c.(*Sprite)
		if sprite.Hidden {
			return true
		}
		tex, err := w.Asset(sprite.Texture)
		if err != nil {
			gwlog.Warnf("render: %s texture %s: %v", e, sprite.Texture, err)
			if firstErr == nil {
				firstErr = err
			}
			return true
		}

		item := DrawItem{
			Entity:   e.ID,
			Texture:  tex,
			Position: sprite.Offset,
			Scale:    common.Vector2{X: 1, Y: 1},
			Layer:    sprite.Layer,
		}
		if t, ok := w.Transform(e.ID); ok {
			item.Position = t.Position.Add(sprite.Offset)
			item.Rotation = t.Rotation
			if t.Scale != (common.Vector2{}) {
				item.Scale = t.Scale
			}
		}
		tree.ReplaceOrInsert(queueItem{layer: sprite.Layer, seq: seq, item: item})
		seq += 1
		return true
	})

	items := make([]DrawItem, 0, tree.Len())
	if tree.Len() > 0 {
		tree.AscendGreaterOrEqual(tree.Min(), func(i llrb.Item) bool {
			items = append(items, i.(queueItem).item)
			return true
		})
	}
	return items, firstErr
}

// Frame builds the draw queue of w and hands it to r
func Frame(w *world.World, r Renderer) error {
	items, err := BuildDrawQueue(w)
	if drawErr := r.Draw(items); drawErr != nil {
		return drawErr
	}
	return err
}
