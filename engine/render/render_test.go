package render

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/assets"
	"github.com/xiaonanln/goworld2d/engine/common"
	"github.com/xiaonanln/goworld2d/engine/world"
)

type recordingRenderer struct {
	frames [][]DrawItem
}

func (r *recordingRenderer) Draw(items []DrawItem) error {
	r.frames = append(r.frames, items)
	return nil
}

func newWorld() *world.World {
	cache := assets.NewCache(assets.LoaderFunc(func(path string) ([]byte, error) {
		if path == "missing.png" {
			return nil, errors.Wrap(assets.ErrNotFound, path)
		}
		return []byte(path), nil
	}))
	return world.New(world.WithAssets(cache))
}

func TestDrawQueueOrder(t *testing.T) {
	w := newWorld()
	bg, _ := w.Spawn(&Sprite{Texture: "bg.png", Layer: -1})
	hero, _ := w.Spawn(&Sprite{Texture: "hero.png", Layer: 1, Offset: common.Vector2{Y: 1}},
		&world.Transform{Position: common.Vector2{X: 3, Y: 4}, Rotation: 0.5})
	w.Spawn(&Sprite{Texture: "ghost.png", Hidden: true})
	tree, _ := w.Spawn(&Sprite{Texture: "tree.png", Layer: 1})
	w.Spawn(&world.Transform{}) // not drawable

	items, err := BuildDrawQueue(w)
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(items))
	assert.Equal(t, bg.ID, items[0].Entity)
	assert.Equal(t, hero.ID, items[1].Entity)
	assert.Equal(t, tree.ID, items[2].Entity)

	assert.Equal(t, common.Vector2{X: 3, Y: 5}, items[1].Position)
	assert.Equal(t, 0.5, items[1].Rotation)
	assert.Equal(t, common.Vector2{X: 1, Y: 1}, items[1].Scale)
	assert.Equal(t, "hero.png", string(items[1].Texture.Bytes()))
}

func TestFrameSkipsMissingTextures(t *testing.T) {
	w := newWorld()
	w.Spawn(&Sprite{Texture: "missing.png"})
	ok, _ := w.Spawn(&Sprite{Texture: "ok.png"})

	r := &recordingRenderer{}
	err := Frame(w, r)
	assert.T(t, errors.Cause(err) == assets.ErrNotFound, "missing texture reported")
	assert.Equal(t, 1, len(r.frames))
	assert.Equal(t, 1, len(r.frames[0]))
	assert.Equal(t, ok.ID, r.frames[0][0].Entity)

	empty := newWorld()
	items, err := BuildDrawQueue(empty)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(items))
}
