package prefab

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/assets"
	"github.com/xiaonanln/goworld2d/engine/codec"
	"github.com/xiaonanln/goworld2d/engine/common"
	"github.com/xiaonanln/goworld2d/engine/physics"
	"github.com/xiaonanln/goworld2d/engine/physics/backend/kinematic"
	"github.com/xiaonanln/goworld2d/engine/world"
)

func pack(t *testing.T, doc map[string]interface{}) []byte {
	data, err := codec.MSG_PACKER.PackMsg(doc, nil)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

var level = map[string]interface{}{
	"entities": []interface{}{
		map[string]interface{}{
			"components": map[string]interface{}{
				"Transform": map[string]interface{}{
					"position": map[string]interface{}{"x": 1, "y": 2.5},
				},
				"AssetRef": map[string]interface{}{"Path": "tex/hero.png"},
			},
			"body": map[string]interface{}{"shape": "circle", "radius": 1, "mass": 2},
		},
		map[string]interface{}{
			"components": map[string]interface{}{
				"Velocity": map[string]interface{}{"Linear": map[string]interface{}{"X": -1}},
			},
		},
	},
}

func TestDecode(t *testing.T) {
	p, err := Decode(pack(t, level))
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(p.Entities))

	hero := p.Entities[0]
	assert.Equal(t, 2, len(hero.Components))
	ref := hero.Components[0].(*world.AssetRef) // ordered by name
	assert.Equal(t, "tex/hero.png", ref.Path)
	tr := hero.Components[1].(*world.Transform)
	assert.Equal(t, common.Vector2{X: 1, Y: 2.5}, tr.Position)
	assert.Equal(t, physics.ShapeCircle, hero.Body.Shape)
	assert.Equal(t, common.Coord(1), hero.Body.Radius)
	assert.Equal(t, float64(2), hero.Body.Mass)

	assert.T(t, p.Entities[1].Body == nil, "no body")
}

func TestDecodeErrors(t *testing.T) {
	for _, doc := range []map[string]interface{}{
		{"nothing": 1},
		{"entities": []interface{}{1}},
		{"entities": []interface{}{map[string]interface{}{"colour": "red"}}},
		{"entities": []interface{}{map[string]interface{}{"components": map[string]interface{}{"Nope": map[string]interface{}{}}}}},
		{"entities": []interface{}{map[string]interface{}{"components": map[string]interface{}{"Transform": map[string]interface{}{"Depth": 1}}}}},
		{"entities": []interface{}{map[string]interface{}{"body": map[string]interface{}{"shape": "triangle"}}}},
	} {
		_, err := Decode(pack(t, doc))
		assert.Tf(t, err != nil, "%v should fail", doc)
	}
	_, err := Decode([]byte{0xc1})
	assert.T(t, err != nil, "garbage")
}

func TestLoad(t *testing.T) {
	data := pack(t, level)
	cache := assets.NewCache(assets.LoaderFunc(func(path string) ([]byte, error) {
		if path != "prefabs/level.msgpack" {
			return nil, errors.Wrap(assets.ErrNotFound, path)
		}
		return data, nil
	}))
	layer := physics.NewLayer(kinematic.New(common.Vector2{}, 1))
	w := world.New(world.WithAssets(cache), world.WithPhysics(layer))

	es, err := Load(w, "prefabs/level.msgpack")
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(es))
	assert.Equal(t, 2, w.Len())
	h, ok := w.Body(es[0].ID)
	assert.T(t, ok, "body attached")
	assert.Equal(t, common.Coord(2.5), h.Params.Position.Y)

	// spawning twice gives independent components
	es2, err := Load(w, "prefabs/level.msgpack")
	assert.Equal(t, nil, err)
	t1, _ := w.Transform(es[0].ID)
	t2, _ := w.Transform(es2[0].ID)
	assert.T(t, t1 != t2, "components are not shared between spawns")

	_, err = Load(w, "prefabs/missing.msgpack")
	assert.T(t, errors.Cause(err) == assets.ErrNotFound, "missing prefab")
}

func TestSpawnRollsBack(t *testing.T) {
	p, err := Decode(pack(t, level))
	assert.Equal(t, nil, err)
	w := world.New() // no physics, the body of the first entity fails
	_, err = p.Spawn(w)
	assert.T(t, errors.Cause(err) == world.ErrNoPhysics, "no physics")
	assert.Equal(t, 0, w.Len())
}
