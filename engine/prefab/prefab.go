// Package prefab spawns entities described by prefab assets. A prefab is a msgpack map:
//
//	{"entities": [{"components": {"Transform": {"Position": {"X": 1, "Y": 2}}},
//	               "body": {"Shape": "circle", "Radius": 1}}]}
//
// Component names are the registered store names; field names match case-insensitively and
// values are coerced to the field types.
package prefab

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/codec"
	"github.com/xiaonanln/goworld2d/engine/entity"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
	"github.com/xiaonanln/goworld2d/engine/physics"
	"github.com/xiaonanln/goworld2d/engine/store"
	"github.com/xiaonanln/goworld2d/engine/world"
	"github.com/xiaonanln/typeconv"
)

// EntitySpec describes one entity of a prefab
type EntitySpec struct {
	Components []store.Component // ordered by component name
	Body       *physics.BodyParams
}

// Prefab is a decoded prefab
type Prefab struct {
	Entities []EntitySpec
}

// Decode decodes prefab data
func Decode(data []byte) (*Prefab, error) {
	var doc map[string]interface{}
	if err := codec.MSG_PACKER.UnpackMsg(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode prefab")
	}

	list, ok := doc["entities"].([]interface{})
	if !ok {
		return nil, errors.Errorf("prefab has no entities list")
	}
	p := &Prefab{}
	for i, item := range list {
		es, err := decodeEntity(item)
		if err != nil {
			return nil, errors.Wrapf(err, "prefab entity #%d", i)
		}
		p.Entities = append(p.Entities, es)
	}
	return p, nil
}

func decodeEntity(item interface{}) (es EntitySpec, err error) {
	m, ok := asStringMap(item)
	if !ok {
		return es, errors.Errorf("entity is %T, not a map", item)
	}
	for key := range m {
		if key != "components" && key != "body" {
			return es, errors.Errorf("unknown entity key %q", key)
		}
	}

	if comps, ok := m["components"]; ok {
		cm, ok := asStringMap(comps)
		if !ok {
			return es, errors.Errorf("components is %T, not a map", comps)
		}
		names := make([]string, 0, len(cm))
		for name := range cm {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c, err := store.NewComponent(name)
			if err != nil {
				return es, err
			}
			if err := assign(reflect.ValueOf(c).Elem(), cm[name]); err != nil {
				return es, errors.Wrapf(err, "component %s", name)
			}
			es.Components = append(es.Components, c)
		}
	}

	if body, ok := m["body"]; ok {
		bm, ok := asStringMap(body)
		if !ok {
			return es, errors.Errorf("body is %T, not a map", body)
		}
		params := &physics.BodyParams{}
		if err := decodeShape(bm); err != nil {
			return es, err
		}
		if err := assign(reflect.ValueOf(params).Elem(), bm); err != nil {
			return es, errors.Wrap(err, "body")
		}
		es.Body = params
	}
	return es, nil
}

func decodeShape(bm map[string]interface{}) error {
	for key, val := range bm {
		if !strings.EqualFold(key, "shape") {
			continue
		}
		s, ok := val.(string)
		if !ok {
			return nil
		}
		switch strings.ToLower(s) {
		case "circle":
			bm[key] = int64(physics.ShapeCircle)
		case "box":
			bm[key] = int64(physics.ShapeBox)
		default:
			return errors.Errorf("unknown shape %q", s)
		}
	}
	return nil
}

func asStringMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		res := make(map[string]interface{}, len(m))
		for k, v := range m {
			res[fmt.Sprint(k)] = v
		}
		return res, true
	default:
		return nil, false
	}
}

// assign stores val into the settable value dst, recursing into structs
func assign(dst reflect.Value, val interface{}) (err error) {
	if dst.Kind() == reflect.Struct {
		m, ok := asStringMap(val)
		if !ok {
			return errors.Errorf("%s expects a map, got %T", dst.Type(), val)
		}
		for key, fv := range m {
			field := fieldByNameFold(dst, key)
			if !field.IsValid() {
				return errors.Errorf("%s has no field %s", dst.Type(), key)
			}
			if err := assign(field, fv); err != nil {
				return errors.Wrapf(err, "field %s", key)
			}
		}
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("can not convert %T to %s: %v", val, dst.Type(), r)
		}
	}()
	rv := typeconv.Convert(val, dst.Type())
	if rv.Type() != dst.Type() {
		rv = rv.Convert(dst.Type())
	}
	dst.Set(rv)
	return nil
}

func fieldByNameFold(st reflect.Value, name string) reflect.Value {
	typ := st.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		if strings.EqualFold(f.Name, name) {
			return st.Field(i)
		}
	}
	return reflect.Value{}
}

// Spawn spawns the prefab's entities into w and attaches their bodies. If anything fails the
// entities spawned so far are despawned again.
func (p *Prefab) Spawn(w *world.World) ([]*entity.Entity, error) {
	var spawned []*entity.Entity
	rollback := func() {
		for i := len(spawned) - 1; i >= 0; i-- {
			if err := w.Despawn(spawned[i].ID); err != nil {
				gwlog.Errorf("prefab: despawn %s: %v", spawned[i], err)
			}
		}
	}

	for _, es := range p.Entities {
		comps := make([]store.Component, 0, len(es.Components))
		for _, c := range es.Components {
			clone, err := store.Clone(c)
			if err != nil {
				rollback()
				return nil, err
			}
			comps = append(comps, clone)
		}
		e, err := w.Spawn(comps...)
		if err != nil {
			rollback()
			return nil, err
		}
		spawned = append(spawned, e)
		if es.Body != nil {
			if _, err := w.AttachBody(e.ID, *es.Body); err != nil {
				rollback()
				return nil, errors.Wrapf(err, "prefab body of %s", e)
			}
		}
	}
	return spawned, nil
}

// Load decodes the prefab asset at path through the world's asset cache and spawns it
func Load(w *world.World, path string) ([]*entity.Entity, error) {
	buf, err := w.Asset(path)
	if err != nil {
		return nil, err
	}
	p, err := Decode(buf.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "prefab %s", path)
	}
	return p.Spawn(w)
}
