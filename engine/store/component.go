package store

import (
	"reflect"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/codec"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
)

// Component is any registered pointer-to-struct value attached to an entity
type Component interface{}

// Cloner is implemented by components that copy themselves instead of going through msgpack
type Cloner interface {
	CloneComponent() (Component, error)
}

var (
	// ErrUnknownComponent is returned for component names or types that were never registered
	ErrUnknownComponent = errors.New("unknown component")

	registryLock           sync.RWMutex
	registeredComponents   = map[string]*ComponentDesc{}
	registeredComponentsBy = map[reflect.Type]*ComponentDesc{}
)

// ComponentDesc is the component type description kept by the registry
type ComponentDesc struct {
	name string
	typ  reflect.Type // struct type, components are *typ
}

// Name returns the registered name
func (desc *ComponentDesc) Name() string {
	return desc.name
}

// Type returns the registered struct type
func (desc *ComponentDesc) Type() reflect.Type {
	return desc.typ
}

// New allocates a zero component of this type
func (desc *ComponentDesc) New() Component {
	return reflect.New(desc.typ).Interface()
}

// RegisterComponent registers a component type under name. proto must be a pointer to struct.
func RegisterComponent(name string, proto Component) *ComponentDesc {
	typ := reflect.TypeOf(proto)
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		gwlog.Panicf("RegisterComponent: component %s must be a pointer to struct, got %T", name, proto)
	}
	typ = typ.Elem()

	registryLock.Lock()
	defer registryLock.Unlock()
	if _, ok := registeredComponents[name]; ok {
		gwlog.Panicf("RegisterComponent: component %s already registered", name)
	}
	if desc, ok := registeredComponentsBy[typ]; ok {
		gwlog.Panicf("RegisterComponent: type %s already registered as %s", typ, desc.name)
	}

	desc := &ComponentDesc{name: name, typ: typ}
	registeredComponents[name] = desc
	registeredComponentsBy[typ] = desc
	gwlog.Debugf(">>> RegisterComponent %s => %s <<<", name, typ.Name())
	return desc
}

// GetComponentDesc returns the description of a registered component, or nil
func GetComponentDesc(name string) *ComponentDesc {
	registryLock.RLock()
	desc := registeredComponents[name]
	registryLock.RUnlock()
	return desc
}

// RegisteredComponents returns all registered component names in order
func RegisteredComponents() []string {
	registryLock.RLock()
	names := make([]string, 0, len(registeredComponents))
	for name := range registeredComponents {
		names = append(names, name)
	}
	registryLock.RUnlock()
	sort.Strings(names)
	return names
}

// ComponentName returns the registered name of the component's type
func ComponentName(c Component) (string, error) {
	typ := reflect.TypeOf(c)
	if typ == nil || typ.Kind() != reflect.Ptr {
		return "", errors.Wrapf(ErrUnknownComponent, "%T", c)
	}
	registryLock.RLock()
	desc := registeredComponentsBy[typ.Elem()]
	registryLock.RUnlock()
	if desc == nil {
		return "", errors.Wrapf(ErrUnknownComponent, "%T", c)
	}
	return desc.name, nil
}

// NewComponent allocates a zero component by registered name
func NewComponent(name string) (Component, error) {
	desc := GetComponentDesc(name)
	if desc == nil {
		return nil, errors.Wrapf(ErrUnknownComponent, "%s", name)
	}
	return desc.New(), nil
}

// Clone deep copies a component, through Cloner if the component implements it, otherwise by a
// msgpack round trip of its exported fields.
func Clone(c Component) (Component, error) {
	if cloner, ok := c.(Cloner); ok {
		return cloner.CloneComponent()
	}

	name, err := ComponentName(c)
	if err != nil {
		return nil, err
	}
	data, err := codec.MSG_PACKER.PackMsg(c, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "clone %s", name)
	}
	nc, err := NewComponent(name)
	if err != nil {
		return nil, err
	}
	if err := codec.MSG_PACKER.UnpackMsg(data, nc); err != nil {
		return nil, errors.Wrapf(err, "clone %s", name)
	}
	return nc, nil
}
