package ecs

import (
	"reflect"
	"sort"
)

// Component is any value stored in a Components store. Values are stored by
// pointer: registering a struct value stores a pointer to a copy of it.
type Component = any

// Unique marks a component type as having at most one instance per entity.
// Embed it in the component struct:
//
//	type Health struct {
//		ecs.Unique
//		Current int
//	}
//
// Because the marker is part of the type, every instance of the type agrees.
type Unique struct{}

func (Unique) uniqueComponent() {}

type uniqueComponent interface {
	uniqueComponent()
}

// RegisterHook is implemented by components that want to know when they are
// inserted into a store.
type RegisterHook interface {
	OnRegister(owner EntityId)
}

// UnregisterHook is implemented by components that want to know when they
// leave a store, either replaced, removed or despawned with their entity.
type UnregisterHook interface {
	OnUnregister(owner EntityId)
}

var uniqueComponentType = reflect.TypeFor[uniqueComponent]()

// Kind describes how a component type is stored.
type Kind struct {
	Type   reflect.Type
	Unique bool
}

// Name returns the qualified type name.
func (k Kind) Name() string {
	return k.Type.String()
}

// ComponentRegistry classifies component types. Each Entities registry owns
// one; by default unknown types are classified on first use, a strict
// registry panics on them instead.
type ComponentRegistry struct {
	kinds  map[reflect.Type]Kind
	order  []reflect.Type
	strict bool
}

// NewComponentRegistry creates a registry that classifies types on first use.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		kinds: make(map[reflect.Type]Kind),
	}
}

// NewStrictComponentRegistry creates a registry that only accepts types
// registered up front with RegisterComponent.
func NewStrictComponentRegistry() *ComponentRegistry {
	r := NewComponentRegistry()
	r.strict = true
	return r
}

// RegisterComponent registers T with the given registry and returns its kind.
func RegisterComponent[T any](r *ComponentRegistry) Kind {
	return r.classify(reflect.TypeFor[T]())
}

// KindOf returns the kind of T, classifying it if the registry allows it.
func KindOf[T any](r *ComponentRegistry) Kind {
	return r.kindOf(reflect.TypeFor[T]())
}

// Kinds returns every known kind sorted by name.
func (r *ComponentRegistry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.order))
	for _, t := range r.order {
		kinds = append(kinds, r.kinds[t])
	}
	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i].Name() < kinds[j].Name()
	})
	return kinds
}

// Lookup finds a kind by its qualified type name.
func (r *ComponentRegistry) Lookup(name string) (Kind, bool) {
	for _, t := range r.order {
		if t.String() == name {
			return r.kinds[t], true
		}
	}
	return Kind{}, false
}

func (r *ComponentRegistry) kindOf(t reflect.Type) Kind {
	if kind, ok := r.kinds[t]; ok {
		return kind
	}
	if r.strict {
		panic("component type " + t.String() + " not registered")
	}
	return r.classify(t)
}

func (r *ComponentRegistry) classify(t reflect.Type) Kind {
	if kind, ok := r.kinds[t]; ok {
		return kind
	}

	// Components are values; the store adds the pointer itself.
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		panic("components cannot be pointers, maps, channels, functions or interfaces: " + t.String())
	}

	kind := Kind{
		Type:   t,
		Unique: reflect.PointerTo(t).Implements(uniqueComponentType),
	}
	r.kinds[t] = kind
	r.order = append(r.order, t)
	return kind
}

// normalizeComponent returns a pointer to the component and the pointed-to type.
func normalizeComponent(component Component) (any, reflect.Type) {
	if component == nil {
		panic("ecs: cannot register a nil component")
	}

	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			panic("ecs: cannot register a nil component")
		}
		return component, v.Type().Elem()
	}

	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	return ptr.Interface(), v.Type()
}
