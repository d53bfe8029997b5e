package ecs

import "reflect"

// ComponentID is a dense, non-negative integer assigned to a component
// type the first time it is registered against a world. Ids are
// stable for the lifetime of the world and are never reused.
type ComponentID uint32

// StorageClass is a component type's intrinsic storage choice, fixed
// at registration and never changed afterward.
type StorageClass uint8

const (
	// StorageTable backs a component with columnar, archetype-partitioned storage.
	StorageTable StorageClass = iota
	// StorageSparse backs a component with a per-type sparse set, optimized
	// for frequent single-component add/remove.
	StorageSparse
)

func (s StorageClass) String() string {
	if s == StorageSparse {
		return "sparse"
	}
	return "table"
}

// Destroyer is implemented by component types that own a resource
// needing explicit release (a file handle, a channel) beyond what the
// garbage collector reclaims on its own. Destroy is called exactly
// once when a component value is removed (Despawn, Remove) or
// overwritten. Discarding a World does not call Destroy on the values
// it still holds.
type Destroyer interface {
	Destroy()
}

var destroyerType = reflect.TypeOf((*Destroyer)(nil)).Elem()

// dropFunc releases a component value's owned resources, if any.
type dropFunc func(reflect.Value)

func dropFuncFor(typ reflect.Type) dropFunc {
	if !reflect.PointerTo(typ).Implements(destroyerType) {
		return nil
	}
	return func(v reflect.Value) {
		v.Addr().Interface().(Destroyer).Destroy()
	}
}

// ComponentInfo is the immutable metadata recorded for a component id
// the moment it is first registered.
type ComponentInfo struct {
	ID      ComponentID
	Name    string
	Type    reflect.Type
	Storage StorageClass
	drop    dropFunc
}

// Registry assigns a stable local id to each component type a world
// sees, holding its layout, destructor and storage class.
type Registry struct {
	infos []ComponentInfo
	idOf  map[reflect.Type]ComponentID
}

func newRegistry() *Registry {
	return &Registry{idOf: make(map[reflect.Type]ComponentID)}
}

// register is idempotent: registering the same type twice returns the
// id assigned the first time, ignoring any later storage argument.
func (r *Registry) register(typ reflect.Type, storage StorageClass) ComponentID {
	if id, ok := r.idOf[typ]; ok {
		return id
	}
	id := ComponentID(len(r.infos))
	r.infos = append(r.infos, ComponentInfo{
		ID:      id,
		Name:    typ.String(),
		Type:    typ,
		Storage: storage,
		drop:    dropFuncFor(typ),
	})
	r.idOf[typ] = id
	return id
}

// Info returns the metadata registered for id. Panics if id is out of
// range for this registry — using an id minted by another world is a
// contract violation (Section 7).
func (r *Registry) Info(id ComponentID) ComponentInfo {
	if int(id) >= len(r.infos) {
		panic(ComponentNotRegisteredError{ID: id})
	}
	return r.infos[id]
}

// IDOf looks up the id assigned to typ, if any.
func (r *Registry) IDOf(typ reflect.Type) (ComponentID, bool) {
	id, ok := r.idOf[typ]
	return id, ok
}

// Count returns the number of distinct component types registered.
func (r *Registry) Count() int { return len(r.infos) }

// Component is a type-safe handle to a registered component type: its
// id plus the storage class it was registered with.
type Component[T any] struct {
	id      ComponentID
	storage StorageClass
}

// ID returns the component's world-local id.
func (c Component[T]) ID() ComponentID { return c.id }

// StorageClass returns the component's fixed storage class.
func (c Component[T]) StorageClass() StorageClass { return c.storage }

func registerComponent[T any](reg *Registry, storage StorageClass) Component[T] {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil {
		// T is an interface type instantiated with a nil value; fall back
		// to the static type via reflection on a pointer instead.
		typ = reflect.TypeOf(&zero).Elem()
	}
	id := reg.register(typ, storage)
	return Component[T]{id: id, storage: reg.Info(id).Storage}
}
