package ecs

import "reflect"

// typeKey gives every static type a distinct, comparable map key without reflection:
// a nil *T boxed in an interface compares equal only to another nil *T.
func typeKey[T any]() any { return (*T)(nil) }

// ComponentRegistry owns one DenseStore per registered component type and
// assigns each type a ComponentID in registration order.
type ComponentRegistry struct {
	capacity int
	ids      map[any]ComponentID
	stores   []entityDestroyer // indexed by ComponentID
}

func NewComponentRegistry(entityCapacity int) *ComponentRegistry {
	return &ComponentRegistry{
		capacity: entityCapacity,
		ids:      make(map[any]ComponentID, MaxComponents),
		stores:   make([]entityDestroyer, 0, MaxComponents),
	}
}

// RegisterType allocates the store for T and returns its id. Ids are never reused.
func RegisterType[T any](r *ComponentRegistry) ComponentID {
	key := typeKey[T]()
	if id, ok := r.ids[key]; ok {
		fatalf(ErrComponentRegistered, "%T has id %d", *new(T), id)
	}
	if len(r.stores) >= MaxComponents {
		fatalf(ErrComponentCapacity, "registering %T", *new(T))
	}
	id := ComponentID(len(r.stores))
	r.ids[key] = id
	r.stores = append(r.stores, NewDenseStore[T](r.capacity))
	return id
}

// TypeID returns the id assigned to T.
func TypeID[T any](r *ComponentRegistry) ComponentID {
	id, ok := r.ids[typeKey[T]()]
	if !ok {
		fatalf(ErrComponentNotRegistered, "%T", *new(T))
	}
	return id
}

// IsRegistered reports whether T has a store.
func IsRegistered[T any](r *ComponentRegistry) bool {
	_, ok := r.ids[typeKey[T]()]
	return ok
}

// StoreFor returns the typed store for T. The assertion cannot fail: the entry
// under T's key was created by RegisterType[T].
func StoreFor[T any](r *ComponentRegistry) *DenseStore[T] {
	return r.stores[TypeID[T](r)].(*DenseStore[T])
}

// HasID reports whether e holds the component registered under id.
func (r *ComponentRegistry) HasID(e Entity, id ComponentID) bool {
	return int(id) < len(r.stores) && r.stores[id].Has(e)
}

// Len returns the number of registered component types.
func (r *ComponentRegistry) Len() int { return len(r.stores) }

// EntityDestroyed purges e from every store.
func (r *ComponentRegistry) EntityDestroyed(e Entity) {
	for _, s := range r.stores {
		s.EntityDestroyed(e)
	}
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
