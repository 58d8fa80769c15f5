package ecs

import (
	"github.com/nutshell/engine/internal/component"
	"github.com/nutshell/engine/internal/core/event"
	"go.uber.org/zap"
)

// World is the single entry point for entity and component mutation. It owns the
// entity pool, the component registry and the system registry and sequences every
// mutation so system hooks never observe a half-applied change.
//
// A World is not safe for concurrent use; it belongs to the tick goroutine.
type World struct {
	log          *zap.Logger
	bus          *event.Bus
	entities     *EntityPool
	components   *ComponentRegistry
	systems      *SystemRegistry
	destroyQueue []Entity
	spareQueue   []Entity
}

type worldOptions struct {
	capacity int
	log      *zap.Logger
	bus      *event.Bus
}

type WorldOption func(*worldOptions)

// WithCapacity sets the maximum number of simultaneously live entities.
func WithCapacity(n int) WorldOption {
	return func(o *worldOptions) {
		if n > 0 {
			o.capacity = n
		}
	}
}

func WithLogger(log *zap.Logger) WorldOption {
	return func(o *worldOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// WithEventBus makes the world emit lifecycle events on bus.
func WithEventBus(bus *event.Bus) WorldOption {
	return func(o *worldOptions) {
		o.bus = bus
	}
}

// NewWorld builds a world and registers the baseline Transform component as id 0.
func NewWorld(opts ...WorldOption) *World {
	o := worldOptions{capacity: DefaultMaxEntities, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	w := &World{
		log:          o.log.Named("ecs"),
		bus:          o.bus,
		entities:     NewEntityPool(o.capacity),
		components:   NewComponentRegistry(o.capacity),
		systems:      NewSystemRegistry(o.capacity),
		destroyQueue: make([]Entity, 0, 64),
		spareQueue:   make([]Entity, 0, 64),
	}
	RegisterComponent[component.Transform](w)
	return w
}

func (w *World) Entities() *EntityPool          { return w.entities }
func (w *World) Components() *ComponentRegistry { return w.components }
func (w *World) Systems() *SystemRegistry       { return w.systems }
func (w *World) Capacity() int                  { return w.entities.Capacity() }
func (w *World) EntityCount() int               { return w.entities.Count() }
func (w *World) Alive(e Entity) bool            { return w.entities.Alive(e) }
func (w *World) MaskOf(e Entity) ComponentMask  { return w.entities.Mask(e) }

// CreateEntity allocates an entity and attaches an identity Transform.
func (w *World) CreateEntity() Entity {
	e := w.entities.Create()
	w.spawned(e, "")
	return e
}

// CreateNamedEntity allocates an entity bound to name.
func (w *World) CreateNamedEntity(name string) Entity {
	e := w.entities.CreateNamed(name)
	w.spawned(e, w.entities.Name(e))
	return e
}

func (w *World) spawned(e Entity, name string) {
	AddComponent(w, e, component.NewTransform())
	w.log.Debug("entity created", zap.Uint32("entity", uint32(e)), zap.String("name", name))
	if w.bus != nil {
		event.Emit(w.bus, EntityCreated{Entity: e, Name: name})
	}
}

// DestroyEntity notifies systems while the entity's data is intact, then frees
// the id and finally purges every component store.
func (w *World) DestroyEntity(e Entity) {
	w.mustBeAlive(e)
	mask := w.entities.Mask(e)
	name, _ := w.entityName(e)

	w.systems.EntityDestroyed(e, mask)
	w.entities.Destroy(e)
	w.components.EntityDestroyed(e)

	w.log.Debug("entity destroyed", zap.Uint32("entity", uint32(e)), zap.Uint32("mask", uint32(mask)))
	if w.bus != nil {
		event.Emit(w.bus, EntityDestroyed{Entity: e, Name: name})
	}
}

// DestroyAllEntities destroys the highest live id until none remain.
func (w *World) DestroyAllEntities() {
	n := 0
	for {
		e, ok := w.entities.Live().Last()
		if !ok {
			break
		}
		w.DestroyEntity(e)
		n++
	}
	if n > 0 {
		w.log.Info("destroyed all entities", zap.Int("count", n))
	}
}

// MarkForDestruction queues e for the next FlushDestroyQueue. Systems use it to
// destroy entities while iterating their membership.
func (w *World) MarkForDestruction(e Entity) {
	w.destroyQueue = append(w.destroyQueue, e)
}

// FlushDestroyQueue destroys every queued entity that is still alive and returns
// how many were destroyed. Entities queued by hooks during the flush are
// destroyed by the same call.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for len(w.destroyQueue) > 0 {
		batch := w.destroyQueue
		w.destroyQueue = w.spareQueue[:0]
		for _, e := range batch {
			if w.entities.Alive(e) {
				w.DestroyEntity(e)
				n++
			}
		}
		w.spareQueue = batch[:0]
	}
	return n
}

func (w *World) SetEntityName(e Entity, name string) {
	w.mustBeAlive(e)
	w.entities.SetName(e, name)
}

func (w *World) EntityHasName(e Entity) bool { return w.entities.HasName(e) }

func (w *World) EntityName(e Entity) string { return w.entities.Name(e) }

func (w *World) FindEntityByName(name string) Entity { return w.entities.FindByName(name) }

// LookupEntity resolves a name without treating a miss as fatal.
func (w *World) LookupEntity(name string) (Entity, bool) { return w.entities.LookupName(name) }

func (w *World) entityName(e Entity) (string, bool) {
	if !w.entities.HasName(e) {
		return "", false
	}
	return w.entities.Name(e), true
}

func (w *World) mustBeAlive(e Entity) {
	if int(e) >= w.entities.Capacity() {
		fatalf(ErrEntityOutOfRange, "%d >= %d", e, w.entities.Capacity())
	}
	if !w.entities.Alive(e) {
		fatalf(ErrEntityNotAlive, "entity %d", e)
	}
}

// RegisterComponent assigns T the next component id.
func RegisterComponent[T any](w *World) ComponentID {
	id := RegisterType[T](w.components)
	w.log.Info("component registered", zap.String("type", typeName[T]()), zap.Uint8("id", uint8(id)))
	return id
}

// AddComponent stores c first, so add hooks can read it, then sets the mask bit
// and notifies systems.
func AddComponent[T any](w *World, e Entity, c T) {
	w.mustBeAlive(e)
	id := TypeID[T](w.components)
	StoreFor[T](w.components).Insert(e, c)

	oldMask := w.entities.Mask(e)
	newMask := oldMask.With(id)
	w.entities.SetMask(e, newMask)
	w.systems.MaskChanged(e, oldMask, newMask, id)

	if w.bus != nil {
		event.Emit(w.bus, ComponentAdded{Entity: e, Component: id})
	}
}

// RemoveComponent clears the mask bit and notifies systems while the value is
// still stored, then erases it.
func RemoveComponent[T any](w *World, e Entity) {
	w.mustBeAlive(e)
	id := TypeID[T](w.components)
	oldMask := w.entities.Mask(e)
	if !oldMask.Has(id) {
		fatalf(ErrComponentMissing, "entity %d, %s", e, typeName[T]())
	}
	newMask := oldMask.Without(id)
	w.entities.SetMask(e, newMask)
	w.systems.MaskChanged(e, oldMask, newMask, id)
	StoreFor[T](w.components).Remove(e)

	if w.bus != nil {
		event.Emit(w.bus, ComponentRemoved{Entity: e, Component: id})
	}
}

func HasComponent[T any](w *World, e Entity) bool {
	return StoreFor[T](w.components).Has(e)
}

// GetComponent returns a pointer to e's T. The pointer is invalidated by the next
// removal of any T.
func GetComponent[T any](w *World, e Entity) *T {
	return StoreFor[T](w.components).Get(e)
}

func ComponentIDOf[T any](w *World) ComponentID {
	return TypeID[T](w.components)
}

// RegisterSystem binds s under its concrete type S.
func RegisterSystem[S System](w *World, s S) {
	AddSystem(w.systems, s)
	w.log.Info("system registered", zap.String("type", typeName[S]()))
}

// SetSystemComponents records the component mask S reacts to.
func SetSystemComponents[S System](w *World, mask ComponentMask) {
	SetRequiredMask[S](w.systems, mask)
	w.log.Debug("system mask set", zap.String("type", typeName[S]()), zap.Uint32("mask", uint32(mask)))
}
