package ecs

// System is a processing unit notified when entities gain or lose components
// under its required mask. Implementations embed SystemBase, which supplies
// no-op hooks and the maintained membership set.
type System interface {
	OnComponentAdded(e Entity, id ComponentID)
	OnComponentRemoved(e Entity, id ComponentID)
	systemBase() *SystemBase
}

// SystemBase holds the entities currently relevant to a system: those sharing at
// least one component bit with its required mask.
type SystemBase struct {
	entities *EntitySet
}

func (b *SystemBase) OnComponentAdded(Entity, ComponentID)   {}
func (b *SystemBase) OnComponentRemoved(Entity, ComponentID) {}

// Entities returns the membership set. It is maintained by the world and must be
// treated as read-only.
func (b *SystemBase) Entities() *EntitySet {
	if b.entities == nil {
		b.entities = newEntitySet(0)
	}
	return b.entities
}

func (b *SystemBase) systemBase() *SystemBase { return b }

type systemRecord struct {
	system System
	mask   ComponentMask
}

// SystemRegistry keeps systems in registration order and routes mask changes to them.
type SystemRegistry struct {
	capacity int
	index    map[any]int
	records  []*systemRecord
}

func NewSystemRegistry(entityCapacity int) *SystemRegistry {
	return &SystemRegistry{
		capacity: entityCapacity,
		index:    make(map[any]int),
	}
}

// AddSystem registers s under its static type S. S must be the concrete system
// type; registering through an interface type collapses every system onto one key.
func AddSystem[S System](r *SystemRegistry, s S) {
	key := typeKey[S]()
	if _, ok := r.index[key]; ok {
		fatalf(ErrSystemRegistered, "%T", s)
	}
	base := s.systemBase()
	if base.entities == nil {
		base.entities = newEntitySet(r.capacity)
	}
	r.index[key] = len(r.records)
	r.records = append(r.records, &systemRecord{system: s})
}

// SetRequiredMask records which component bits matter to S. Membership is not
// recomputed for existing entities.
func SetRequiredMask[S System](r *SystemRegistry, mask ComponentMask) {
	i, ok := r.index[typeKey[S]()]
	if !ok {
		fatalf(ErrSystemNotRegistered, "%T", *new(S))
	}
	r.records[i].mask = mask
}

// RequiredMask returns the mask recorded for S.
func RequiredMask[S System](r *SystemRegistry) ComponentMask {
	i, ok := r.index[typeKey[S]()]
	if !ok {
		fatalf(ErrSystemNotRegistered, "%T", *new(S))
	}
	return r.records[i].mask
}

func (r *SystemRegistry) Len() int { return len(r.records) }

// EntityDestroyed fires one removal hook per bit shared by mask and each
// system's required mask, then evicts e from that system.
func (r *SystemRegistry) EntityDestroyed(e Entity, mask ComponentMask) {
	for _, rec := range r.records {
		shared := mask & rec.mask
		if shared.IsEmpty() {
			continue
		}
		shared.Each(func(id ComponentID) {
			rec.system.OnComponentRemoved(e, id)
		})
		rec.system.systemBase().entities.erase(e)
	}
}

// MaskChanged is called once per single-component mutation; oldMask and newMask
// must differ exactly in bit id. Because only that bit differs, comparing the two
// masked values as integers tells whether it was added or removed.
func (r *SystemRegistry) MaskChanged(e Entity, oldMask, newMask ComponentMask, id ComponentID) {
	if int(id) >= MaxComponents || oldMask^newMask != id.Mask() {
		fatalf(ErrMaskDelta, "entity %d: %032b -> %032b (component %d)", e, oldMask, newMask, id)
	}
	for _, rec := range r.records {
		before := oldMask & rec.mask
		after := newMask & rec.mask
		switch {
		case after > before:
			rec.system.OnComponentAdded(e, id)
			if before.IsEmpty() {
				rec.system.systemBase().entities.insert(e)
			}
		case after < before:
			rec.system.OnComponentRemoved(e, id)
			if after.IsEmpty() {
				rec.system.systemBase().entities.erase(e)
			}
		}
	}
}
