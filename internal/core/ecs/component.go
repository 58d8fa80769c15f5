package ecs

// entityDestroyer is the untyped view of a component store the registry keeps,
// so destroying an entity can purge every store without knowing its type.
type entityDestroyer interface {
	EntityDestroyed(e Entity)
	Has(e Entity) bool
	Len() int
}

// DenseStore packs all values of one component type into [0, Len()).
// Removal moves the last value into the freed slot, so slot order is not
// stable across removals.
type DenseStore[T any] struct {
	components   []T
	entityToSlot []int32 // -1 when the entity has no value
	slotToEntity []Entity
	validSize    int
}

func NewDenseStore[T any](capacity int) *DenseStore[T] {
	s := &DenseStore[T]{
		components:   make([]T, capacity),
		entityToSlot: make([]int32, capacity),
		slotToEntity: make([]Entity, capacity),
	}
	for i := range s.entityToSlot {
		s.entityToSlot[i] = -1
	}
	return s
}

func (s *DenseStore[T]) Insert(e Entity, c T) {
	if int(e) >= len(s.entityToSlot) {
		fatalf(ErrEntityOutOfRange, "%d >= %d", e, len(s.entityToSlot))
	}
	if s.entityToSlot[e] >= 0 {
		fatalf(ErrComponentExists, "entity %d", e)
	}
	s.entityToSlot[e] = int32(s.validSize)
	s.slotToEntity[s.validSize] = e
	s.components[s.validSize] = c
	s.validSize++
}

func (s *DenseStore[T]) Remove(e Entity) {
	if !s.Has(e) {
		fatalf(ErrComponentMissing, "entity %d", e)
	}
	slot := s.entityToSlot[e]
	last := s.validSize - 1
	moved := s.slotToEntity[last]

	s.components[slot] = s.components[last]
	s.slotToEntity[slot] = moved
	s.entityToSlot[moved] = slot
	s.entityToSlot[e] = -1

	var zero T
	s.components[last] = zero
	s.validSize--
}

func (s *DenseStore[T]) Has(e Entity) bool {
	return int(e) < len(s.entityToSlot) && s.entityToSlot[e] >= 0
}

// Get returns a pointer into the store. It is invalidated by the next Remove.
func (s *DenseStore[T]) Get(e Entity) *T {
	if !s.Has(e) {
		fatalf(ErrComponentMissing, "entity %d", e)
	}
	return &s.components[s.entityToSlot[e]]
}

// EntityDestroyed removes e's value if it has one.
func (s *DenseStore[T]) EntityDestroyed(e Entity) {
	if s.Has(e) {
		s.Remove(e)
	}
}

func (s *DenseStore[T]) Len() int { return s.validSize }

// Entities returns the packed owner list. The slice aliases the store.
func (s *DenseStore[T]) Entities() []Entity { return s.slotToEntity[:s.validSize] }

// Values returns the packed value list. The slice aliases the store.
func (s *DenseStore[T]) Values() []T { return s.components[:s.validSize] }

// Each visits every value in slot order. fn must not add or remove values of T.
func (s *DenseStore[T]) Each(fn func(Entity, *T)) {
	for i := 0; i < s.validSize; i++ {
		fn(s.slotToEntity[i], &s.components[i])
	}
}

var _ entityDestroyer = (*DenseStore[struct{}])(nil)
