package ecs

import (
	"math/bits"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxEntities is the entity capacity used when a world is built without WithCapacity.
const DefaultMaxEntities = 4096

// Entity is an opaque handle in [0, capacity). Ids are recycled after destruction.
type Entity uint32

// EntitySet is an ordered set of entities backed by a bitset.
// Insert, erase and lookup are O(1); iteration is in ascending id order.
type EntitySet struct {
	words []uint64
	n     int
}

func newEntitySet(capacity int) *EntitySet {
	return &EntitySet{words: make([]uint64, (capacity+63)/64)}
}

func (s *EntitySet) insert(e Entity) bool {
	w, bit := int(e/64), uint64(1)<<(e%64)
	for w >= len(s.words) {
		s.words = append(s.words, 0)
	}
	if s.words[w]&bit != 0 {
		return false
	}
	s.words[w] |= bit
	s.n++
	return true
}

func (s *EntitySet) erase(e Entity) bool {
	w, bit := int(e/64), uint64(1)<<(e%64)
	if w >= len(s.words) || s.words[w]&bit == 0 {
		return false
	}
	s.words[w] &^= bit
	s.n--
	return true
}

// Contains reports whether e is in the set.
func (s *EntitySet) Contains(e Entity) bool {
	w := int(e / 64)
	return w < len(s.words) && s.words[w]&(uint64(1)<<(e%64)) != 0
}

// Len returns the number of entities in the set.
func (s *EntitySet) Len() int { return s.n }

// Each visits entities in ascending order until fn returns false.
func (s *EntitySet) Each(fn func(Entity) bool) {
	for wi := range s.words {
		w := s.words[wi]
		for w != 0 {
			pos := bits.TrailingZeros64(w)
			if !fn(Entity(wi*64 + pos)) {
				return
			}
			w &^= 1 << pos
		}
	}
}

// Last returns the highest entity in the set.
func (s *EntitySet) Last() (Entity, bool) {
	for wi := len(s.words) - 1; wi >= 0; wi-- {
		if w := s.words[wi]; w != 0 {
			return Entity(wi*64 + 63 - bits.LeadingZeros64(w)), true
		}
	}
	return 0, false
}

// Slice returns a sorted copy of the set.
func (s *EntitySet) Slice() []Entity {
	out := make([]Entity, 0, s.n)
	s.Each(func(e Entity) bool {
		out = append(out, e)
		return true
	})
	return out
}

// EntityPool allocates entity ids from a fixed-capacity LIFO free list and owns
// the per-entity component masks and the optional name bindings.
type EntityPool struct {
	capacity int
	freeList []Entity // top of stack is the last element
	live     *EntitySet
	masks    []ComponentMask
	names    map[Entity]string
	byName   map[string]Entity
}

// NewEntityPool seeds the free list so that ids are handed out as 0, 1, 2, ...
// until recycling begins.
func NewEntityPool(capacity int) *EntityPool {
	p := &EntityPool{
		capacity: capacity,
		freeList: make([]Entity, capacity),
		live:     newEntitySet(capacity),
		masks:    make([]ComponentMask, capacity),
		names:    make(map[Entity]string),
		byName:   make(map[string]Entity),
	}
	for i := range p.freeList {
		p.freeList[i] = Entity(capacity - 1 - i)
	}
	return p
}

func (p *EntityPool) Capacity() int { return p.capacity }
func (p *EntityPool) Count() int    { return p.live.Len() }

// Live returns the live-entity set. Callers must not hold it across mutations
// they expect to be reflected in an ongoing iteration.
func (p *EntityPool) Live() *EntitySet { return p.live }

func (p *EntityPool) Alive(e Entity) bool { return p.live.Contains(e) }

// Create pops the most recently freed id.
func (p *EntityPool) Create() Entity {
	n := len(p.freeList)
	if n == 0 {
		fatalf(ErrEntityCapacity, "%d entities alive", p.capacity)
	}
	e := p.freeList[n-1]
	p.freeList = p.freeList[:n-1]
	p.live.insert(e)
	return e
}

// CreateNamed allocates an entity and binds name to it.
func (p *EntityPool) CreateNamed(name string) Entity {
	name = norm.NFC.String(name)
	if _, taken := p.byName[name]; taken {
		fatalf(ErrNameTaken, "%q", name)
	}
	e := p.Create()
	p.bind(e, name)
	return e
}

// Destroy clears e's mask, drops its name and returns the id to the free list.
func (p *EntityPool) Destroy(e Entity) {
	p.checkRange(e)
	if !p.live.erase(e) {
		fatalf(ErrEntityNotAlive, "destroy %d", e)
	}
	p.masks[e] = 0
	p.freeList = append(p.freeList, e)
	if name, ok := p.names[e]; ok {
		delete(p.byName, name)
		delete(p.names, e)
	}
}

func (p *EntityPool) SetMask(e Entity, m ComponentMask) {
	p.checkRange(e)
	p.masks[e] = m
}

func (p *EntityPool) Mask(e Entity) ComponentMask {
	p.checkRange(e)
	return p.masks[e]
}

func (p *EntityPool) HasName(e Entity) bool {
	_, ok := p.names[e]
	return ok
}

// SetName binds name to e, replacing any previous name of e.
func (p *EntityPool) SetName(e Entity, name string) {
	name = norm.NFC.String(name)
	if owner, taken := p.byName[name]; taken {
		if owner == e {
			return
		}
		fatalf(ErrNameTaken, "%q is bound to %d", name, owner)
	}
	if old, ok := p.names[e]; ok {
		delete(p.byName, old)
	}
	p.bind(e, name)
}

func (p *EntityPool) Name(e Entity) string {
	name, ok := p.names[e]
	if !ok {
		fatalf(ErrNameNotFound, "entity %d has no name", e)
	}
	return name
}

func (p *EntityPool) FindByName(name string) Entity {
	e, ok := p.LookupName(name)
	if !ok {
		fatalf(ErrNameNotFound, "%q", name)
	}
	return e
}

// LookupName is the non-fatal form of FindByName for tooling.
func (p *EntityPool) LookupName(name string) (Entity, bool) {
	e, ok := p.byName[norm.NFC.String(name)]
	return e, ok
}

func (p *EntityPool) bind(e Entity, name string) {
	p.names[e] = name
	p.byName[name] = e
}

func (p *EntityPool) checkRange(e Entity) {
	if int(e) >= p.capacity {
		fatalf(ErrEntityOutOfRange, "%d >= %d", e, p.capacity)
	}
}
