package ecs

import "math/bits"

// MaxComponents is the number of distinct component types a world can register.
// It is bound to the width of ComponentMask.
const MaxComponents = 32

// ComponentID is the small integer assigned to a component type at registration.
type ComponentID uint8

// Mask returns the single-bit mask for id.
func (id ComponentID) Mask() ComponentMask { return 1 << id }

// ComponentMask has bit i set iff the owner holds component type i.
type ComponentMask uint32

// MaskOf builds a mask from component ids.
func MaskOf(ids ...ComponentID) ComponentMask {
	var m ComponentMask
	for _, id := range ids {
		m |= id.Mask()
	}
	return m
}

func (m ComponentMask) Has(id ComponentID) bool              { return m&id.Mask() != 0 }
func (m ComponentMask) With(id ComponentID) ComponentMask    { return m | id.Mask() }
func (m ComponentMask) Without(id ComponentID) ComponentMask { return m &^ id.Mask() }
func (m ComponentMask) Intersects(o ComponentMask) bool      { return m&o != 0 }
func (m ComponentMask) IsEmpty() bool                        { return m == 0 }
func (m ComponentMask) Count() int                           { return bits.OnesCount32(uint32(m)) }

// Each calls fn for every set bit in ascending order.
func (m ComponentMask) Each(fn func(ComponentID)) {
	w := uint32(m)
	for w != 0 {
		pos := bits.TrailingZeros32(w)
		fn(ComponentID(pos))
		w &^= 1 << pos
	}
}
