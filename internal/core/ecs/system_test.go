package ecs

import (
	"math/rand"
	"testing"

	"github.com/nutshell/engine/internal/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hookCall struct {
	Added     bool
	Entity    Entity
	Component ComponentID
	Stored    bool // component data was present while the hook ran
	Alive     bool
}

type recorder struct {
	SystemBase
	world *World
	calls []hookCall
}

func (r *recorder) record(added bool, e Entity, id ComponentID) {
	r.calls = append(r.calls, hookCall{
		Added:     added,
		Entity:    e,
		Component: id,
		Stored:    r.world.components.HasID(e, id),
		Alive:     r.world.Alive(e),
	})
}

func (r *recorder) OnComponentAdded(e Entity, id ComponentID)   { r.record(true, e, id) }
func (r *recorder) OnComponentRemoved(e Entity, id ComponentID) { r.record(false, e, id) }

func (r *recorder) reset() { r.calls = nil }

type motionSystem struct{ recorder }
type healthSystem struct{ recorder }
type tagSystem struct{ recorder }
type quietSystem struct{ SystemBase }

func TestMotionScenario(t *testing.T) {
	w := NewWorld()
	transformID := ComponentIDOf[component.Transform](w)
	velocityID := RegisterComponent[Velocity](w)
	require.Equal(t, ComponentID(0), transformID)
	require.Equal(t, ComponentID(1), velocityID)

	motion := &motionSystem{recorder{world: w}}
	RegisterSystem(w, motion)
	SetSystemComponents[*motionSystem](w, MaskOf(transformID, velocityID))

	// The baseline Transform alone is enough for membership.
	e := w.CreateEntity()
	assert.Equal(t, MaskOf(transformID), w.MaskOf(e))
	assert.True(t, motion.Entities().Contains(e))
	assert.Equal(t, []hookCall{{Added: true, Entity: e, Component: transformID, Stored: true, Alive: true}}, motion.calls)

	motion.reset()
	AddComponent(w, e, Velocity{X: 1})
	assert.Equal(t, MaskOf(transformID, velocityID), w.MaskOf(e))
	assert.Equal(t, []hookCall{{Added: true, Entity: e, Component: velocityID, Stored: true, Alive: true}}, motion.calls)
	assert.True(t, motion.Entities().Contains(e))

	motion.reset()
	RemoveComponent[component.Transform](w, e)
	assert.Equal(t, MaskOf(velocityID), w.MaskOf(e))
	assert.Equal(t, []hookCall{{Added: false, Entity: e, Component: transformID, Stored: true, Alive: true}}, motion.calls)
	assert.True(t, motion.Entities().Contains(e), "velocity still intersects the mask")

	motion.reset()
	RemoveComponent[Velocity](w, e)
	assert.False(t, motion.Entities().Contains(e))
	assert.Len(t, motion.calls, 1)
}

func TestRemoveHookSeesComponentData(t *testing.T) {
	w := NewWorld()
	RegisterComponent[Health](w)

	var seen []int
	hs := &healthSystem{recorder{world: w}}
	RegisterSystem(w, hs)
	SetSystemComponents[*healthSystem](w, MaskOf(ComponentIDOf[Health](w)))

	e := w.CreateEntity()
	AddComponent(w, e, Health{HP: 42})
	require.Len(t, hs.calls, 1)
	assert.True(t, hs.calls[0].Stored, "add hook runs after the data is stored")

	hs.reset()
	seen = append(seen, GetComponent[Health](w, e).HP)
	RemoveComponent[Health](w, e)
	require.Len(t, hs.calls, 1)
	assert.True(t, hs.calls[0].Stored, "remove hook runs before the data is erased")
	assert.False(t, HasComponent[Health](w, e))
	assert.Equal(t, []int{42}, seen)
}

type valueReader struct {
	SystemBase
	world *World
	hp    []int
}

func (p *valueReader) OnComponentAdded(e Entity, _ ComponentID) {
	p.hp = append(p.hp, GetComponent[Health](p.world, e).HP)
}

func (p *valueReader) OnComponentRemoved(e Entity, _ ComponentID) {
	p.hp = append(p.hp, -GetComponent[Health](p.world, e).HP)
}

func TestHooksCanReadComponentValues(t *testing.T) {
	w := NewWorld()
	id := RegisterComponent[Health](w)
	reader := &valueReader{world: w}
	RegisterSystem(w, reader)
	SetSystemComponents[*valueReader](w, MaskOf(id))

	e := w.CreateEntity()
	AddComponent(w, e, Health{HP: 9})
	RemoveComponent[Health](w, e)
	AddComponent(w, e, Health{HP: 4})
	w.DestroyEntity(e)

	assert.Equal(t, []int{9, -9, 4, -4}, reader.hp)
}

func TestDestroyFiresOneHookPerOverlappingBit(t *testing.T) {
	w := NewWorld()
	velocityID := RegisterComponent[Velocity](w)
	healthID := RegisterComponent[Health](w)
	tagID := RegisterComponent[Tag](w)

	hs := &healthSystem{recorder{world: w}}
	ts := &tagSystem{recorder{world: w}}
	RegisterSystem(w, hs)
	RegisterSystem(w, ts)
	SetSystemComponents[*healthSystem](w, MaskOf(velocityID, healthID, tagID))
	SetSystemComponents[*tagSystem](w, MaskOf(tagID))

	e := w.CreateEntity()
	AddComponent(w, e, Velocity{})
	AddComponent(w, e, Health{HP: 1})
	hs.reset()
	ts.reset()

	w.DestroyEntity(e)
	assert.Equal(t, []hookCall{
		{Added: false, Entity: e, Component: velocityID, Stored: true, Alive: true},
		{Added: false, Entity: e, Component: healthID, Stored: true, Alive: true},
	}, hs.calls)
	assert.Empty(t, ts.calls)
	assert.False(t, hs.Entities().Contains(e))

	assert.False(t, HasComponent[Velocity](w, e))
	assert.False(t, HasComponent[component.Transform](w, e))
	assert.Equal(t, e, w.CreateEntity(), "id is reusable after destruction")
}

func TestSystemRegistrationPreconditions(t *testing.T) {
	w := NewWorld()
	RegisterSystem(w, &quietSystem{})
	requirePanicsWith(t, ErrSystemRegistered, func() { RegisterSystem(w, &quietSystem{}) })
	requirePanicsWith(t, ErrSystemNotRegistered, func() {
		SetSystemComponents[*tagSystem](w, MaskOf(0))
	})
	requirePanicsWith(t, ErrSystemNotRegistered, func() { RequiredMask[*tagSystem](w.Systems()) })
	SetSystemComponents[*quietSystem](w, MaskOf(0))
	assert.Equal(t, MaskOf(0), RequiredMask[*quietSystem](w.Systems()))
}

func TestMaskChangedRequiresSingleBitDelta(t *testing.T) {
	r := NewSystemRegistry(4)
	requirePanicsWith(t, ErrMaskDelta, func() { r.MaskChanged(0, MaskOf(0), MaskOf(0), 0) })
	requirePanicsWith(t, ErrMaskDelta, func() { r.MaskChanged(0, 0, MaskOf(0, 1), 1) })
	requirePanicsWith(t, ErrMaskDelta, func() { r.MaskChanged(0, 0, MaskOf(2), 1) })
	r.MaskChanged(0, 0, MaskOf(1), 1)
}

func TestMembershipMatchesMaskIntersection(t *testing.T) {
	const entities = 48
	w := NewWorld(WithCapacity(entities))
	velocityID := RegisterComponent[Velocity](w)
	healthID := RegisterComponent[Health](w)
	tagID := RegisterComponent[Tag](w)

	ms := &motionSystem{recorder{world: w}}
	hs := &healthSystem{recorder{world: w}}
	ts := &tagSystem{recorder{world: w}}
	RegisterSystem(w, ms)
	RegisterSystem(w, hs)
	RegisterSystem(w, ts)
	SetSystemComponents[*motionSystem](w, MaskOf(velocityID))
	SetSystemComponents[*healthSystem](w, MaskOf(velocityID, healthID))
	SetSystemComponents[*tagSystem](w, MaskOf(0, tagID))

	systems := []struct {
		set  *EntitySet
		mask ComponentMask
	}{
		{ms.Entities(), MaskOf(velocityID)},
		{hs.Entities(), MaskOf(velocityID, healthID)},
		{ts.Entities(), MaskOf(0, tagID)},
	}

	rng := rand.New(rand.NewSource(42))
	for step := 0; step < 3000; step++ {
		e := Entity(rng.Intn(entities))
		if !w.Alive(e) {
			if w.EntityCount() < entities {
				w.CreateEntity()
			}
			continue
		}
		switch rng.Intn(6) {
		case 0:
			if HasComponent[Velocity](w, e) {
				RemoveComponent[Velocity](w, e)
			} else {
				AddComponent(w, e, Velocity{})
			}
		case 1:
			if HasComponent[Health](w, e) {
				RemoveComponent[Health](w, e)
			} else {
				AddComponent(w, e, Health{HP: step})
			}
		case 2:
			if HasComponent[Tag](w, e) {
				RemoveComponent[Tag](w, e)
			} else {
				AddComponent(w, e, Tag{})
			}
		case 3:
			if HasComponent[component.Transform](w, e) {
				RemoveComponent[component.Transform](w, e)
			} else {
				AddComponent(w, e, component.NewTransform())
			}
		case 4:
			w.DestroyEntity(e)
		default:
			if w.EntityCount() < entities {
				w.CreateEntity()
			}
		}

		for _, sys := range systems {
			var want []Entity
			w.Entities().Live().Each(func(le Entity) bool {
				if w.MaskOf(le).Intersects(sys.mask) {
					want = append(want, le)
				}
				return true
			})
			require.Equal(t, len(want), sys.set.Len(), "step %d", step)
			if len(want) > 0 {
				require.Equal(t, want, sys.set.Slice(), "step %d", step)
			}
		}
	}
}
