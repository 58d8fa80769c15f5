package system

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nutshell/engine/internal/component"
	"github.com/nutshell/engine/internal/core/ecs"
	"github.com/nutshell/engine/internal/core/event"
	coresys "github.com/nutshell/engine/internal/core/system"
	"github.com/nutshell/engine/internal/persist"
	"github.com/nutshell/engine/internal/scene"
	"github.com/nutshell/engine/internal/scripting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newWorld(t *testing.T, opts ...ecs.WorldOption) *ecs.World {
	t.Helper()
	w := ecs.NewWorld(append([]ecs.WorldOption{ecs.WithCapacity(64)}, opts...)...)
	RegisterComponents(w)
	return w
}

func TestRegisterComponentsFixesIDs(t *testing.T) {
	w := newWorld(t)
	assert.Equal(t, 11, w.Components().Len())
	assert.Equal(t, ecs.ComponentID(0), ecs.ComponentIDOf[component.Transform](w))
	assert.Equal(t, ecs.ComponentID(1), ecs.ComponentIDOf[component.Rigidbody](w))
	assert.Equal(t, ecs.ComponentID(10), ecs.ComponentIDOf[component.Scriptable](w))
}

func TestCleanupSystemFlushesQueue(t *testing.T) {
	w := newWorld(t)
	a, b := w.CreateEntity(), w.CreateEntity()
	w.MarkForDestruction(a)
	w.MarkForDestruction(a)

	s := NewCleanupSystem(w, zap.NewNop())
	assert.Equal(t, coresys.PhaseCleanup, s.Phase())
	s.Update(time.Millisecond)

	assert.False(t, w.Alive(a))
	assert.True(t, w.Alive(b))
	assert.Equal(t, 1, w.EntityCount())
}

func TestEventSystemDeliversNextTick(t *testing.T) {
	bus := event.NewBus()
	w := newWorld(t, ecs.WithEventBus(bus))
	var created []ecs.Entity
	event.Subscribe(bus, func(ev ecs.EntityCreated) { created = append(created, ev.Entity) })

	s := NewEventSystem(bus)
	e := w.CreateNamedEntity("crate")
	assert.Empty(t, created)

	s.Update(0)
	assert.Equal(t, []ecs.Entity{e}, created)

	s.Update(0)
	assert.Len(t, created, 1, "events are delivered once")
}

func TestMotionSystemIntegrates(t *testing.T) {
	w := newWorld(t)
	m := NewMotionSystem(w, [3]float32{0, -10, 0})
	m.Register()

	body := w.CreateEntity()
	ecs.AddComponent(w, body, component.Rigidbody{Mass: 2, Inertia: 1, Force: [3]float32{4, 0, 0}})
	static := w.CreateEntity()
	ecs.AddComponent(w, static, component.Rigidbody{IsStatic: true, Mass: 1, Force: [3]float32{100, 0, 0}})
	plain := w.CreateEntity()

	assert.Equal(t, 2, m.Entities().Len())
	assert.False(t, m.Entities().Contains(plain))

	m.Update(500 * time.Millisecond)

	rb := ecs.GetComponent[component.Rigidbody](w, body)
	// v = (F/m + g) * dt, p = v * dt
	assert.InDeltaSlice(t, []float32{1, -5, 0}, rb.LinearVelocity[:], 1e-6)
	assert.InDeltaSlice(t, []float32{0.5, -2.5, 0}, ecs.GetComponent[component.Transform](w, body).Position[:], 1e-6)
	assert.Equal(t, [3]float32{}, rb.Force, "force is consumed")

	srb := ecs.GetComponent[component.Rigidbody](w, static)
	assert.Equal(t, [3]float32{}, srb.LinearVelocity)
	assert.Equal(t, [3]float32{}, srb.Force)
	assert.Equal(t, [3]float32{}, ecs.GetComponent[component.Transform](w, static).Position)

	ecs.RemoveComponent[component.Rigidbody](w, body)
	assert.False(t, m.Entities().Contains(body))
}

func TestMotionSystemSkipsMembersWithoutTransform(t *testing.T) {
	w := newWorld(t)
	m := NewMotionSystem(w, [3]float32{0, -10, 0})
	m.Register()

	e := w.CreateEntity()
	ecs.AddComponent(w, e, component.NewRigidbody())
	ecs.RemoveComponent[component.Transform](w, e)

	assert.NotPanics(t, func() { m.Update(time.Second) })
	assert.Equal(t, [3]float32{}, ecs.GetComponent[component.Rigidbody](w, e).LinearVelocity)
}

const counterScript = `
local M = {}
function M:on_init(e) inits = (inits or 0) + 1 end
function M:on_update(e, dt) engine.translate(e, dt, 0, 0) end
function M:on_destroy(e) destroys = (destroys or 0) + 1 end
return M
`

func newScriptSystem(t *testing.T) (*ScriptSystem, *scripting.Engine, *ecs.World) {
	t.Helper()
	w := newWorld(t)
	eng, err := scripting.NewEngine(t.TempDir(), w, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	s := NewScriptSystem(w, eng, zap.NewNop())
	s.Register()
	return s, eng, w
}

func TestScriptSystemLifecycle(t *testing.T) {
	s, eng, w := newScriptSystem(t)
	a, b := w.CreateEntity(), w.CreateEntity()

	ecs.AddComponent(w, a, component.Scriptable{Source: counterScript})
	ecs.AddComponent(w, b, component.Scriptable{Source: counterScript})
	assert.Equal(t, float64(2), eng.Global("inits"))
	assert.Equal(t, 2, s.Entities().Len())

	s.Update(250 * time.Millisecond)
	assert.InDelta(t, 0.25, ecs.GetComponent[component.Transform](w, a).Position[0], 1e-6)
	assert.InDelta(t, 0.25, ecs.GetComponent[component.Transform](w, b).Position[0], 1e-6)

	ecs.RemoveComponent[component.Scriptable](w, a)
	assert.Equal(t, float64(1), eng.Global("destroys"))
	assert.False(t, eng.Attached(a))

	w.DestroyEntity(b)
	assert.Equal(t, float64(2), eng.Global("destroys"))
	assert.Zero(t, eng.Len())
	assert.Zero(t, s.Failures())
}

func TestScriptSystemLogsFailures(t *testing.T) {
	s, eng, w := newScriptSystem(t)
	e := w.CreateEntity()

	ecs.AddComponent(w, e, component.Scriptable{Source: "return 1"})
	assert.Equal(t, 1, s.Failures())
	assert.False(t, eng.Attached(e))

	other := w.CreateEntity()
	ecs.AddComponent(w, other, component.Scriptable{Source: `return { on_update = function() error("boom") end }`})
	s.Update(time.Millisecond)
	assert.Equal(t, 2, s.Failures())

	// removing a script that never attached is quiet
	assert.NotPanics(t, func() { ecs.RemoveComponent[component.Scriptable](w, e) })
}

func TestScriptSystemDeferredDestroy(t *testing.T) {
	s, _, w := newScriptSystem(t)
	e := w.CreateEntity()
	ecs.AddComponent(w, e, component.Scriptable{Source: `
return { on_update = function(self, e) engine.destroy_entity(e) end }
`})

	r := coresys.NewRunner(nil)
	r.Register(s)
	r.Register(NewCleanupSystem(w, zap.NewNop()))
	r.Tick(time.Millisecond)

	assert.False(t, w.Alive(e))
}

func TestScriptDestroyDuringCleanupFlush(t *testing.T) {
	s, eng, w := newScriptSystem(t)
	leader := w.CreateNamedEntity("leader")
	follower := w.CreateNamedEntity("follower")
	ecs.AddComponent(w, leader, component.Scriptable{Source: `
return { on_destroy = function(self, e) engine.destroy_entity(engine.find("follower")) end }
`})

	r := coresys.NewRunner(nil)
	r.Register(s)
	r.Register(NewCleanupSystem(w, zap.NewNop()))

	w.MarkForDestruction(leader)
	r.Tick(time.Millisecond)

	assert.False(t, w.Alive(leader))
	assert.False(t, w.Alive(follower), "entity queued from on_destroy is destroyed in the same flush")
	assert.Zero(t, eng.Len())
	assert.Zero(t, s.Failures())
}

type memStore struct {
	saved []*persist.Snapshot
	err   error
}

func (m *memStore) Save(_ context.Context, s *persist.Snapshot) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, s)
	return nil
}

func TestSnapshotSystemInterval(t *testing.T) {
	w := newWorld(t)
	sc, err := scene.Parse([]byte("name: demo\nentities:\n  - name: a\n  - name: b\n"))
	require.NoError(t, err)
	_, err = sc.Instantiate(w)
	require.NoError(t, err)

	store := &memStore{}
	s := NewSnapshotSystem(w, sc, store, zap.NewNop(), 3)
	for i := 0; i < 7; i++ {
		s.Update(time.Millisecond)
	}
	require.Len(t, store.saved, 2)
	assert.Equal(t, uint64(3), store.saved[0].Tick)
	assert.Equal(t, uint64(6), store.saved[1].Tick)
	assert.Equal(t, "demo", store.saved[1].SceneName)
	assert.Equal(t, sc.Digest(), store.saved[1].Digest)
	assert.Equal(t, 2, store.saved[1].Entities)

	n, err := scene.Restore(w, sc.Digest(), store.saved[1].Payload)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.SaveNow(context.Background()))
	assert.Equal(t, 3, s.Saved())
	assert.Equal(t, uint64(7), store.saved[2].Tick)
}

func TestSnapshotSystemErrors(t *testing.T) {
	w := newWorld(t)
	sc, err := scene.Parse([]byte("name: demo\n"))
	require.NoError(t, err)

	store := &memStore{err: errors.New("disk full")}
	s := NewSnapshotSystem(w, sc, store, zap.NewNop(), 0)
	s.Update(time.Millisecond)
	assert.ErrorContains(t, s.SaveNow(context.Background()), "disk full")
	assert.Zero(t, s.Saved())
}
