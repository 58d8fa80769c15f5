package system

import (
	"time"

	"github.com/nutshell/engine/internal/component"
	"github.com/nutshell/engine/internal/core/ecs"
	coresys "github.com/nutshell/engine/internal/core/system"
	"github.com/nutshell/engine/internal/scripting"
	"go.uber.org/zap"
)

// ScriptSystem runs the Lua script of every entity carrying a Scriptable.
// Attachment follows the component: adding Scriptable compiles the script and
// calls on_init, removing it (or destroying the entity) calls on_destroy.
// Phase 2 (Script).
type ScriptSystem struct {
	ecs.SystemBase
	world  *ecs.World
	engine *scripting.Engine
	log    *zap.Logger
	failed int
}

func NewScriptSystem(world *ecs.World, engine *scripting.Engine, log *zap.Logger) *ScriptSystem {
	return &ScriptSystem{world: world, engine: engine, log: log}
}

// Register binds the system to the world and subscribes it to Scriptable.
func (s *ScriptSystem) Register() {
	ecs.RegisterSystem(s.world, s)
	ecs.SetSystemComponents[*ScriptSystem](s.world, ecs.MaskOf(ecs.ComponentIDOf[component.Scriptable](s.world)))
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseScript }

func (s *ScriptSystem) OnComponentAdded(e ecs.Entity, id ecs.ComponentID) {
	if id != ecs.ComponentIDOf[component.Scriptable](s.world) {
		return
	}
	sc := *ecs.GetComponent[component.Scriptable](s.world, e)
	if err := s.engine.Attach(e, sc); err != nil {
		s.failed++
		s.log.Error("script attach failed", zap.Uint32("entity", uint32(e)), zap.Error(err))
	}
}

func (s *ScriptSystem) OnComponentRemoved(e ecs.Entity, id ecs.ComponentID) {
	if id != ecs.ComponentIDOf[component.Scriptable](s.world) || !s.engine.Attached(e) {
		return
	}
	if err := s.engine.Detach(e); err != nil {
		s.log.Error("script on_destroy failed", zap.Uint32("entity", uint32(e)), zap.Error(err))
	}
}

// Update calls on_update for a snapshot of the members, so scripts may create
// entities or attach scripts without disturbing this tick's iteration.
func (s *ScriptSystem) Update(dt time.Duration) {
	seconds := dt.Seconds()
	for _, e := range s.Entities().Slice() {
		if !s.engine.Attached(e) {
			continue
		}
		if err := s.engine.Update(e, seconds); err != nil {
			s.failed++
			s.log.Error("script update failed", zap.Uint32("entity", uint32(e)), zap.Error(err))
		}
	}
}

// Failures returns how many attach or update calls have failed so far.
func (s *ScriptSystem) Failures() int { return s.failed }
