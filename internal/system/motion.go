package system

import (
	"time"

	"github.com/nutshell/engine/internal/component"
	"github.com/nutshell/engine/internal/core/ecs"
	coresys "github.com/nutshell/engine/internal/core/system"
)

// MotionSystem integrates rigidbodies with semi-implicit Euler: accumulated
// force and torque update the velocities, the velocities move the transform,
// and the accumulators are cleared. Static bodies never move.
// Phase 3 (Physics).
type MotionSystem struct {
	ecs.SystemBase
	world   *ecs.World
	gravity [3]float32
}

func NewMotionSystem(world *ecs.World, gravity [3]float32) *MotionSystem {
	return &MotionSystem{world: world, gravity: gravity}
}

// Register binds the system to the world and subscribes it to Rigidbody.
func (s *MotionSystem) Register() {
	ecs.RegisterSystem(s.world, s)
	ecs.SetSystemComponents[*MotionSystem](s.world, ecs.MaskOf(ecs.ComponentIDOf[component.Rigidbody](s.world)))
}

func (s *MotionSystem) Phase() coresys.Phase { return coresys.PhasePhysics }

func (s *MotionSystem) Update(dt time.Duration) {
	step := float32(dt.Seconds())
	if step <= 0 {
		return
	}
	s.Entities().Each(func(e ecs.Entity) bool {
		if !ecs.HasComponent[component.Transform](s.world, e) {
			return true
		}
		rb := ecs.GetComponent[component.Rigidbody](s.world, e)
		if rb.IsStatic {
			rb.Force, rb.Torque = [3]float32{}, [3]float32{}
			return true
		}
		integrate(ecs.GetComponent[component.Transform](s.world, e), rb, s.gravity, step)
		return true
	})
}

func integrate(t *component.Transform, rb *component.Rigidbody, gravity [3]float32, step float32) {
	invMass, invInertia := inverse(rb.Mass), inverse(rb.Inertia)
	if invMass == 0 {
		gravity = [3]float32{}
	}
	for i := 0; i < 3; i++ {
		rb.LinearVelocity[i] += (rb.Force[i]*invMass + gravity[i]) * step
		rb.AngularVelocity[i] += rb.Torque[i] * invInertia * step
		t.Position[i] += rb.LinearVelocity[i] * step
		t.Rotation[i] += rb.AngularVelocity[i] * step
	}
	rb.Force, rb.Torque = [3]float32{}, [3]float32{}
}

// inverse treats a non-positive mass or inertia as infinite.
func inverse(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return 1 / v
}
