package system

import (
	"github.com/nutshell/engine/internal/component"
	"github.com/nutshell/engine/internal/core/ecs"
)

// RegisterComponents registers every engine component after the baseline
// Transform. The order fixes the component ids, which scene snapshots rely on,
// so new types must be appended.
func RegisterComponents(w *ecs.World) {
	ecs.RegisterComponent[component.Rigidbody](w)
	ecs.RegisterComponent[component.SphereCollidable](w)
	ecs.RegisterComponent[component.AABBCollidable](w)
	ecs.RegisterComponent[component.CapsuleCollidable](w)
	ecs.RegisterComponent[component.Renderable](w)
	ecs.RegisterComponent[component.Camera](w)
	ecs.RegisterComponent[component.Light](w)
	ecs.RegisterComponent[component.AudioEmitter](w)
	ecs.RegisterComponent[component.AudioListener](w)
	ecs.RegisterComponent[component.Scriptable](w)
}
