package scene

import (
	"fmt"

	"github.com/nutshell/engine/internal/component"
	"github.com/nutshell/engine/internal/core/ecs"
)

// Instantiate creates one entity per definition, in file order, and returns them.
// Everything that would trip a fatal world precondition is checked first, so a
// bad scene returns an error and leaves the world untouched. Hooks may still
// create entities while the scene is built; if that exhausts capacity or takes
// a scene name, the entities created so far are destroyed again and an error is
// returned. Entities those hooks created themselves are left to their owners.
//
// The script component is added last so on_init sees the entity fully built.
func (s *Scene) Instantiate(w *ecs.World) ([]ecs.Entity, error) {
	if err := s.check(w); err != nil {
		return nil, err
	}
	out := make([]ecs.Entity, 0, len(s.Entities))
	for i := range s.Entities {
		def := &s.Entities[i]
		if err := s.checkRoom(w, i); err != nil {
			rollback(w, out)
			return nil, err
		}
		var e ecs.Entity
		if def.Name != "" {
			e = w.CreateNamedEntity(def.Name)
		} else {
			e = w.CreateEntity()
		}
		out = append(out, e)
		if def.Transform != nil {
			t := *def.Transform
			if t.Scale == ([3]float32{}) {
				t.Scale = [3]float32{1, 1, 1}
			}
			*ecs.GetComponent[component.Transform](w, e) = t
		}
		addIf(w, e, def.Rigidbody)
		addIf(w, e, def.Sphere)
		addIf(w, e, def.AABB)
		addIf(w, e, def.Capsule)
		addIf(w, e, def.Renderable)
		addIf(w, e, def.Camera)
		addIf(w, e, def.Light)
		addIf(w, e, def.AudioEmitter)
		addIf(w, e, def.AudioListener)
		addIf(w, e, def.Script)
	}
	return out, nil
}

// checkRoom re-validates entity i right before it is created.
func (s *Scene) checkRoom(w *ecs.World, i int) error {
	if w.EntityCount() >= w.Capacity() {
		return fmt.Errorf("instantiate %q: entity %d: capacity %d exhausted while building", s.Name, i, w.Capacity())
	}
	if name := s.Entities[i].Name; name != "" {
		if _, taken := w.LookupEntity(name); taken {
			return fmt.Errorf("instantiate %q: entity %d: name %q taken while building", s.Name, i, name)
		}
	}
	return nil
}

// rollback destroys created entities, newest first.
func rollback(w *ecs.World, created []ecs.Entity) {
	for i := len(created) - 1; i >= 0; i-- {
		if w.Alive(created[i]) {
			w.DestroyEntity(created[i])
		}
	}
}

func (s *Scene) check(w *ecs.World) error {
	if free := w.Capacity() - w.EntityCount(); len(s.Entities) > free {
		return fmt.Errorf("instantiate %q: %d entities, room for %d", s.Name, len(s.Entities), free)
	}
	for i := range s.Entities {
		def := &s.Entities[i]
		if def.Name != "" {
			if _, taken := w.LookupEntity(def.Name); taken {
				return fmt.Errorf("instantiate %q: name %q already in use", s.Name, def.Name)
			}
		}
		for _, err := range []error{
			registered(w, def.Rigidbody),
			registered(w, def.Sphere),
			registered(w, def.AABB),
			registered(w, def.Capsule),
			registered(w, def.Renderable),
			registered(w, def.Camera),
			registered(w, def.Light),
			registered(w, def.AudioEmitter),
			registered(w, def.AudioListener),
			registered(w, def.Script),
		} {
			if err != nil {
				return fmt.Errorf("instantiate %q: entity %d: %w", s.Name, i, err)
			}
		}
	}
	return nil
}

func registered[T any](w *ecs.World, c *T) error {
	if c != nil && !ecs.IsRegistered[T](w.Components()) {
		return fmt.Errorf("component %T is not registered", *c)
	}
	return nil
}

func addIf[T any](w *ecs.World, e ecs.Entity, c *T) {
	if c != nil {
		ecs.AddComponent(w, e, *c)
	}
}
