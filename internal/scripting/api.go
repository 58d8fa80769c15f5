package scripting

import (
	"github.com/nutshell/engine/internal/component"
	"github.com/nutshell/engine/internal/core/ecs"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerAPI installs the global `engine` table. Every function validates its
// arguments and raises a Lua error instead of tripping a fatal ECS precondition.
func (e *Engine) registerAPI() {
	mod := e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"create_entity":  e.luaCreateEntity,
		"destroy_entity": e.luaDestroyEntity,
		"find":           e.luaFind,
		"name":           e.luaName,
		"alive":          e.luaAlive,
		"get_position":   e.luaGetPosition,
		"set_position":   e.luaSetPosition,
		"translate":      e.luaTranslate,
		"get_rotation":   e.luaGetRotation,
		"set_rotation":   e.luaSetRotation,
		"apply_force":    e.luaApplyForce,
		"log":            e.luaLog,
	})
	e.vm.SetGlobal("engine", mod)
}

func (e *Engine) checkEntity(L *lua.LState, n int) ecs.Entity {
	v := L.CheckInt(n)
	if v < 0 || v >= e.world.Capacity() || !e.world.Alive(ecs.Entity(v)) {
		L.ArgError(n, "entity is not alive")
	}
	return ecs.Entity(v)
}

func (e *Engine) transform(L *lua.LState, n int) *component.Transform {
	ent := e.checkEntity(L, n)
	if !ecs.HasComponent[component.Transform](e.world, ent) {
		L.ArgError(n, "entity has no transform")
	}
	return ecs.GetComponent[component.Transform](e.world, ent)
}

func checkVec3(L *lua.LState, first int) [3]float32 {
	return [3]float32{
		float32(L.CheckNumber(first)),
		float32(L.CheckNumber(first + 1)),
		float32(L.CheckNumber(first + 2)),
	}
}

func pushVec3(L *lua.LState, v [3]float32) int {
	L.Push(lua.LNumber(v[0]))
	L.Push(lua.LNumber(v[1]))
	L.Push(lua.LNumber(v[2]))
	return 3
}

// engine.create_entity([name]) -> entity
func (e *Engine) luaCreateEntity(L *lua.LState) int {
	if e.world.EntityCount() >= e.world.Capacity() {
		L.RaiseError("entity capacity exhausted")
	}
	var ent ecs.Entity
	if L.GetTop() >= 1 {
		name := L.CheckString(1)
		if _, taken := e.world.LookupEntity(name); taken {
			L.ArgError(1, "name already taken")
		}
		ent = e.world.CreateNamedEntity(name)
	} else {
		ent = e.world.CreateEntity()
	}
	L.Push(lua.LNumber(ent))
	return 1
}

// engine.destroy_entity(entity) queues the entity for end-of-tick destruction.
func (e *Engine) luaDestroyEntity(L *lua.LState) int {
	e.world.MarkForDestruction(e.checkEntity(L, 1))
	return 0
}

// engine.find(name) -> entity or nil
func (e *Engine) luaFind(L *lua.LState) int {
	ent, ok := e.world.LookupEntity(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(ent))
	return 1
}

// engine.name(entity) -> string or nil
func (e *Engine) luaName(L *lua.LState) int {
	ent := e.checkEntity(L, 1)
	if !e.world.EntityHasName(ent) {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(e.world.EntityName(ent)))
	return 1
}

func (e *Engine) luaAlive(L *lua.LState) int {
	v := L.CheckInt(1)
	L.Push(lua.LBool(v >= 0 && v < e.world.Capacity() && e.world.Alive(ecs.Entity(v))))
	return 1
}

func (e *Engine) luaGetPosition(L *lua.LState) int {
	return pushVec3(L, e.transform(L, 1).Position)
}

func (e *Engine) luaSetPosition(L *lua.LState) int {
	t := e.transform(L, 1)
	t.Position = checkVec3(L, 2)
	return 0
}

func (e *Engine) luaTranslate(L *lua.LState) int {
	t := e.transform(L, 1)
	d := checkVec3(L, 2)
	for i := range t.Position {
		t.Position[i] += d[i]
	}
	return 0
}

func (e *Engine) luaGetRotation(L *lua.LState) int {
	return pushVec3(L, e.transform(L, 1).Rotation)
}

func (e *Engine) luaSetRotation(L *lua.LState) int {
	t := e.transform(L, 1)
	t.Rotation = checkVec3(L, 2)
	return 0
}

// engine.apply_force(entity, fx, fy, fz) accumulates force for the next physics step.
func (e *Engine) luaApplyForce(L *lua.LState) int {
	ent := e.checkEntity(L, 1)
	if !ecs.IsRegistered[component.Rigidbody](e.world.Components()) ||
		!ecs.HasComponent[component.Rigidbody](e.world, ent) {
		L.ArgError(1, "entity has no rigidbody")
	}
	rb := ecs.GetComponent[component.Rigidbody](e.world, ent)
	f := checkVec3(L, 2)
	for i := range rb.Force {
		rb.Force[i] += f[i]
	}
	return 0
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("script", zap.String("msg", L.CheckString(1)))
	return 0
}
