package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nutshell/engine/internal/component"
	"github.com/nutshell/engine/internal/core/ecs"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrNotAttached is returned when calling into the script of an entity that has none.
var ErrNotAttached = errors.New("scripting: no script attached")

// Engine wraps a single gopher-lua VM shared by every entity script.
// Single-goroutine access only (tick loop).
//
// An entity script is a chunk returning a table; the optional fields
// on_init(self, entity), on_update(self, entity, dt) and on_destroy(self, entity)
// are called by the script system. The global `engine` table exposes the world.
type Engine struct {
	vm         *lua.LState
	log        *zap.Logger
	world      *ecs.World
	scriptsDir string
	instances  map[ecs.Entity]*lua.LTable
}

// NewEngine creates the VM, binds the engine API and loads the shared libraries
// under scriptsDir/lib. A missing directory is not an error.
func NewEngine(scriptsDir string, world *ecs.World, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:         vm,
		log:        log.Named("lua"),
		world:      world,
		scriptsDir: scriptsDir,
		instances:  make(map[ecs.Entity]*lua.LTable),
	}
	e.registerAPI()

	if err := e.loadDir(filepath.Join(scriptsDir, "lib")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load lib scripts: %w", err)
	}
	return e, nil
}

// loadDir runs every .lua file in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Attach compiles the script, keeps its instance table for ent and runs on_init.
func (e *Engine) Attach(ent ecs.Entity, sc component.Scriptable) error {
	var (
		fn  *lua.LFunction
		err error
	)
	switch {
	case sc.Source != "":
		fn, err = e.vm.LoadString(sc.Source)
	case sc.Path != "":
		path := sc.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(e.scriptsDir, path)
		}
		fn, err = e.vm.LoadFile(path)
	default:
		return fmt.Errorf("entity %d: scriptable has neither path nor source", ent)
	}
	if err != nil {
		return fmt.Errorf("entity %d: compile script: %w", ent, err)
	}

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return fmt.Errorf("entity %d: run script chunk: %w", ent, err)
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	inst, ok := ret.(*lua.LTable)
	if !ok {
		return fmt.Errorf("entity %d: script must return a table, got %s", ent, ret.Type())
	}
	e.instances[ent] = inst

	return e.callHook(ent, inst, "on_init")
}

// Detach runs on_destroy and forgets the instance.
func (e *Engine) Detach(ent ecs.Entity) error {
	inst, ok := e.instances[ent]
	if !ok {
		return fmt.Errorf("entity %d: %w", ent, ErrNotAttached)
	}
	delete(e.instances, ent)
	return e.callHook(ent, inst, "on_destroy")
}

// Update runs on_update for ent with dt in seconds.
func (e *Engine) Update(ent ecs.Entity, dt float64) error {
	inst, ok := e.instances[ent]
	if !ok {
		return fmt.Errorf("entity %d: %w", ent, ErrNotAttached)
	}
	return e.callHook(ent, inst, "on_update", lua.LNumber(dt))
}

func (e *Engine) Attached(ent ecs.Entity) bool {
	_, ok := e.instances[ent]
	return ok
}

func (e *Engine) Len() int { return len(e.instances) }

func (e *Engine) callHook(ent ecs.Entity, inst *lua.LTable, name string, args ...lua.LValue) error {
	fn, ok := inst.RawGetString(name).(*lua.LFunction)
	if !ok {
		return nil
	}
	params := append([]lua.LValue{inst, lua.LNumber(ent)}, args...)
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, params...); err != nil {
		return fmt.Errorf("entity %d: %s: %w", ent, name, err)
	}
	return nil
}

// DoString runs a chunk in the shared VM. Used by tooling and tests.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// Global returns a global variable as a Go value (nil, bool, float64 or string).
func (e *Engine) Global(name string) any {
	switch v := e.vm.GetGlobal(name).(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	default:
		return nil
	}
}

func (e *Engine) Close() {
	e.vm.Close()
}
