package lua

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/plugkit/internal/input/keymap"
	"github.com/dshills/plugkit/internal/input/mode"
	"github.com/dshills/plugkit/internal/plugin"
)

// ModuleName is the module plugin scripts require to reach the host:
//
//	local plug = require("plug")
const ModuleName = "plug"

// Script adapts one Lua file to a plugin.Definition. Each enable creates a
// fresh sandboxed state; disable tears it down.
//
// The script must define a global enable() function. A global disable()
// function is optional; when present it runs before the host unwinds the
// plugin's registrations. enable's first return value becomes the plugin's
// stored value, converted to Go.
type Script struct {
	Name        string
	Path        string
	Version     int
	Author      string
	Description string

	opts []StateOption
}

// NewScript describes the Lua file at path as a plugin named name.
func NewScript(name, path string, opts ...StateOption) *Script {
	return &Script{Name: name, Path: path, opts: opts}
}

// Definition builds the plugin.Definition backed by this script.
func (s *Script) Definition() plugin.Definition {
	return plugin.Definition{
		Name:        s.Name,
		Version:     s.Version,
		Author:      s.Author,
		Description: s.Description,
		Enable:      s.enable,
		Disable:     s.disable,
	}
}

// Instance is the live state of one enabled script. It is the opaque value
// the manager stores between enable and disable.
type Instance struct {
	state  *State
	bridge *Bridge
	api    *plugin.API

	// Value is enable()'s first return value converted to Go, nil if the
	// function returned nothing.
	Value any
}

func (s *Script) enable(_ context.Context, api *plugin.API) (any, error) {
	state := NewState(s.opts...)
	inst := &Instance{
		state:  state,
		bridge: NewBridge(state.L),
		api:    api,
	}
	state.Preload(ModuleName, inst.moduleLoader)

	if err := state.DoFile(s.Path); err != nil {
		state.Close()
		return nil, fmt.Errorf("load %s: %w", s.Path, err)
	}
	if !state.HasGlobalFunction("enable") {
		state.Close()
		return nil, fmt.Errorf("%s: %w", s.Path, ErrNoEnable)
	}

	results, err := state.CallGlobal("enable")
	if err != nil {
		state.Close()
		return nil, fmt.Errorf("enable %s: %w", s.Name, err)
	}
	if len(results) > 0 {
		inst.Value = inst.bridge.ToGoValue(results[0])
	}
	return inst, nil
}

func (s *Script) disable(_ context.Context, api *plugin.API, value any) error {
	inst, ok := value.(*Instance)
	if !ok {
		return fmt.Errorf("plugin %q: stored value is not a script instance", s.Name)
	}

	var callErr error
	if inst.state.HasGlobalFunction("disable") {
		if _, err := inst.state.CallGlobal("disable"); err != nil {
			callErr = fmt.Errorf("disable %s: %w", s.Name, err)
		}
	}

	api.DeregisterAll()
	inst.state.Close()
	return callErr
}

// moduleLoader builds the host module table for require("plug").
func (i *Instance) moduleLoader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"name":            i.luaName,
		"set_data":        i.luaSetData,
		"get_data":        i.luaGetData,
		"updated_data":    i.luaUpdatedData,
		"register_mode":   i.luaRegisterMode,
		"map_keys":        i.luaMapKeys,
		"register_motion": i.luaRegisterMotion,
		"register_action": i.luaRegisterAction,
		"on":              i.luaOn,
		"add_hook":        i.luaAddHook,
		"panic":           i.luaPanic,
	})
	L.Push(mod)
	return 1
}

func (i *Instance) luaName(L *lua.LState) int {
	L.Push(lua.LString(i.api.Name()))
	return 1
}

func (i *Instance) luaSetData(L *lua.LState) int {
	key := L.CheckString(1)
	value := i.bridge.ToGoValue(L.Get(2))
	if err := i.api.SetData(key, value); err != nil {
		L.RaiseError("set_data: %s", err.Error())
	}
	return 0
}

func (i *Instance) luaGetData(L *lua.LState) int {
	key := L.CheckString(1)
	def := i.bridge.ToGoValue(L.Get(2))
	L.Push(i.bridge.ToLuaValue(i.api.GetData(key, def)))
	return 1
}

func (i *Instance) luaUpdatedData(L *lua.LState) int {
	i.api.UpdatedDataForRender(L.CheckInt(1))
	return 0
}

func (i *Instance) luaRegisterMode(L *lua.LState) int {
	tbl := L.CheckTable(1)

	md := mode.Metadata{}
	md.ID, _ = i.bridge.GetTableString(tbl, "id")
	md.Name, _ = i.bridge.GetTableString(tbl, "name")
	md.Description, _ = i.bridge.GetTableString(tbl, "description")
	md.HidesCursor, _ = i.bridge.GetTableBool(tbl, "hides_cursor")

	if err := i.api.RegisterMode(md); err != nil {
		L.RaiseError("register_mode: %s", err.Error())
	}
	return 0
}

func (i *Instance) luaMapKeys(L *lua.LState) int {
	modeID := L.CheckString(1)
	tbl := L.CheckTable(2)

	mappings := keymap.Mappings{}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, kok := k.(lua.LString)
		vs, vok := v.(lua.LString)
		if kok && vok {
			mappings[string(ks)] = string(vs)
		}
	})

	if err := i.api.RegisterDefaultMappings(modeID, mappings); err != nil {
		L.RaiseError("map_keys: %s", err.Error())
	}
	return 0
}

func (i *Instance) luaRegisterMotion(L *lua.LState) int {
	name := L.CheckString(1)
	description := L.CheckString(2)
	fn := L.CheckFunction(3)

	err := i.api.RegisterMotion(name, description, func(_ context.Context, args map[string]any) (any, error) {
		results, err := i.state.CallFunction(fn, i.bridge.ToLuaValue(args))
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, nil
		}
		return i.bridge.ToGoValue(results[0]), nil
	})
	if err != nil {
		L.RaiseError("register_motion: %s", err.Error())
	}
	return 0
}

func (i *Instance) luaRegisterAction(L *lua.LState) int {
	name := L.CheckString(1)
	description := L.CheckString(2)
	fn := L.CheckFunction(3)

	err := i.api.RegisterAction(name, description, func(_ context.Context, args map[string]any) error {
		_, err := i.state.CallFunction(fn, i.bridge.ToLuaValue(args))
		return err
	})
	if err != nil {
		L.RaiseError("register_action: %s", err.Error())
	}
	return 0
}

func (i *Instance) luaOn(L *lua.LState) int {
	target := i.checkTarget(L, 1)
	eventName := L.CheckString(2)
	fn := L.CheckFunction(3)

	_, err := i.api.On(target, eventName, func(_ context.Context, payload any) {
		// Listener failures don't propagate anywhere useful; drop them.
		i.state.CallFunction(fn, i.bridge.ToLuaValue(payload)) //nolint:errcheck
	})
	if err != nil {
		L.RaiseError("on: %s", err.Error())
	}
	return 0
}

func (i *Instance) luaAddHook(L *lua.LState) int {
	target := i.checkTarget(L, 1)
	eventName := L.CheckString(2)
	fn := L.CheckFunction(3)

	_, err := i.api.AddHook(target, eventName, func(value, payload any) any {
		results, err := i.state.CallFunction(fn, i.bridge.ToLuaValue(value), i.bridge.ToLuaValue(payload))
		if err != nil || len(results) == 0 {
			return value
		}
		return i.bridge.ToGoValue(results[0])
	})
	if err != nil {
		L.RaiseError("add_hook: %s", err.Error())
	}
	return 0
}

func (i *Instance) luaPanic(L *lua.LState) int {
	err := i.api.Panic()
	L.RaiseError("%s", err.Error())
	return 0
}

func (i *Instance) checkTarget(L *lua.LState, n int) plugin.EmitterTarget {
	name := L.CheckString(n)
	switch name {
	case "document":
		return plugin.TargetDocument
	case "session":
		return plugin.TargetSession
	default:
		L.ArgError(n, fmt.Sprintf("unknown emitter target %q", name))
		return 0 // unreachable
	}
}
