package lua

import (
	"os"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// Capability is a permission a host may grant to a script.
type Capability string

const (
	CapabilityFileRead Capability = "filesystem.read"
	CapabilityEnv      Capability = "env.read"
	CapabilityUnsafe   Capability = "unsafe" // full Lua stdlib
)

// Sandbox restricts what a script state can reach: dangerous base functions
// are removed, require only resolves whitelisted built-ins, host-preloaded
// modules and capability-gated libraries.
type Sandbox struct {
	L *lua.LState

	instructionLimit int64
	instructionCount int64

	capabilities map[Capability]bool
	preloaded    map[string]bool
}

// NewSandbox creates a sandbox for the given state.
func NewSandbox(L *lua.LState, instructionLimit int64) *Sandbox {
	return &Sandbox{
		L:                L,
		instructionLimit: instructionLimit,
		capabilities:     make(map[Capability]bool),
		preloaded:        make(map[string]bool),
	}
}

// Install applies the restrictions. Call once, before running any script.
func (s *Sandbox) Install() {
	// Loading arbitrary chunks would bypass every other restriction.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.installSafeRequire()
}

// Allow whitelists a host-preloaded module name for require.
func (s *Sandbox) Allow(name string) {
	s.preloaded[name] = true
}

// installSafeRequire replaces require with a whitelist version and clears
// package.path/cpath so nothing loads from disk.
func (s *Sandbox) installSafeRequire() {
	if pkgTable, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkgTable, "path", lua.LString(""))
		s.L.SetField(pkgTable, "cpath", lua.LString(""))
	}

	safeModules := map[string]bool{
		"string": true,
		"table":  true,
		"math":   true,
	}

	originalRequire := s.L.GetGlobal("require")

	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		modName := L.CheckString(1)

		allowed := safeModules[modName] || s.preloaded[modName]
		if !allowed {
			switch modName {
			case "io":
				if !s.capabilities[CapabilityFileRead] {
					L.RaiseError("module 'io' requires the %s capability", CapabilityFileRead)
				}
				allowed = true
			case "os":
				if !s.capabilities[CapabilityEnv] {
					L.RaiseError("module 'os' requires the %s capability", CapabilityEnv)
				}
				allowed = true
			case "debug":
				if !s.capabilities[CapabilityUnsafe] {
					L.RaiseError("module 'debug' requires the %s capability", CapabilityUnsafe)
				}
				allowed = true
			}
		}
		if !allowed {
			L.RaiseError("module %q is not available", modName)
			return 0 // unreachable
		}

		L.Push(originalRequire)
		L.Push(lua.LString(modName))
		L.Call(1, 1)
		return 1
	}))
}

// Grant enables a capability and injects its library.
func (s *Sandbox) Grant(cap Capability) {
	s.capabilities[cap] = true

	switch cap {
	case CapabilityEnv:
		s.injectEnvAPI()
	case CapabilityUnsafe:
		lua.OpenIo(s.L)
		lua.OpenOs(s.L)
		lua.OpenDebug(s.L)
	}
}

// Revoke disables a capability. Already-injected libraries stay loaded;
// only future require checks are affected.
func (s *Sandbox) Revoke(cap Capability) {
	delete(s.capabilities, cap)
}

// HasCapability returns true if the capability is granted.
func (s *Sandbox) HasCapability(cap Capability) bool {
	return s.capabilities[cap]
}

// CheckCapability returns a CapabilityError if the capability is missing.
func (s *Sandbox) CheckCapability(cap Capability) error {
	if !s.capabilities[cap] {
		return &CapabilityError{Capability: cap}
	}
	return nil
}

// injectEnvAPI exposes a minimal os table with environment reads only.
func (s *Sandbox) injectEnvAPI() {
	osMod := s.L.NewTable()
	s.L.SetField(osMod, "getenv", s.L.NewFunction(func(L *lua.LState) int {
		value := os.Getenv(L.CheckString(1))
		if value == "" {
			L.Push(lua.LNil)
		} else {
			L.Push(lua.LString(value))
		}
		return 1
	}))
	s.L.SetGlobal("os", osMod)
}

// ResetInstructionCount resets the instruction counter.
func (s *Sandbox) ResetInstructionCount() {
	atomic.StoreInt64(&s.instructionCount, 0)
}

// InstructionCount returns the current instruction count.
func (s *Sandbox) InstructionCount() int64 {
	return atomic.LoadInt64(&s.instructionCount)
}

// IncrementInstructions adds to the count and reports whether the limit was
// exceeded. A limit of zero disables the check.
func (s *Sandbox) IncrementInstructions(n int64) bool {
	if s.instructionLimit <= 0 {
		return false
	}
	return atomic.AddInt64(&s.instructionCount, n) > s.instructionLimit
}
