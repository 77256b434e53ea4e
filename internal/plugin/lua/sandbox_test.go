package lua

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestSandboxRemovesChunkLoaders(t *testing.T) {
	s := NewState()
	defer s.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		if got := s.GetGlobal(name); got != lua.LNil {
			t.Errorf("global %s = %v, want nil", name, got)
		}
	}
}

func TestSandboxRequireWhitelist(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString(`local str = require("string")`); err != nil {
		t.Errorf("require(string) error = %v", err)
	}
	if err := s.DoString(`require("socket")`); err == nil {
		t.Error("require(socket) succeeded, want error")
	}
}

func TestSandboxGatesIOBehindCapability(t *testing.T) {
	s := NewState()
	defer s.Close()

	err := s.DoString(`require("io")`)
	if err == nil || !strings.Contains(err.Error(), "capability") {
		t.Errorf("require(io) error = %v, want capability error", err)
	}
}

func TestSandboxEnvCapability(t *testing.T) {
	t.Setenv("PLUGKIT_TEST_VAR", "granted")

	s := NewState()
	defer s.Close()

	if err := s.DoString(`os.getenv("PLUGKIT_TEST_VAR")`); err == nil {
		t.Error("os available without capability")
	}

	s.Sandbox().Grant(CapabilityEnv)
	err := s.DoString(`
		local v = os.getenv("PLUGKIT_TEST_VAR")
		if v ~= "granted" then error("got " .. tostring(v)) end
	`)
	if err != nil {
		t.Errorf("os.getenv after grant error = %v", err)
	}
}

func TestSandboxCheckCapability(t *testing.T) {
	s := NewState()
	defer s.Close()

	sb := s.Sandbox()
	if err := sb.CheckCapability(CapabilityFileRead); err == nil {
		t.Error("CheckCapability() = nil, want CapabilityError")
	}

	sb.Grant(CapabilityFileRead)
	if !sb.HasCapability(CapabilityFileRead) {
		t.Error("HasCapability() = false after Grant")
	}
	if err := sb.CheckCapability(CapabilityFileRead); err != nil {
		t.Errorf("CheckCapability() after grant = %v", err)
	}

	sb.Revoke(CapabilityFileRead)
	if sb.HasCapability(CapabilityFileRead) {
		t.Error("HasCapability() = true after Revoke")
	}
}

func TestStateClosedOperations(t *testing.T) {
	s := NewState()
	s.Close()

	if err := s.DoString(`local x = 1`); err != ErrStateClosed {
		t.Errorf("DoString() on closed state = %v, want ErrStateClosed", err)
	}
	if _, err := s.CallGlobal("enable"); err != ErrStateClosed {
		t.Errorf("CallGlobal() on closed state = %v, want ErrStateClosed", err)
	}
	if !s.IsClosed() {
		t.Error("IsClosed() = false")
	}
	// Second close is a no-op.
	if err := s.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestPreloadedModuleRequirable(t *testing.T) {
	s := NewState()
	defer s.Close()

	s.Preload("host", func(L *lua.LState) int {
		mod := L.NewTable()
		L.SetField(mod, "answer", lua.LNumber(42))
		L.Push(mod)
		return 1
	})

	err := s.DoString(`
		local host = require("host")
		if host.answer ~= 42 then error("bad answer") end
	`)
	if err != nil {
		t.Errorf("require preloaded module error = %v", err)
	}
}
