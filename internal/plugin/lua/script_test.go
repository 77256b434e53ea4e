package lua

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/plugkit/internal/doc"
	"github.com/dshills/plugkit/internal/input/keymap"
	"github.com/dshills/plugkit/internal/input/mode"
	"github.com/dshills/plugkit/internal/plugin"
	"github.com/dshills/plugkit/internal/session"
)

func testHost(t *testing.T) (*plugin.Manager, *plugin.Registry, plugin.Env) {
	t.Helper()

	env := plugin.Env{
		Session:  session.New(doc.New()),
		Modes:    mode.NewRegistry(),
		Defaults: keymap.NewDefaults(),
		KeyDefs:  keymap.NewDefinitions(),
	}
	registry := plugin.NewRegistry()
	return plugin.NewManager(registry, env), registry, env
}

func writeScript(t *testing.T, name, code string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestScriptEnableDisableRoundTrip(t *testing.T) {
	m, registry, env := testHost(t)

	path := writeScript(t, "marks.lua", `
local plug = require("plug")

function enable()
	plug.set_data("greeting", "hello")
	plug.register_action("marks.set", "set a mark", function(args)
		plug.set_data("last", "set")
	end)
	return { ready = true }
end

function disable()
	plug.set_data("greeting", "goodbye")
end
`)

	if err := registry.Register(NewScript("marks", path).Definition()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	ctx := context.Background()
	if err := m.Enable(ctx, "marks"); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	if got := m.GetStatus("marks"); got != plugin.StatusEnabled {
		t.Fatalf("GetStatus() = %v, want %v", got, plugin.StatusEnabled)
	}

	value, ok := m.Value("marks")
	if !ok {
		t.Fatal("Value() missing after enable")
	}
	inst := value.(*Instance)
	ret, ok := inst.Value.(map[string]any)
	if !ok || ret["ready"] != true {
		t.Errorf("enable() return = %v, want {ready=true}", inst.Value)
	}

	document := env.Session.Document()
	if got := document.GetPluginData("marks", "greeting", ""); got != "hello" {
		t.Errorf("set_data value = %v, want hello", got)
	}

	action, ok := env.KeyDefs.Action("marks.set")
	if !ok {
		t.Fatal("action marks.set not registered")
	}
	if err := action.Fn(ctx, nil); err != nil {
		t.Fatalf("action call error = %v", err)
	}
	if got := document.GetPluginData("marks", "last", ""); got != "set" {
		t.Errorf("action side effect = %v, want set", got)
	}

	if err := m.Disable(ctx, "marks"); err != nil {
		t.Fatalf("Disable() error = %v", err)
	}
	if got := document.GetPluginData("marks", "greeting", ""); got != "goodbye" {
		t.Errorf("disable() did not run: greeting = %v", got)
	}
	if _, ok := env.KeyDefs.Action("marks.set"); ok {
		t.Error("action marks.set still registered after disable")
	}
	if !inst.state.IsClosed() {
		t.Error("lua state not closed after disable")
	}
}

func TestScriptWithoutDisableStillUnwinds(t *testing.T) {
	m, registry, env := testHost(t)

	path := writeScript(t, "spell.lua", `
local plug = require("plug")

function enable()
	plug.register_motion("spell.next", "next misspelling", function(args)
		return 7
	end)
end
`)

	registry.Register(NewScript("spell", path).Definition())

	ctx := context.Background()
	if err := m.Enable(ctx, "spell"); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	motion, ok := env.KeyDefs.Motion("spell.next")
	if !ok {
		t.Fatal("motion not registered")
	}
	result, err := motion.Fn(ctx, nil)
	if err != nil {
		t.Fatalf("motion call error = %v", err)
	}
	if result != int64(7) {
		t.Errorf("motion result = %v (%T), want 7", result, result)
	}

	if err := m.Disable(ctx, "spell"); err != nil {
		t.Fatalf("Disable() error = %v", err)
	}
	if _, ok := env.KeyDefs.Motion("spell.next"); ok {
		t.Error("motion still registered after disable")
	}
}

func TestScriptModeAndMappings(t *testing.T) {
	m, registry, env := testHost(t)

	path := writeScript(t, "sketch.lua", `
local plug = require("plug")

function enable()
	plug.register_mode({ id = "sketch", name = "Sketch", hides_cursor = true })
	plug.map_keys("sketch", { gd = "sketch.draw", ge = "sketch.erase" })
end
`)

	registry.Register(NewScript("sketch", path).Definition())

	if err := m.Enable(context.Background(), "sketch"); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}

	md, ok := env.Modes.Get("sketch")
	if !ok {
		t.Fatal("mode sketch not registered")
	}
	if !md.HidesCursor || md.Name != "Sketch" {
		t.Errorf("mode metadata = %+v", md)
	}
	if got, ok := env.Defaults.Lookup("sketch", "gd"); !ok || got != "sketch.draw" {
		t.Errorf("mapping gd = %q, %v", got, ok)
	}
}

func TestScriptListener(t *testing.T) {
	m, registry, env := testHost(t)

	path := writeScript(t, "watch.lua", `
local plug = require("plug")

function enable()
	plug.on("document", "change", function(payload)
		plug.set_data("seen", payload)
	end)
end
`)

	registry.Register(NewScript("watch", path).Definition())

	ctx := context.Background()
	if err := m.Enable(ctx, "watch"); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}

	env.Session.Document().Emitter().Emit(ctx, "change", "edit-1")
	if got := env.Session.Document().GetPluginData("watch", "seen", ""); got != "edit-1" {
		t.Errorf("listener payload = %v, want edit-1", got)
	}
}

func TestScriptMissingEnable(t *testing.T) {
	m, registry, _ := testHost(t)

	path := writeScript(t, "broken.lua", `local x = 1`)
	registry.Register(NewScript("broken", path).Definition())

	err := m.Enable(context.Background(), "broken")
	if !errors.Is(err, ErrNoEnable) {
		t.Errorf("Enable() error = %v, want ErrNoEnable", err)
	}
}

func TestScriptLoadError(t *testing.T) {
	m, registry, _ := testHost(t)

	path := writeScript(t, "syntax.lua", `function enable( oops`)
	registry.Register(NewScript("syntax", path).Definition())

	if err := m.Enable(context.Background(), "syntax"); err == nil {
		t.Error("Enable() error = nil, want syntax error")
	}
}

func TestScriptEnableFailurePropagates(t *testing.T) {
	m, registry, _ := testHost(t)

	path := writeScript(t, "angry.lua", `
function enable()
	error("nope")
end
`)
	registry.Register(NewScript("angry", path).Definition())

	if err := m.Enable(context.Background(), "angry"); err == nil {
		t.Error("Enable() error = nil, want script error")
	}
}
