package lua

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestBridgeScalars(t *testing.T) {
	s := NewState()
	defer s.Close()
	b := NewBridge(s.L)

	if got := b.ToGoValue(lua.LString("hi")); got != "hi" {
		t.Errorf("string = %v", got)
	}
	if got := b.ToGoValue(lua.LNumber(3)); got != int64(3) {
		t.Errorf("integral number = %v (%T), want int64", got, got)
	}
	if got := b.ToGoValue(lua.LNumber(3.5)); got != 3.5 {
		t.Errorf("fractional number = %v", got)
	}
	if got := b.ToGoValue(lua.LTrue); got != true {
		t.Errorf("bool = %v", got)
	}
	if got := b.ToGoValue(lua.LNil); got != nil {
		t.Errorf("nil = %v", got)
	}
}

func TestBridgeArrayTable(t *testing.T) {
	s := NewState()
	defer s.Close()
	b := NewBridge(s.L)

	tbl := s.L.NewTable()
	tbl.RawSetInt(1, lua.LString("a"))
	tbl.RawSetInt(2, lua.LString("b"))

	got, ok := b.ToGoValue(tbl).([]any)
	if !ok {
		t.Fatalf("contiguous table = %T, want []any", b.ToGoValue(tbl))
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("array = %v", got)
	}
}

func TestBridgeMapTable(t *testing.T) {
	s := NewState()
	defer s.Close()
	b := NewBridge(s.L)

	tbl := s.L.NewTable()
	tbl.RawSetString("name", lua.LString("marks"))
	tbl.RawSetString("count", lua.LNumber(2))

	got, ok := b.ToGoValue(tbl).(map[string]any)
	if !ok {
		t.Fatalf("keyed table = %T, want map[string]any", b.ToGoValue(tbl))
	}
	if got["name"] != "marks" || got["count"] != int64(2) {
		t.Errorf("map = %v", got)
	}
}

func TestBridgeCircularTable(t *testing.T) {
	s := NewState()
	defer s.Close()
	b := NewBridge(s.L)

	tbl := s.L.NewTable()
	tbl.RawSetString("self", tbl)

	got, ok := b.ToGoValue(tbl).(map[string]any)
	if !ok {
		t.Fatal("circular table did not convert to map")
	}
	if got["self"] != nil {
		t.Errorf("cycle = %v, want nil", got["self"])
	}
}

func TestBridgeToLuaRoundTrip(t *testing.T) {
	s := NewState()
	defer s.Close()
	b := NewBridge(s.L)

	in := map[string]any{
		"flag":  true,
		"count": int64(4),
		"items": []any{"x", "y"},
	}
	out, ok := b.ToGoValue(b.ToLuaValue(in)).(map[string]any)
	if !ok {
		t.Fatal("round trip did not produce a map")
	}
	if out["flag"] != true || out["count"] != int64(4) {
		t.Errorf("round trip = %v", out)
	}
	items, ok := out["items"].([]any)
	if !ok || len(items) != 2 || items[0] != "x" {
		t.Errorf("items = %v", out["items"])
	}
}

func TestBridgeTableFieldHelpers(t *testing.T) {
	s := NewState()
	defer s.Close()
	b := NewBridge(s.L)

	tbl := s.L.NewTable()
	tbl.RawSetString("id", lua.LString("sketch"))
	tbl.RawSetString("level", lua.LNumber(3))
	tbl.RawSetString("on", lua.LTrue)

	if got, ok := b.GetTableString(tbl, "id"); !ok || got != "sketch" {
		t.Errorf("GetTableString = %q, %v", got, ok)
	}
	if got, ok := b.GetTableInt(tbl, "level"); !ok || got != 3 {
		t.Errorf("GetTableInt = %d, %v", got, ok)
	}
	if got, ok := b.GetTableBool(tbl, "on"); !ok || !got {
		t.Errorf("GetTableBool = %v, %v", got, ok)
	}
	if _, ok := b.GetTableString(tbl, "missing"); ok {
		t.Error("GetTableString(missing) ok = true")
	}
}
