package plugin

import (
	"context"
	"errors"
	"testing"
)

func noopEnable(_ context.Context, _ *API) (any, error) {
	return nil, nil
}

func TestRegistryRegisterDefaults(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Definition{Name: "marks", Enable: noopEnable})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	def, ok := r.Get("marks")
	if !ok {
		t.Fatal("Get() ok = false after Register")
	}
	if def.Version != DefaultVersion {
		t.Errorf("Version = %d, want %d", def.Version, DefaultVersion)
	}
	if def.Author != DefaultAuthor {
		t.Errorf("Author = %q, want %q", def.Author, DefaultAuthor)
	}
	if def.Disable == nil {
		t.Error("Disable = nil, want default disable wrapper")
	}
}

func TestRegistryRegisterValidation(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(Definition{Enable: noopEnable}); err == nil {
		t.Error("Register() with empty name should return error")
	}
	if err := r.Register(Definition{Name: "marks"}); err == nil {
		t.Error("Register() with nil enable should return error")
	}
}

func TestRegistrySilentOverwrite(t *testing.T) {
	r := NewRegistry()

	r.Register(Definition{Name: "marks", Description: "first", Enable: noopEnable})
	if err := r.Register(Definition{Name: "marks", Description: "second", Enable: noopEnable}); err != nil {
		t.Fatalf("Register() overwrite error = %v", err)
	}

	def, _ := r.Get("marks")
	if def.Description != "second" {
		t.Errorf("Description = %q, want %q (overwrite)", def.Description, "second")
	}
	if len(r.Names()) != 1 {
		t.Errorf("Names() len = %d, want 1", len(r.Names()))
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{Name: "zeta", Enable: noopEnable})
	r.Register(Definition{Name: "alpha", Enable: noopEnable})
	r.Register(Definition{Name: "mid", Enable: noopEnable})

	names := r.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestRegistryAllReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{Name: "marks", Enable: noopEnable})

	all := r.All()
	delete(all, "marks")

	if !r.Has("marks") {
		t.Error("mutating All() result affected the registry")
	}
}

func TestDefaultDisableUnwindsOnceAlwaysFails(t *testing.T) {
	env, _ := testEnv(t)
	r := NewRegistry()
	r.Register(Definition{Name: "marks", Enable: noopEnable})
	def, _ := r.Get("marks")

	api := newAPI(env, nil, def)

	undone := 0
	api.push(func() { undone++ })
	api.push(func() { undone++ })

	ctx := context.Background()

	err := def.Disable(ctx, api, nil)
	if !errors.Is(err, ErrDisableUnsupported) {
		t.Errorf("first Disable error = %v, want ErrDisableUnsupported", err)
	}
	if undone != 2 {
		t.Errorf("undone = %d after first call, want 2", undone)
	}

	// Second invocation: no further unwinding, same failure.
	api.push(func() { undone++ })
	err = def.Disable(ctx, api, nil)
	if !errors.Is(err, ErrDisableUnsupported) {
		t.Errorf("second Disable error = %v, want ErrDisableUnsupported", err)
	}
	if undone != 2 {
		t.Errorf("undone = %d after second call, want 2 (at-most-once unwind)", undone)
	}
}
