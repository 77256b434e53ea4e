package doc

import (
	"fmt"
	"os"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Store is the persistent per-plugin key-value store. Each plugin gets its
// own JSON document keyed by plugin name; values within the document are
// addressed by key. When a path is configured every write is flushed to disk.
type Store struct {
	data cmap.ConcurrentMap[string, []byte]

	// saveMu serializes snapshot+write so flushes cannot interleave.
	saveMu sync.Mutex
	path   string
}

// NewStore creates an in-memory store.
func NewStore() *Store {
	return &Store{data: cmap.New[[]byte]()}
}

// OpenStore creates a store backed by the JSON file at path. A missing file
// is treated as an empty store.
func OpenStore(path string) (*Store, error) {
	s := NewStore()
	s.path = path

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening plugin store: %w", err)
	}

	parsed := gjson.ParseBytes(raw)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("plugin store %q: not a JSON object", path)
	}
	parsed.ForEach(func(key, value gjson.Result) bool {
		s.data.Set(key.String(), []byte(value.Raw))
		return true
	})

	return s, nil
}

// Set stores value under key in the named plugin's document.
func (s *Store) Set(plugin, key string, value any) error {
	var setErr error
	s.data.Upsert(plugin, nil, func(_ bool, current, _ []byte) []byte {
		if len(current) == 0 {
			current = []byte(`{}`)
		}
		updated, err := sjson.SetBytes(current, key, value)
		if err != nil {
			setErr = err
			return current
		}
		return updated
	})
	if setErr != nil {
		return fmt.Errorf("storing %s.%s: %w", plugin, key, setErr)
	}

	return s.flush()
}

// Get returns the value stored under key in the named plugin's document,
// or def if the key is absent.
func (s *Store) Get(plugin, key string, def any) any {
	raw, ok := s.data.Get(plugin)
	if !ok {
		return def
	}

	result := gjson.GetBytes(raw, key)
	if !result.Exists() {
		return def
	}
	return result.Value()
}

// Has reports whether the named plugin has a value stored under key.
func (s *Store) Has(plugin, key string) bool {
	raw, ok := s.data.Get(plugin)
	if !ok {
		return false
	}
	return gjson.GetBytes(raw, key).Exists()
}

// flush writes the full store to disk when a path is configured.
func (s *Store) flush() error {
	if s.path == "" {
		return nil
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	out := []byte(`{}`)
	for entry := range s.data.IterBuffered() {
		var err error
		out, err = sjson.SetRawBytes(out, escapePath(entry.Key), entry.Val)
		if err != nil {
			return fmt.Errorf("encoding plugin store: %w", err)
		}
	}

	if err := os.WriteFile(s.path, out, 0o644); err != nil {
		return fmt.Errorf("writing plugin store: %w", err)
	}
	return nil
}

// escapePath escapes sjson path syntax in a plugin name so dotted names stay
// top-level keys.
func escapePath(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '.', '*', '?', '\\', '|':
			out = append(out, '\\')
		}
		out = append(out, name[i])
	}
	return string(out)
}
