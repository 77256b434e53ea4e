// Package doc provides the document collaborators the plugin runtime talks
// to: an event emitter, the per-plugin persistent store, and the derived-data
// row cache.
package doc

import (
	"github.com/dshills/plugkit/internal/event"
)

// Document bundles the document-scoped collaborators handed to plugins.
type Document struct {
	emitter *event.Emitter
	store   *Store
	cache   *Cache
}

// Option configures a Document.
type Option func(*Document)

// WithStore sets the backing plugin store.
func WithStore(s *Store) Option {
	return func(d *Document) {
		if s != nil {
			d.store = s
		}
	}
}

// New creates a document with an in-memory store unless one is supplied.
func New(opts ...Option) *Document {
	d := &Document{
		emitter: event.NewEmitter(),
		store:   NewStore(),
		cache:   NewCache(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Emitter returns the document event emitter.
func (d *Document) Emitter() *event.Emitter {
	return d.emitter
}

// Store returns the persistent per-plugin store.
func (d *Document) Store() *Store {
	return d.store
}

// Cache returns the derived-data row cache.
func (d *Document) Cache() *Cache {
	return d.cache
}

// SetPluginData stores a value in the named plugin's namespace.
func (d *Document) SetPluginData(plugin, key string, value any) error {
	return d.store.Set(plugin, key, value)
}

// GetPluginData reads a value from the named plugin's namespace, returning
// def when the key is absent.
func (d *Document) GetPluginData(plugin, key string, def any) any {
	return d.store.Get(plugin, key, def)
}
