// Package session ties a document to the session-scoped collaborators the
// plugin runtime hands out: the session emitter and render invalidation.
package session

import (
	"github.com/dshills/plugkit/internal/doc"
	"github.com/dshills/plugkit/internal/event"
)

// Session owns one document plus its own event emitter. Plugin managers are
// per-session; plugin state is never shared across sessions.
type Session struct {
	document *doc.Document
	emitter  *event.Emitter
}

// New creates a session for the given document. A nil document gets a fresh
// in-memory one.
func New(document *doc.Document) *Session {
	if document == nil {
		document = doc.New()
	}
	return &Session{
		document: document,
		emitter:  event.NewEmitter(),
	}
}

// Document returns the session's document.
func (s *Session) Document() *doc.Document {
	return s.document
}

// Emitter returns the session-scoped event emitter.
func (s *Session) Emitter() *event.Emitter {
	return s.emitter
}

// UpdatedDataForRender marks a row's derived presentation state stale so it
// is recomputed on the next render.
func (s *Session) UpdatedDataForRender(row int) {
	s.document.Cache().Invalidate(row)
}
