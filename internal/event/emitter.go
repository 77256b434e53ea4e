// Package event provides the publish/subscribe primitive consumed by the
// plugin runtime: named-event listeners plus transform-style hooks.
package event

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Listener receives the payload of an emitted event.
type Listener func(ctx context.Context, payload any)

// Hook transforms a value derived from an event. Hooks registered for the
// same event are folded in registration order: each receives the previous
// hook's output.
type Hook func(value any, payload any) any

// Subscription identifies a registered listener so it can be removed.
type Subscription struct {
	ID    string
	Event string
}

// HookHandle identifies a registered hook so it can be removed.
type HookHandle struct {
	ID    string
	Event string
}

type listenerEntry struct {
	id string
	fn Listener
}

type hookEntry struct {
	id string
	fn Hook
}

// Emitter is a synchronous event bus. Listeners run on the emitting
// goroutine; panics in listeners are recovered so one bad listener cannot
// take down the host.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[string][]listenerEntry
	hooks     map[string][]hookEntry
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{
		listeners: make(map[string][]listenerEntry),
		hooks:     make(map[string][]hookEntry),
	}
}

// On registers a listener for the named event.
func (e *Emitter) On(event string, fn Listener) *Subscription {
	if fn == nil {
		return &Subscription{ID: "", Event: event}
	}

	id := uuid.NewString()

	e.mu.Lock()
	e.listeners[event] = append(e.listeners[event], listenerEntry{id: id, fn: fn})
	e.mu.Unlock()

	return &Subscription{ID: id, Event: event}
}

// Off removes a previously registered listener.
// Returns true if the subscription existed.
func (e *Emitter) Off(sub *Subscription) bool {
	if sub == nil || sub.ID == "" {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.listeners[sub.Event]
	for i, entry := range entries {
		if entry.id == sub.ID {
			e.listeners[sub.Event] = append(entries[:i], entries[i+1:]...)
			if len(e.listeners[sub.Event]) == 0 {
				delete(e.listeners, sub.Event)
			}
			return true
		}
	}
	return false
}

// Emit delivers payload to every listener of the named event, in
// registration order.
func (e *Emitter) Emit(ctx context.Context, event string, payload any) {
	// Copy under lock, invoke outside it.
	e.mu.RLock()
	entries := make([]listenerEntry, len(e.listeners[event]))
	copy(entries, e.listeners[event])
	e.mu.RUnlock()

	for _, entry := range entries {
		func() {
			defer func() {
				recover() // Ignore panics from listeners
			}()
			entry.fn(ctx, payload)
		}()
	}
}

// AddHook registers a transform hook for the named event.
func (e *Emitter) AddHook(event string, fn Hook) *HookHandle {
	if fn == nil {
		return &HookHandle{ID: "", Event: event}
	}

	id := uuid.NewString()

	e.mu.Lock()
	e.hooks[event] = append(e.hooks[event], hookEntry{id: id, fn: fn})
	e.mu.Unlock()

	return &HookHandle{ID: id, Event: event}
}

// RemoveHook removes a previously registered hook.
// Returns true if the hook existed.
func (e *Emitter) RemoveHook(handle *HookHandle) bool {
	if handle == nil || handle.ID == "" {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.hooks[handle.Event]
	for i, entry := range entries {
		if entry.id == handle.ID {
			e.hooks[handle.Event] = append(entries[:i], entries[i+1:]...)
			if len(e.hooks[handle.Event]) == 0 {
				delete(e.hooks, handle.Event)
			}
			return true
		}
	}
	return false
}

// Transform folds value through every hook registered for the named event.
func (e *Emitter) Transform(event string, value any, payload any) any {
	e.mu.RLock()
	entries := make([]hookEntry, len(e.hooks[event]))
	copy(entries, e.hooks[event])
	e.mu.RUnlock()

	for _, entry := range entries {
		value = entry.fn(value, payload)
	}
	return value
}

// ListenerCount returns the number of listeners for the named event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[event])
}

// HookCount returns the number of hooks for the named event.
func (e *Emitter) HookCount(event string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.hooks[event])
}
