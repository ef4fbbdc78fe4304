package huddle

import (
	"sync"

	"github.com/google/uuid"
)

type registryEntry[H any] struct {
	ID      uuid.UUID
	Handler H
}

// registry maps subscription ids to handlers. It is safe to modify while a dispatch pass is running.
type registry[H any] struct {
	mu       sync.RWMutex
	handlers map[uuid.UUID]H
}

func newRegistry[H any]() *registry[H] {
	return &registry[H]{
		handlers: map[uuid.UUID]H{},
	}
}

func (r *registry[H]) Add(handler H) uuid.UUID {
	id := uuid.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[id] = handler
	return id
}

func (r *registry[H]) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[id]; !exists {
		return false
	}
	delete(r.handlers, id)
	return true
}

func (r *registry[H]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handlers)
}

func (r *registry[H]) contains(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.handlers[id]
	return exists
}

func (r *registry[H]) snapshot() []registryEntry[H] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]registryEntry[H], 0, len(r.handlers))
	for id, h := range r.handlers {
		entries = append(entries, registryEntry[H]{ID: id, Handler: h})
	}
	return entries
}

// Each calls fn for every handler registered when the pass starts and still registered when its turn comes.
// Lock is not held while fn runs so handlers may add and remove entries.
// Remove called from another goroutine during a pass may still be followed by one call to the removed
// handler if its turn has already come.
func (r *registry[H]) Each(fn func(h H)) {
	for _, e := range r.snapshot() {
		if !r.contains(e.ID) {
			continue
		}
		fn(e.Handler)
	}
}
