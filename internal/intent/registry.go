package intent

import (
	"fmt"
	"sync"
)

// Registry holds the registered intent handlers. Registration order is
// significant: when keywords of two handlers both match a message, the
// handler registered first wins.
type Registry struct {
	mu       sync.RWMutex
	handlers []Handler
	byName   map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Handler),
	}
}

// Register adds a handler. It returns an error if the intent name is
// already taken.
func (r *Registry) Register(h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := h.Name()
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("intent %q already registered", name)
	}

	r.handlers = append(r.handlers, h)
	r.byName[name] = h
	return nil
}

// Resolve returns the handler for an intent name.
func (r *Registry) Resolve(name string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIntent, name)
	}
	return h, nil
}

// Names returns the intent names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for _, h := range r.handlers {
		names = append(names, h.Name())
	}
	return names
}

// Handlers returns the handlers in registration order.
func (r *Registry) Handlers() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Handler, len(r.handlers))
	copy(out, r.handlers)
	return out
}
