package appctx

import "sync"

type entry struct {
	name  string
	svc   Service
	state State
}

// registry keeps services in mount order.
type registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
}

func newRegistry() *registry {
	return &registry{
		entries: make(map[string]*entry),
	}
}

func (r *registry) add(name string, svc Service) (*entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; ok {
		return nil, false
	}
	e := &entry{name: name, svc: svc, state: StateUnmounted}
	r.entries[name] = e
	r.order = append(r.order, name)
	return e, true
}

func (r *registry) remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *registry) get(name string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

func (r *registry) setState(e *entry, s State) {
	r.mu.Lock()
	e.state = s
	r.mu.Unlock()
}

func (r *registry) stateOf(e *entry) State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return e.state
}

// names returns service names in mount order.
func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
