package condvar

// Registry is a named directory of Conds, for introspection/debugging
// tooling (listing what a process is waiting on). It is not part of the
// wait/signal protocol; it exists so a process with many Conds (see
// elastic.Buf and workerpool.Pool) can be inspected by name, guarded by
// RWMutex rather than a plain Mutex since lookups vastly outnumber
// registrations in practice.
type Registry struct {
	mu    *RWMutex
	conds map[string]*Cond
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{mu: NewRWMutex(), conds: make(map[string]*Cond)}
}

// Register associates name with c, replacing any previous registration.
func (r *Registry) Register(name string, c *Cond) {
	r.mu.Lock()
	r.conds[name] = c
	r.mu.Unlock()
}

// Unregister removes name, if present.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.conds, name)
	r.mu.Unlock()
}

// Lookup returns the Cond registered under name, if any.
func (r *Registry) Lookup(name string) (*Cond, bool) {
	r.mu.RLock()
	c, ok := r.conds[name]
	r.mu.RUnlock()
	return c, ok
}

// Names returns a snapshot of the currently registered names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.conds))
	for name := range r.conds {
		names = append(names, name)
	}
	return names
}
