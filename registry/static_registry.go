package registry

import "sync"

// StaticRegistry is an in-memory Registry for single-host deployments and
// tests that don't want a live etcd dependency. Registrations are held for
// the life of the process; ttl is accepted for interface compatibility but
// not enforced — nothing expires a StaticRegistry entry but an explicit
// Deregister.
type StaticRegistry struct {
	mu        sync.Mutex
	instances map[string][]HostInstance
}

// NewStaticRegistry creates an empty in-memory registry.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{instances: make(map[string][]HostInstance)}
}

func (r *StaticRegistry) Register(cluster string, instance HostInstance, ttl int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.instances[cluster] {
		if existing.Addr == instance.Addr {
			r.instances[cluster][i] = instance
			return nil
		}
	}
	r.instances[cluster] = append(r.instances[cluster], instance)
	return nil
}

func (r *StaticRegistry) Deregister(cluster string, addr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.instances[cluster][:0]
	for _, existing := range r.instances[cluster] {
		if existing.Addr != addr {
			kept = append(kept, existing)
		}
	}
	r.instances[cluster] = kept
	return nil
}

func (r *StaticRegistry) Discover(cluster string) ([]HostInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]HostInstance, len(r.instances[cluster]))
	copy(out, r.instances[cluster])
	return out, nil
}

// Watch returns a channel that never emits: a StaticRegistry's instance
// list only changes via explicit Register/Deregister calls, which callers
// already control directly, so there is nothing to push asynchronously.
func (r *StaticRegistry) Watch(cluster string) <-chan []HostInstance {
	return make(chan []HostInstance)
}
