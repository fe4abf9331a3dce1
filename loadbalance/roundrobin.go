package loadbalance

import (
	"fmt"
	"sync/atomic"

	"kdbclient/registry"
)

// RoundRobinBalancer distributes queries evenly across all hosts in order.
// Uses an atomic counter for lock-free, goroutine-safe operation.
//
// Best for: stateless queries where all hosts have similar capacity.
type RoundRobinBalancer struct {
	counter int64 // Atomic counter, incremented on each Pick()
}

// Pick selects the next instance in round-robin order.
// The atomic counter ensures even distribution without locks.
func (b *RoundRobinBalancer) Pick(instances []registry.HostInstance) (*registry.HostInstance, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("no instances available")
	}
	index := atomic.AddInt64(&b.counter, 1) % int64(len(instances))
	return &instances[index], nil
}

func (b *RoundRobinBalancer) Name() string {
	return "RoundRobin"
}
