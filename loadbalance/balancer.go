// Package loadbalance provides load balancing strategies for distributing
// kdb+ queries across the hosts a cluster resolves to.
//
// Three strategies are implemented:
//   - RoundRobin:      stateless queries, equal-capacity hosts
//   - WeightedRandom:  heterogeneous hosts (different CPU/memory)
//   - ConsistentHash:  queries keyed on a table/namespace, so repeated
//     queries against the same data land on the same host (cache affinity)
package loadbalance

import "kdbclient/registry"

// Balancer is the interface for load balancing strategies.
// The client calls Pick() before each query to select a target host.
type Balancer interface {
	// Pick selects one instance from the available list.
	// Called on every query — must be goroutine-safe.
	Pick(instances []registry.HostInstance) (*registry.HostInstance, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}
