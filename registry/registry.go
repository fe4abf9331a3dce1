// Package registry defines the service discovery interface and data types
// used to locate kdb+ host processes for a logical cluster name.
//
// Service discovery solves "how does the client find the kdb+ process?".
// Instead of hardcoding host:port, kdb+ processes register themselves in a
// central registry (etcd), and clients query the registry for the current
// instance list before balancing a query across them.
package registry

// HostInstance represents a single reachable kdb+ process.
type HostInstance struct {
	Addr   string // Network address, e.g. "127.0.0.1:5001"
	Weight int    // Weight for load balancing (higher = more traffic)
	Region string // Deployment region/zone, informational
}

// Registry is the interface for kdb+ host registration and discovery.
// Implementations include EtcdRegistry (production) and StaticRegistry
// (single-host deployments and tests).
type Registry interface {
	// Register adds a host instance to the registry for cluster with a TTL
	// lease. The instance is automatically removed if KeepAlive stops (the
	// process crashed or was killed).
	Register(cluster string, instance HostInstance, ttl int64) error

	// Deregister removes a host instance from the registry. Called during
	// graceful shutdown before the process exits.
	Deregister(cluster string, addr string) error

	// Discover returns all currently registered instances for cluster.
	Discover(cluster string) ([]HostInstance, error)

	// Watch returns a channel that emits updated instance lists whenever
	// cluster's instances change (new registrations, deregistrations, lease
	// expirations).
	Watch(cluster string) <-chan []HostInstance
}
