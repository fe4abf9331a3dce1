// Package registry provides the etcd-based implementation of the Registry
// interface for kdb+ clusters.
//
// etcd is a distributed key-value store that provides strong consistency
// (Raft protocol). It is used as a "distributed phonebook" for kdb+ hosts:
//
//	Key:   /kdbclient/{cluster}/{addr}
//	Value: JSON-encoded HostInstance
//
// Registration uses TTL-based leases: if a kdb+ process crashes, its lease
// expires and the entry is automatically removed — preventing "ghost" hosts
// from being handed out by the balancer.
package registry

import (
	"context"
	"encoding/json"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const etcdKeyPrefix = "/kdbclient/"

// opTimeout bounds each individual etcd round trip (grant, put, delete, get)
// so an unreachable etcd surfaces as an error instead of a hang. Watch and
// KeepAlive are long-lived by design and are not bounded by it.
const opTimeout = 5 * time.Second

// EtcdRegistry implements the Registry interface using etcd v3.
type EtcdRegistry struct {
	client *clientv3.Client // etcd client connection (thread-safe, shared across goroutines)
}

// NewEtcdRegistry creates a new registry connected to the given etcd endpoints.
func NewEtcdRegistry(endpoints []string) (*EtcdRegistry, error) {
	c, err := clientv3.New(clientv3.Config{
		Endpoints: endpoints,
	})
	if err != nil {
		return nil, err
	}
	return &EtcdRegistry{client: c}, nil
}

// Register adds a host instance to etcd with a TTL lease.
//
// Flow:
//  1. Create a lease with the given TTL (e.g., 10 seconds)
//  2. Put the key-value pair with the lease attached
//  3. Start KeepAlive to automatically renew the lease
//
// leaseID is a local variable, not stored on the struct, so that multiple
// kdb+ processes registering through one shared EtcdRegistry never race on
// it.
func (r *EtcdRegistry) Register(cluster string, instance HostInstance, ttl int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return err
	}

	val, err := json.Marshal(instance)
	if err != nil {
		return err
	}

	_, err = r.client.Put(ctx, etcdKeyPrefix+cluster+"/"+instance.Addr, string(val), clientv3.WithLease(lease.ID))
	if err != nil {
		return err
	}

	// KeepAlive must outlive the bounded op context: it renews the lease for
	// the life of the registration.
	ch, err := r.client.KeepAlive(context.Background(), lease.ID)
	if err != nil {
		return err
	}

	// Consume KeepAlive responses to prevent the channel from filling up.
	go func() {
		for range ch {
		}
	}()
	return nil
}

// Deregister removes a host instance from etcd. Called during graceful
// shutdown of a kdb+ process before it stops listening.
func (r *EtcdRegistry) Deregister(cluster string, addr string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	_, err := r.client.Delete(ctx, etcdKeyPrefix+cluster+"/"+addr)
	return err
}

// Watch monitors a cluster's key prefix in etcd and emits updated instance
// lists whenever changes occur (new registrations, deregistrations, lease
// expirations).
func (r *EtcdRegistry) Watch(cluster string) <-chan []HostInstance {
	ctx := context.Background()
	ch := make(chan []HostInstance, 1)
	prefix := etcdKeyPrefix + cluster + "/"

	go func() {
		watchChan := r.client.Watch(ctx, prefix, clientv3.WithPrefix())
		for range watchChan {
			// On any change, re-fetch the full instance list rather than
			// parsing individual watch events — simpler and always correct.
			instances, _ := r.Discover(cluster)
			ch <- instances
		}
	}()

	return ch
}

// Discover returns all currently registered instances for cluster by
// querying etcd with a key prefix.
func (r *EtcdRegistry) Discover(cluster string) ([]HostInstance, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	prefix := etcdKeyPrefix + cluster + "/"

	resp, err := r.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	instances := make([]HostInstance, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var instance HostInstance
		if err := json.Unmarshal(kv.Value, &instance); err != nil {
			continue // Skip malformed entries
		}
		instances = append(instances, instance)
	}

	return instances, nil
}
