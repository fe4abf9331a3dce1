// Package cluster implements a kdb+ client with service discovery, load
// balancing, and a shared connection pool.
//
// Call flow:
//
//	Query(ctx, "hdb", "select from trade")
//	  → Registry.Discover("hdb")      → get host list from etcd (or static)
//	  → Balancer.Pick/PickKey(hosts)  → select one address
//	  → getConn(addr)                 → get-or-dial a pooled conn.Conn
//	  → middleware chain               → logging → rate limit → retry → timeout
//	  → conn.Conn.Query                → send request, decode response
package cluster

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"kdbclient/conn"
	"kdbclient/loadbalance"
	"kdbclient/middleware"
	"kdbclient/payload"
	"kdbclient/registry"
)

// Client manages the full query lifecycle: discovery → balancing →
// connection pool → middleware chain → conn.Conn.Query.
type Client struct {
	registry registry.Registry   // Service discovery (etcd or static)
	balancer loadbalance.Balancer // Load balancing strategy
	user     string
	pass     string

	conns map[string]*conn.Conn // One pooled Conn per discovered host address
	mu    sync.Mutex            // Protects conns (not the Conns themselves)

	handler middleware.HandlerFunc // Terminal handler wrapped in the middleware chain
}

// Options configures the middleware chain wrapped around every query.
type Options struct {
	MaxRetries      int
	RetryBaseDelay  time.Duration
	RateLimitPerSec float64
	RateLimitBurst  int
	Timeout         time.Duration
}

// DefaultOptions returns conservative defaults: 3 retries with a 50ms base
// backoff, a 50 query/sec rate limit with a burst of 10, and a 30s timeout.
func DefaultOptions() Options {
	return Options{
		MaxRetries:      3,
		RetryBaseDelay:  50 * time.Millisecond,
		RateLimitPerSec: 50,
		RateLimitBurst:  10,
		Timeout:         30 * time.Second,
	}
}

// NewClient creates a cluster client with the given registry, load balancer,
// and per-host handshake credentials.
func NewClient(reg registry.Registry, bal loadbalance.Balancer, user, pass string, opts Options) *Client {
	c := &Client{
		registry: reg,
		balancer: bal,
		user:     user,
		pass:     pass,
		conns:    make(map[string]*conn.Conn),
	}

	terminal := func(ctx context.Context, req *middleware.QueryRequest) *middleware.QueryResult {
		hc, err := c.getConn(ctx, req.Cluster, req.Text)
		if err != nil {
			return &middleware.QueryResult{Error: err.Error()}
		}
		v, err := hc.Query(ctx, req.Text)
		if err != nil {
			return &middleware.QueryResult{Error: err.Error()}
		}
		return &middleware.QueryResult{Value: v}
	}

	chain := middleware.Chain(
		middleware.LoggingMiddleware(),
		middleware.RateLimitMiddleware(opts.RateLimitPerSec, opts.RateLimitBurst),
		middleware.RetryMiddleware(opts.MaxRetries, opts.RetryBaseDelay),
		middleware.TimeOutMiddleware(opts.Timeout),
	)
	c.handler = chain(terminal)
	return c
}

// firstSymbolToken extracts the first identifier-like token from a q query
// string, used as the consistent-hash key so repeated queries against the
// same table land on the same host. For "select from trade where sym=`AAPL"
// this returns "trade".
func firstSymbolToken(text string) string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n'
	})
	for _, f := range fields {
		lower := strings.ToLower(f)
		if lower == "select" || lower == "from" || lower == "update" || lower == "delete" || lower == "exec" {
			continue
		}
		return f
	}
	return text
}

// pick selects a host address for cluster, using PickKey when the balancer
// is consistent-hash aware so cache affinity actually takes effect.
func (c *Client) pick(clusterName, queryText string) (string, error) {
	instances, err := c.registry.Discover(clusterName)
	if err != nil {
		return "", fmt.Errorf("cluster: discover %s: %w", clusterName, err)
	}
	if len(instances) == 0 {
		return "", fmt.Errorf("cluster: no hosts registered for %s", clusterName)
	}

	if ch, ok := c.balancer.(*loadbalance.ConsistentHashBalancer); ok {
		inst, err := ch.PickKey(instances, firstSymbolToken(queryText))
		if err != nil {
			return "", err
		}
		return inst.Addr, nil
	}

	inst, err := c.balancer.Pick(instances)
	if err != nil {
		return "", err
	}
	return inst.Addr, nil
}

// getConn returns a pooled connection to the host selected for cluster and
// queryText, dialing and handshaking on first use for that address.
func (c *Client) getConn(ctx context.Context, clusterName, queryText string) (*conn.Conn, error) {
	addr, err := c.pick(clusterName, queryText)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	hc, ok := c.conns[addr]
	c.mu.Unlock()
	if ok {
		return hc, nil
	}

	hc, err = conn.Dial(ctx, addr, c.user, c.pass)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if existing, ok := c.conns[addr]; ok {
		c.mu.Unlock()
		hc.Close()
		return existing, nil
	}
	c.conns[addr] = hc
	c.mu.Unlock()
	return hc, nil
}

// Query discovers hosts for clusterName, balances queryText across them,
// and runs the query through the logging/rate-limit/retry/timeout chain.
func (c *Client) Query(ctx context.Context, clusterName, queryText string) (*payload.Value, error) {
	req := &middleware.QueryRequest{Cluster: clusterName, Text: queryText}
	result := c.handler(ctx, req)
	if result.Error != "" {
		return nil, fmt.Errorf("cluster: query %s: %s", clusterName, result.Error)
	}
	return result.Value, nil
}

// Close closes every pooled connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for addr, hc := range c.conns {
		if err := hc.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("cluster: close %s: %w", addr, err)
		}
	}
	return firstErr
}
