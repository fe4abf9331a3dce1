// Command kdbcli is a minimal interactive client for a kdb+ process: it
// reads query lines from stdin, sends each as a synchronous IPC request, and
// prints the decoded response.
//
// Two modes:
//
//	kdbcli -addr 127.0.0.1:5000 -user u -pass p
//	    dial a single host directly
//
//	kdbcli -registry http://127.0.0.1:2379 -cluster hdb
//	    discover hosts via etcd and balance queries round-robin
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"kdbclient/cluster"
	"kdbclient/conn"
	"kdbclient/loadbalance"
	"kdbclient/payload"
	"kdbclient/registry"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:5000", "kdb+ host to dial when no registry is configured")
	user := flag.String("user", "", "handshake user")
	pass := flag.String("pass", "", "handshake password")
	reg := flag.String("registry", "", "comma-separated etcd endpoints; enables cluster mode")
	clusterName := flag.String("cluster", "hdb", "logical cluster name to discover in cluster mode")
	flag.Parse()

	ctx := context.Background()
	query, shutdown, err := connect(ctx, *addr, *user, *pass, *reg, *clusterName)
	if err != nil {
		log.Fatal(err)
	}
	defer shutdown()

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("q)")
		if !sc.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == `\\` {
			return
		}

		v, err := query(ctx, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		// A decoded Error payload is a successful response carrying a
		// server-side signal, not a transport failure.
		if v.Kind == payload.KindError {
			fmt.Fprintln(os.Stderr, v)
			continue
		}
		fmt.Println(v)
	}
}

type queryFunc func(ctx context.Context, text string) (*payload.Value, error)

// connect wires up either a direct single-host connection or an etcd-backed
// cluster client, returning the query entry point and a shutdown hook.
func connect(ctx context.Context, addr, user, pass, regEndpoints, clusterName string) (queryFunc, func(), error) {
	if regEndpoints != "" {
		etcd, err := registry.NewEtcdRegistry(strings.Split(regEndpoints, ","))
		if err != nil {
			return nil, nil, fmt.Errorf("connect registry: %w", err)
		}
		client := cluster.NewClient(etcd, &loadbalance.RoundRobinBalancer{}, user, pass, cluster.DefaultOptions())
		query := func(ctx context.Context, text string) (*payload.Value, error) {
			return client.Query(ctx, clusterName, text)
		}
		return query, func() { client.Close() }, nil
	}

	c, err := conn.Dial(ctx, addr, user, pass)
	if err != nil {
		return nil, nil, err
	}
	return c.Query, func() { c.Close() }, nil
}
