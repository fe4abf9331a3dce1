package cluster

import (
	"context"
	"net"
	"testing"
	"time"

	"kdbclient/loadbalance"
	"kdbclient/payload"
	"kdbclient/protocol"
	"kdbclient/registry"
)

// startFakeHost starts a minimal in-process kdb+ host: it accepts one
// handshake, then answers every subsequent query with reply regardless of
// the query text. A real listener exercises the full dial/handshake/framing
// path instead of mocking the transport.
func startFakeHost(t *testing.T, reply *payload.Value) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	body, err := payload.Encode(reply)
	if err != nil {
		t.Fatalf("encode reply: %v", err)
	}
	respMsg := protocol.EncodeRequest(body)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: read "<user>:<pass>\x03\x00", write back one capability byte.
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			if n > 0 && buf[n-1] == 0x00 {
				break
			}
		}
		if _, err := conn.Write([]byte{0x03}); err != nil {
			return
		}

		for {
			_, _, err := protocol.ReadMessage(conn)
			if err != nil {
				return
			}
			if _, err := conn.Write(respMsg); err != nil {
				return
			}
		}
	}()

	return ln.Addr().String()
}

func TestClientQueryWithStaticRegistryRoundRobin(t *testing.T) {
	want := payload.NewCharVector(payload.AttrNone, "ok")
	addr := startFakeHost(t, want)

	reg := registry.NewStaticRegistry()
	if err := reg.Register("hdb", registry.HostInstance{Addr: addr, Weight: 1}, 10); err != nil {
		t.Fatal(err)
	}

	client := NewClient(reg, &loadbalance.RoundRobinBalancer{}, "user", "pass", DefaultOptions())
	defer client.Close()

	got, err := client.Query(context.Background(), "hdb", "select from trade")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Fatalf("expect %+v, got %+v", want, got)
	}
}

func TestClientQueryMultipleHostsRoundRobin(t *testing.T) {
	want := payload.NewCharVector(payload.AttrNone, "ok")
	addr1 := startFakeHost(t, want)
	addr2 := startFakeHost(t, want)

	reg := registry.NewStaticRegistry()
	reg.Register("hdb", registry.HostInstance{Addr: addr1, Weight: 1}, 10)
	reg.Register("hdb", registry.HostInstance{Addr: addr2, Weight: 1}, 10)

	client := NewClient(reg, &loadbalance.RoundRobinBalancer{}, "user", "pass", DefaultOptions())
	defer client.Close()

	for i := 0; i < 4; i++ {
		got, err := client.Query(context.Background(), "hdb", "select from trade")
		if err != nil {
			t.Fatalf("query %d failed: %v", i, err)
		}
		if !got.Equal(want) {
			t.Fatalf("query %d: expect %+v, got %+v", i, want, got)
		}
	}
}

func TestClientQueryConsistentHashKeysOnFirstSymbol(t *testing.T) {
	want := payload.NewCharVector(payload.AttrNone, "ok")
	addr1 := startFakeHost(t, want)
	addr2 := startFakeHost(t, want)

	reg := registry.NewStaticRegistry()
	reg.Register("hdb", registry.HostInstance{Addr: addr1, Weight: 1}, 10)
	reg.Register("hdb", registry.HostInstance{Addr: addr2, Weight: 1}, 10)

	client := NewClient(reg, loadbalance.NewConsistentHashBalancer(), "user", "pass", DefaultOptions())
	defer client.Close()

	first, err := client.pick("hdb", "select from trade where sym=`AAPL")
	if err != nil {
		t.Fatal(err)
	}
	second, err := client.pick("hdb", "select from trade where sym=`MSFT")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("expect same host for queries against the same table, got %s and %s", first, second)
	}
}

func TestClientQueryNoHostsRegistered(t *testing.T) {
	reg := registry.NewStaticRegistry()
	client := NewClient(reg, &loadbalance.RoundRobinBalancer{}, "user", "pass", DefaultOptions())
	defer client.Close()

	_, err := client.Query(context.Background(), "hdb", "select from trade")
	if err == nil {
		t.Fatal("expect error when no hosts are registered")
	}
}

func TestClientQueryRetriesOnDeadHostThenFails(t *testing.T) {
	// Dead listener: accept once and immediately close, so the first query
	// attempt fails with a short read. No healthy host is registered.
	deadLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		c, err := deadLn.Accept()
		if err != nil {
			return
		}
		c.Close()
	}()
	deadAddr := deadLn.Addr().String()
	t.Cleanup(func() { deadLn.Close() })

	reg := registry.NewStaticRegistry()
	reg.Register("hdb", registry.HostInstance{Addr: deadAddr, Weight: 1}, 10)

	opts := DefaultOptions()
	opts.MaxRetries = 1
	opts.RetryBaseDelay = time.Millisecond
	client := NewClient(reg, &loadbalance.RoundRobinBalancer{}, "user", "pass", opts)
	defer client.Close()

	// The handshake itself will fail against the dead host (connection
	// closes before a capability byte arrives), which the retry middleware
	// should treat as transient and retry — but with only one host
	// registered it retries against the same dead host and ultimately
	// returns an error rather than hanging.
	_, err = client.Query(context.Background(), "hdb", "select from trade")
	if err == nil {
		t.Fatal("expect error querying a dead host")
	}
}
