// Package conn is the thin synchronous transport shim around the codec: it
// owns a single net.Conn (or any io.ReadWriter, for test injection), performs
// the authentication handshake, and runs the strict send-then-receive query
// cycle, handing complete byte buffers to the decompressor and payload
// decoder and returning a payload.Value to the caller. It never duplicates
// codec logic — every byte it moves is built or parsed by protocol, payload,
// or compress.
package conn

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"kdbclient/compress"
	"kdbclient/payload"
	"kdbclient/protocol"
)

// capabilityLevel is advertised during the handshake prologue. Level 3
// tells the server this client understands every type in the payload
// package's dispatch table plus compressed responses.
const capabilityLevel byte = 0x03

// Conn is a synchronous kdb+ IPC connection. The wire protocol this package
// speaks is strictly sync-request/sync-response: one outstanding query per
// connection, request and response strictly ordered. Query is safe to call
// from multiple goroutines — a mutex serializes the send-then-receive cycle
// — but concurrent callers simply queue, they do not multiplex.
type Conn struct {
	rw io.ReadWriter // net.Conn in production; any io.ReadWriter in tests
	mu sync.Mutex
}

// Dial opens a TCP connection to addr and performs the handshake with user
// and pass. ctx governs both the dial and the handshake round trip.
func Dial(ctx context.Context, addr, user, pass string) (*Conn, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("conn: dial %s: %w", addr, err)
	}
	c := New(nc)
	if deadline, ok := ctx.Deadline(); ok {
		_ = nc.SetDeadline(deadline)
	}
	if err := c.Handshake(user, pass); err != nil {
		nc.Close()
		return nil, err
	}
	if err := nc.SetDeadline(time.Time{}); err != nil {
		nc.Close()
		return nil, err
	}
	return c, nil
}

// New wraps an already-open transport (a real net.Conn, or a test double)
// without performing a handshake. Used by tests and by callers that have
// already authenticated out of band.
func New(rw io.ReadWriter) *Conn {
	return &Conn{rw: rw}
}

// Handshake sends "<user>:<pass>\x03\x00" and reads back one capability
// byte. The 0x03 advertises this client's protocol capability level; the
// codec itself does not own this step. Dial performs it automatically;
// callers wrapping an already-open socket with New may invoke it directly.
func (c *Conn) Handshake(user, pass string) error {
	req := append([]byte(user+":"+pass), capabilityLevel, 0x00)
	if _, err := c.rw.Write(req); err != nil {
		return fmt.Errorf("conn: handshake write: %w", err)
	}
	resp := make([]byte, 1)
	if _, err := io.ReadFull(c.rw, resp); err != nil {
		return fmt.Errorf("conn: handshake read: %w", err)
	}
	return nil
}

// Query sends text as a synchronous query and returns the decoded response.
// Only one Query may be in flight on a Conn at a time; concurrent callers
// are serialized by Conn's mutex, matching the protocol's sync invariant.
//
// If ctx carries a deadline and the underlying transport is a net.Conn, the
// deadline is mapped to SetDeadline for the duration of the call. A
// partially-received message on timeout is discarded — Query offers no
// resume, matching the codec's non-blocking, non-resumable contract.
func (c *Conn) Query(ctx context.Context, text string) (*payload.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if nc, ok := c.rw.(net.Conn); ok {
		if deadline, hasDeadline := ctx.Deadline(); hasDeadline {
			if err := nc.SetDeadline(deadline); err != nil {
				return nil, fmt.Errorf("conn: set deadline: %w", err)
			}
			defer nc.SetDeadline(time.Time{})
		}
	}

	body, err := payload.EncodeQueryRequest(text)
	if err != nil {
		return nil, fmt.Errorf("conn: build query: %w", err)
	}
	if _, err := c.rw.Write(protocol.EncodeRequest(body)); err != nil {
		return nil, fmt.Errorf("conn: write query: %w", err)
	}

	header, full, err := protocol.ReadMessage(c.rw)
	if err != nil {
		return nil, fmt.Errorf("conn: read response: %w", err)
	}

	respBody := full[protocol.HeaderSize:]
	if header.Compressed {
		decompressed, err := compress.Decompress(respBody)
		if err != nil {
			return nil, fmt.Errorf("conn: decompress response: %w", err)
		}
		copy(decompressed[:protocol.HeaderSize], full[:protocol.HeaderSize])
		respBody = decompressed[protocol.HeaderSize:]
	}

	v, _, err := payload.Decode(respBody)
	if err != nil {
		return nil, fmt.Errorf("conn: decode response: %w", err)
	}
	return v, nil
}

// Close closes the underlying transport if it supports io.Closer.
func (c *Conn) Close() error {
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
