// Package protocol implements the 8-byte fixed message header used by the
// kdb+ IPC wire protocol.
//
// Every message, in either direction, starts with this header. The receiver
// reads it first to learn the total message length (header included) and
// whether the body is compressed, then reads exactly that many bytes before
// handing the remainder to the payload codec.
//
// Header layout:
//
//	0    1    2    3    4              8
//	┌────┬────┬────┬────┬──────────────┐
//	│arch│kind│cmp │ 00 │  totalLen    │
//	│ 01 │0-2 │0/1 │    │  uint32 LE   │
//	└────┴────┴────┴────┴──────────────┘
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// HeaderSize is the fixed length, in bytes, of every kdb+ IPC message header.
const HeaderSize = 8

// Architecture byte values. Only LittleEndian is understood by this package;
// a big-endian peer is out of scope for this client.
const (
	LittleEndian byte = 1
)

// Synchronisation mode byte values, occupying the same position as Kind on
// outbound messages. Only Sync is produced by the request builder — the
// async variant of the protocol is not implemented.
const (
	Sync byte = 1
)

// Message kind values, occupying the same byte position as the sync flag on
// inbound messages. Informational only; not validated by DecodeHeader.
const (
	MsgAsync    byte = 0
	MsgResponse byte = 2
)

// Header represents the fixed 8-byte frame header.
type Header struct {
	Architecture byte   // byte 0 — endianness tag, 1 = little-endian
	Kind         byte   // byte 1 — sync mode on outbound, message kind on inbound
	Compressed   bool   // byte 2 — compression flag, inbound only
	TotalLen     uint32 // bytes 4-7 — header + body length, LE u32
}

// NewRequestHeader builds the header for an outbound synchronous request
// whose body is bodyLen bytes long.
func NewRequestHeader(bodyLen int) Header {
	return Header{
		Architecture: LittleEndian,
		Kind:         Sync,
		Compressed:   false,
		TotalLen:     uint32(HeaderSize + bodyLen),
	}
}

// Encode writes the 8-byte header into buf, which must have length >= HeaderSize.
func (h Header) Encode(buf []byte) {
	buf[0] = h.Architecture
	buf[1] = h.Kind
	buf[2] = 0
	buf[3] = 0
	binary.LittleEndian.PutUint32(buf[4:8], h.TotalLen)
}

// EncodeRequest assembles a complete outbound message: the 8-byte header
// followed by body.
func EncodeRequest(body []byte) []byte {
	h := NewRequestHeader(len(body))
	msg := make([]byte, HeaderSize+len(body))
	h.Encode(msg[:HeaderSize])
	copy(msg[HeaderSize:], body)
	return msg
}

// DecodeHeader parses an 8-byte inbound header. The architecture byte is
// exposed but not validated here — rejecting an unsupported peer endianness
// is left to the caller.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("protocol: short header: need %d bytes, got %d", HeaderSize, len(buf))
	}
	return Header{
		Architecture: buf[0],
		Kind:         buf[1],
		Compressed:   buf[2] == 1,
		TotalLen:     binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

// ReadMessage reads one complete framed message from r: the 8-byte header
// plus exactly TotalLen-HeaderSize body bytes. It returns the parsed header
// and a buffer holding the header followed by the body. The header bytes are
// kept so a caller can copy them over the zeroed header region of a
// decompressed buffer; the decompressor itself is handed only the body.
func ReadMessage(r io.Reader) (Header, []byte, error) {
	hdrBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, hdrBuf); err != nil {
		return Header{}, nil, fmt.Errorf("protocol: read header: %w", err)
	}
	h, err := DecodeHeader(hdrBuf)
	if err != nil {
		return Header{}, nil, err
	}
	if h.TotalLen < HeaderSize {
		return Header{}, nil, fmt.Errorf("protocol: declared length %d shorter than header", h.TotalLen)
	}
	full := make([]byte, h.TotalLen)
	copy(full[:HeaderSize], hdrBuf)
	if _, err := io.ReadFull(r, full[HeaderSize:]); err != nil {
		return Header{}, nil, fmt.Errorf("protocol: read body: %w", err)
	}
	return h, full, nil
}
