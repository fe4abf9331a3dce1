// Package compress implements the kdb+ IPC wire protocol's proprietary
// LZ-style decompression scheme, used for large responses when the inbound
// message header's compression flag is set.
//
// The format is not a standard compressor (deflate, LZ4, snappy): it is a
// bespoke byte-oriented scheme with an 8-bit control word selecting literal
// vs. back-reference steps one bit at a time, and a 256-entry position table
// keyed on a 2-byte XOR hash of adjacent output bytes rather than a content
// hash. It is reproduced here exactly, including its quirks, because no
// general-purpose decompressor in the ecosystem understands this wire
// format — this is the one piece of the codec that cannot be delegated to a
// library.
package compress

import (
	"encoding/binary"
	"fmt"
)

// Decompress decodes body, the bytes immediately following an inbound
// message header whose compression flag was set. body's first four bytes
// are the little-endian declared size of the fully decompressed output,
// including the 8 header bytes the original message started with; those 8
// bytes are reproduced as zeros in the returned buffer; the caller (the
// framing layer) is responsible for overwriting them with the real header
// before handing the remainder to the payload decoder.
func Decompress(body []byte) ([]byte, error) {
	if len(body) < 4 {
		return nil, fmt.Errorf("%w: need 4 bytes for declared size, have %d", ErrShortInput, len(body))
	}
	declared := int(binary.LittleEndian.Uint32(body[:4]))
	if declared < 8 {
		return nil, fmt.Errorf("%w: declared size %d smaller than header", ErrDeclaredSize, declared)
	}

	dst := make([]byte, declared)
	var aa [256]uint32

	s := 8 // output cursor
	p := 8 // back-reference index-table update cursor
	d := 4 // input cursor, just past the size prefix
	var f byte
	var mask byte // 0 means "exhausted", forcing a refill on the first step

	for s < declared {
		if mask == 0 {
			if d >= len(body) {
				return nil, fmt.Errorf("%w: control byte", ErrShortInput)
			}
			f = body[d]
			d++
			mask = 1
		}

		backRef := f&mask != 0
		n := 0 // extra match bytes beyond the two implicit ones
		if backRef {
			if d >= len(body) {
				return nil, fmt.Errorf("%w: back-reference index byte", ErrShortInput)
			}
			k := body[d]
			d++
			r := int(aa[k])
			// Positions below 8 are the header region, which this routine
			// never produces; aa holds 0 there until a pair is recorded.
			if r < 8 || r+1 >= s {
				return nil, fmt.Errorf("%w: index %d, cursor %d", ErrBadBackRef, r, s)
			}
			dst[s] = dst[r]
			s++
			r++
			dst[s] = dst[r]
			s++
			r++

			if d >= len(body) {
				return nil, fmt.Errorf("%w: back-reference length byte", ErrShortInput)
			}
			n = int(body[d])
			d++
			if s+n > declared {
				return nil, fmt.Errorf("%w: match overruns declared size", ErrDeclaredSize)
			}
			for i := 0; i < n; i++ {
				dst[s+i] = dst[r+i]
			}
		} else {
			if d >= len(body) {
				return nil, fmt.Errorf("%w: literal byte", ErrShortInput)
			}
			dst[s] = body[d]
			s++
			d++
		}

		// Suffix-index maintenance: hash each newly-produced adjacent byte
		// pair and remember where it occurred, so a later back-reference can
		// find it by the same hash the encoder used.
		for p < s-1 {
			aa[dst[p]^dst[p+1]] = uint32(p)
			p++
		}
		if backRef {
			// Skip hashing over the n extra copied bytes, matching the
			// reference implementation this format was distilled from.
			s += n
			p = s
		}

		mask <<= 1 // wraps 0x80 -> 0x00, forcing a control-byte refill next step
	}

	return dst, nil
}
