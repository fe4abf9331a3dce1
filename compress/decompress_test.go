package compress

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"testing"

	"kdbclient/payload"
)

// TestDecompressAllLiteral exercises the simplest path: every control bit
// selects a literal copy, with a single control byte covering fewer than
// eight steps. Declared size 13 = 8 header bytes + "hello".
func TestDecompressAllLiteral(t *testing.T) {
	// size=13 LE, control byte 0x00 (5 literal bits), then "hello".
	in, err := hex.DecodeString("0d00000000" + hex.EncodeToString([]byte("hello")))
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decompress(in)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	want := append(make([]byte, 8), []byte("hello")...)
	if string(got) != string(want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

// TestDecompressLiteralCrossesControlByte exercises the control-word refill
// when more than 8 literal steps are needed, forcing a second control byte
// to be read mid-stream.
func TestDecompressLiteralCrossesControlByte(t *testing.T) {
	text := "123456789" // 9 literal bytes -> 2 control bytes (8 + 1 bits)
	// size=17 LE, f1=0x00 (8 literal bits), 8 bytes, f2=0x00 (1 literal bit), 1 byte.
	in, err := hex.DecodeString("1100000000" + hex.EncodeToString([]byte(text[:8])) + "00" + hex.EncodeToString([]byte(text[8:])))
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decompress(in)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	want := append(make([]byte, 8), []byte(text)...)
	if string(got) != string(want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

// TestDecompressBackReference exercises the back-reference path end to end.
// The stream was constructed by hand-tracing the algorithm: two literal
// bytes 'a','b' populate aa[0x61^0x62]=8 via the suffix-index maintenance
// step, then a single back-reference (index byte 0x03, length byte 6)
// replays those two bytes four more times to produce "ababababab".
func TestDecompressBackReference(t *testing.T) {
	// size=18 LE (8 header + 10 body), control byte 0x04 (steps: literal,
	// literal, back-ref), 'a', 'b', index 0x03, length 6.
	in, err := hex.DecodeString("120000000461620306")
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decompress(in)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	want, err := hex.DecodeString("0000000000000000" + "61626162616261626162")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("got %x, want %x", got, want)
	}
	for i := 0; i < 8; i++ {
		if got[i] != 0 {
			t.Fatalf("header byte %d not zero: %x", i, got[i])
		}
	}
}

func TestDecompressShortInput(t *testing.T) {
	_, err := Decompress([]byte{1, 2})
	if !errors.Is(err, ErrShortInput) {
		t.Fatalf("got %v, want ErrShortInput", err)
	}
}

func TestDecompressTruncatedStream(t *testing.T) {
	// Declares 18 bytes of output but the stream ends after the two literals.
	in, err := hex.DecodeString("1200000000" + "6162")
	if err != nil {
		t.Fatal(err)
	}
	_, err = Decompress(in)
	if !errors.Is(err, ErrShortInput) {
		t.Fatalf("got %v, want ErrShortInput", err)
	}
}

func TestDecompressBadBackReference(t *testing.T) {
	// Control byte selects a back-reference as the very first step, before
	// any output has been produced to point into — aa[k] defaults to 0,
	// which is not a valid already-produced position this early.
	in, err := hex.DecodeString("0e00000001000000")
	if err != nil {
		t.Fatal(err)
	}
	_, err = Decompress(in)
	if !errors.Is(err, ErrBadBackRef) {
		t.Fatalf("got %v, want ErrBadBackRef", err)
	}
}

func TestDecompressDeclaredSizeTooSmall(t *testing.T) {
	_, err := Decompress([]byte{2, 0, 0, 0})
	if !errors.Is(err, ErrDeclaredSize) {
		t.Fatalf("got %v, want ErrDeclaredSize", err)
	}
}

// refCompress mirrors the compressor a kdb+ server applies to large
// responses. It lives in the test file because outbound compression is not a
// library feature — its only job is generating ground-truth streams for
// Decompress. msg is the complete uncompressed message, 8-byte header
// included; the return value is the body that follows a compressed message's
// header on the wire (4-byte declared size, then the control/literal stream).
//
// The encoder maintains the same aa table, p cursor, and control-word shift
// register as Decompress, so any stream it emits is decodable by
// construction; the tests below then verify that claim byte for byte.
func refCompress(msg []byte) []byte {
	out := binary.LittleEndian.AppendUint32(nil, uint32(len(msg)))
	var aa [256]uint32
	s, p := 8, 8
	ctrlPos := -1
	var f, mask byte

	for s < len(msg) {
		if mask == 0 {
			if ctrlPos >= 0 {
				out[ctrlPos] = f
			}
			ctrlPos = len(out)
			out = append(out, 0)
			f, mask = 0, 1
		}

		matched := false
		if s+1 < len(msg) {
			h := msg[s] ^ msg[s+1]
			r := int(aa[h])
			// aa entries start at zero; positions below 8 are never recorded,
			// so r >= 8 distinguishes a real entry from an empty slot.
			if r >= 8 && r+1 < s && msg[r] == msg[s] && msg[r+1] == msg[s+1] {
				f |= mask
				n := 0
				for n < 255 && s+2+n < len(msg) && msg[r+2+n] == msg[s+2+n] {
					n++
				}
				out = append(out, h, byte(n))
				s += 2
				for p < s-1 {
					aa[msg[p]^msg[p+1]] = uint32(p)
					p++
				}
				s += n
				p = s
				matched = true
			}
		}
		if !matched {
			out = append(out, msg[s])
			s++
			for p < s-1 {
				aa[msg[p]^msg[p+1]] = uint32(p)
				p++
			}
		}
		mask <<= 1
	}
	if ctrlPos >= 0 {
		out[ctrlPos] = f
	}
	return out
}

// TestDecompressLongVectorGroundTruth is the end-to-end ground truth for the
// back-reference format: a long vector of 0..499 compresses well (the high
// bytes of consecutive longs repeat), and the decompressed stream must decode
// back to the identical vector. The declared-size prefix for this message is
// the documented ae0f0000 (4014 = 8 header bytes + 4006 payload bytes).
func TestDecompressLongVectorGroundTruth(t *testing.T) {
	longs := make([]uint64, 500)
	for i := range longs {
		longs[i] = uint64(i)
	}
	vec := payload.NewLongVector(payload.AttrNone, longs)
	body, err := payload.Encode(vec)
	if err != nil {
		t.Fatalf("encode vector: %v", err)
	}

	msg := make([]byte, 8+len(body))
	msg[0] = 1 // little-endian
	msg[1] = 2 // response
	binary.LittleEndian.PutUint32(msg[4:8], uint32(len(msg)))
	copy(msg[8:], body)

	compressed := refCompress(msg)
	if !bytes.Equal(compressed[:4], []byte{0xae, 0x0f, 0x00, 0x00}) {
		t.Fatalf("declared size prefix %x, want ae0f0000", compressed[:4])
	}
	if len(compressed) >= len(msg) {
		t.Fatalf("reference stream did not compress: %d >= %d", len(compressed), len(msg))
	}

	got, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if len(got) != len(msg) {
		t.Fatalf("decompressed length %d, want declared %d", len(got), len(msg))
	}
	for i := 0; i < 8; i++ {
		if got[i] != 0 {
			t.Fatalf("header byte %d not zero: %x", i, got[i])
		}
	}
	if !bytes.Equal(got[8:], msg[8:]) {
		t.Fatal("decompressed body differs from original payload body")
	}

	v, n, err := payload.Decode(got[8:])
	if err != nil {
		t.Fatalf("decode decompressed body: %v", err)
	}
	if n != len(got)-8 {
		t.Fatalf("decode consumed %d bytes, want %d", n, len(got)-8)
	}
	if !v.Equal(vec) {
		t.Error("decoded vector differs from the one compressed")
	}
}

// TestDecompressRoundTripVariety runs the compress-then-decompress property
// over bodies with different redundancy profiles, including one long enough
// to force many control-byte refills and 255-length back-references.
func TestDecompressRoundTripVariety(t *testing.T) {
	nonPeriodic := make([]byte, 700)
	for i := range nonPeriodic {
		nonPeriodic[i] = byte(i*7 + 3)
	}
	cases := map[string][]byte{
		"all zero":     make([]byte, 2048),
		"no repeats":   {1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13},
		"short":        {0xff},
		"periodic":     bytes.Repeat([]byte("trade\x00"), 300),
		"long literal": nonPeriodic,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			msg := make([]byte, 8+len(data))
			msg[0] = 1
			msg[1] = 2
			binary.LittleEndian.PutUint32(msg[4:8], uint32(len(msg)))
			copy(msg[8:], data)

			got, err := Decompress(refCompress(msg))
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if len(got) != len(msg) {
				t.Fatalf("length %d, want %d", len(got), len(msg))
			}
			if !bytes.Equal(got[8:], msg[8:]) {
				t.Error("body mismatch after round trip")
			}
		})
	}
}
