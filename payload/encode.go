package payload

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeQueryRequest builds the wire body for an outbound textual query: a
// Char-vector encoding (type 10, attribute 0) carrying text. This is the
// only value this library ever encodes outward in production use — see
// Encode for the general-purpose encoder used by round-trip tests.
func EncodeQueryRequest(text string) ([]byte, error) {
	if !isASCII([]byte(text)) {
		return nil, ErrNonASCIIRequest
	}
	buf := make([]byte, 6+len(text))
	buf[0] = byte(typeTag[KindCharVector])
	buf[1] = byte(AttrNone)
	binary.LittleEndian.PutUint32(buf[2:6], uint32(len(text)))
	copy(buf[6:], text)
	return buf, nil
}

// Encode serializes v back to its wire representation, including its
// leading type tag byte. It is the inverse of Decode and exists primarily
// so the codec's round-trip property (Decode(Encode(v)) == v) can be
// exercised in tests; the live query path only ever calls
// EncodeQueryRequest.
func Encode(v *Value) ([]byte, error) {
	switch v.Kind {
	case KindBool:
		b := byte(0)
		if v.Bool {
			b = 1
		}
		return []byte{byte(v.TypeTag()), b}, nil
	case KindByte:
		return []byte{byte(v.TypeTag()), v.Byte}, nil
	case KindChar:
		if v.Char > 0x7f {
			return nil, fmt.Errorf("%w: char atom", ErrNonASCII)
		}
		return []byte{byte(v.TypeTag()), v.Char}, nil
	case KindGUID:
		buf := make([]byte, 1+16)
		buf[0] = byte(v.TypeTag())
		copy(buf[1:], v.GUID[:])
		return buf, nil
	case KindShort:
		buf := make([]byte, 1+2)
		buf[0] = byte(v.TypeTag())
		binary.LittleEndian.PutUint16(buf[1:], v.Short)
		return buf, nil
	case KindInt, KindMonth, KindDate, KindMinute, KindSecond, KindTime:
		buf := make([]byte, 1+4)
		buf[0] = byte(v.TypeTag())
		binary.LittleEndian.PutUint32(buf[1:], v.Int32)
		return buf, nil
	case KindLong, KindTimestamp, KindDateTime, KindTimeSpan:
		buf := make([]byte, 1+8)
		buf[0] = byte(v.TypeTag())
		binary.LittleEndian.PutUint64(buf[1:], v.Int64)
		return buf, nil
	case KindReal:
		buf := make([]byte, 1+4)
		buf[0] = byte(v.TypeTag())
		binary.LittleEndian.PutUint32(buf[1:], math.Float32bits(v.Real))
		return buf, nil
	case KindFloat:
		buf := make([]byte, 1+8)
		buf[0] = byte(v.TypeTag())
		binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(v.Float64))
		return buf, nil
	case KindSymbol:
		if !isASCII([]byte(v.Symbol)) {
			return nil, fmt.Errorf("%w: symbol", ErrNonASCII)
		}
		buf := make([]byte, 1+len(v.Symbol)+1)
		buf[0] = byte(v.TypeTag())
		copy(buf[1:], v.Symbol)
		return buf, nil
	case KindError:
		buf := make([]byte, 1+len(v.Err)+1)
		buf[0] = byte(v.TypeTag())
		copy(buf[1:], v.Err)
		return buf, nil
	case KindNil, KindNilVector:
		return []byte{byte(v.TypeTag()), 0}, nil

	case KindBoolVector:
		buf := vectorHeader(v, len(v.Bools))
		for _, b := range v.Bools {
			if b {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		}
		return buf, nil
	case KindByteVector:
		buf := vectorHeader(v, len(v.Bytes))
		return append(buf, v.Bytes...), nil
	case KindGUIDVector:
		buf := vectorHeader(v, len(v.GUIDs))
		for _, g := range v.GUIDs {
			buf = append(buf, g[:]...)
		}
		return buf, nil
	case KindShortVector:
		buf := vectorHeader(v, len(v.Shorts))
		for _, s := range v.Shorts {
			buf = binary.LittleEndian.AppendUint16(buf, s)
		}
		return buf, nil
	case KindIntVector, KindMonthVector, KindDateVector, KindMinuteVector, KindSecondVector, KindTimeVector:
		buf := vectorHeader(v, len(v.Ints32))
		for _, i := range v.Ints32 {
			buf = binary.LittleEndian.AppendUint32(buf, i)
		}
		return buf, nil
	case KindLongVector, KindTimestampVector, KindDateTimeVector, KindTimeSpanVector:
		buf := vectorHeader(v, len(v.Ints64))
		for _, l := range v.Ints64 {
			buf = binary.LittleEndian.AppendUint64(buf, l)
		}
		return buf, nil
	case KindRealVector:
		buf := vectorHeader(v, len(v.Reals))
		for _, r := range v.Reals {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(r))
		}
		return buf, nil
	case KindFloatVector:
		buf := vectorHeader(v, len(v.Floats))
		for _, f := range v.Floats {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
		}
		return buf, nil
	case KindCharVector:
		if !isASCII([]byte(v.Text)) {
			return nil, fmt.Errorf("%w: char vector", ErrNonASCII)
		}
		buf := vectorHeader(v, len(v.Text))
		return append(buf, v.Text...), nil
	case KindSymbolVector:
		buf := vectorHeader(v, len(v.Symbols))
		for _, s := range v.Symbols {
			if !isASCII([]byte(s)) {
				return nil, fmt.Errorf("%w: symbol vector element", ErrNonASCII)
			}
			buf = append(buf, s...)
			buf = append(buf, 0)
		}
		return buf, nil

	case KindList:
		buf := []byte{byte(v.TypeTag()), byte(v.Attr)}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v.List)))
		for _, child := range v.List {
			enc, err := Encode(child)
			if err != nil {
				return nil, err
			}
			buf = append(buf, enc...)
		}
		return buf, nil

	case KindDictionary:
		keyEnc, err := Encode(v.Keys)
		if err != nil {
			return nil, err
		}
		valEnc, err := Encode(v.Vals)
		if err != nil {
			return nil, err
		}
		buf := []byte{byte(v.TypeTag())}
		buf = append(buf, keyEnc...)
		buf = append(buf, valEnc...)
		return buf, nil

	case KindTable:
		dictEnc, err := Encode(v.Dict)
		if err != nil {
			return nil, err
		}
		buf := []byte{byte(v.TypeTag()), byte(v.Attr)}
		buf = append(buf, dictEnc...)
		return buf, nil
	}
	return nil, fmt.Errorf("%w: kind %d", ErrUnknownType, v.Kind)
}

func vectorHeader(v *Value, count int) []byte {
	buf := make([]byte, 6)
	buf[0] = byte(v.TypeTag())
	buf[1] = byte(v.Attr)
	binary.LittleEndian.PutUint32(buf[2:6], uint32(count))
	return buf
}
