// Package payload implements the recursive kdb+ IPC value codec: the
// decoder from a byte slice to a typed Value tree, the size oracle used to
// advance through nested structures during decoding, and an encoder used
// both to build outbound query requests and, for round-trip testing, to
// re-serialize any decoded Value.
//
// Value is modeled as a single tagged struct rather than an interface
// hierarchy: the wire tag set is closed and small, decoding is an exhaustive
// switch over a signed byte, and List/Table/Dictionary children need uniform
// storage for heterogeneous values. *Value gives the recursive cases (List
// elements, Table/Dictionary children) the pointer indirection they need to
// have a statically-known size.
package payload

// Kind identifies which of the protocol's value shapes a Value holds.
type Kind int

const (
	KindList Kind = iota
	KindBool
	KindBoolVector
	KindGUID
	KindGUIDVector
	KindByte
	KindByteVector
	KindShort
	KindShortVector
	KindInt
	KindIntVector
	KindLong
	KindLongVector
	KindReal
	KindRealVector
	KindFloat
	KindFloatVector
	KindChar
	KindCharVector
	KindSymbol
	KindSymbolVector
	KindTimestamp
	KindTimestampVector
	KindMonth
	KindMonthVector
	KindDate
	KindDateVector
	KindDateTime
	KindDateTimeVector
	KindTimeSpan
	KindTimeSpanVector
	KindMinute
	KindMinuteVector
	KindSecond
	KindSecondVector
	KindTime
	KindTimeVector
	KindTable
	KindDictionary
	KindNil
	KindNilVector
	KindError
)

// typeTag is the signed wire dispatch byte for each Kind: negative for
// atoms, positive for vectors and composites. Reading it as an unsigned
// byte before dispatch would misroute roughly half the tag space.
var typeTag = map[Kind]int8{
	KindList:             0,
	KindBool:             -1,
	KindBoolVector:       1,
	KindGUID:             -2,
	KindGUIDVector:       2,
	KindByte:             -4,
	KindByteVector:       4,
	KindShort:            -5,
	KindShortVector:      5,
	KindInt:              -6,
	KindIntVector:        6,
	KindLong:             -7,
	KindLongVector:       7,
	KindReal:             -8,
	KindRealVector:       8,
	KindFloat:            -9,
	KindFloatVector:      9,
	KindChar:             -10,
	KindCharVector:       10,
	KindSymbol:           -11,
	KindSymbolVector:     11,
	KindTimestamp:        -12,
	KindTimestampVector:  12,
	KindMonth:            -13,
	KindMonthVector:      13,
	KindDate:             -14,
	KindDateVector:       14,
	KindDateTime:         -15,
	KindDateTimeVector:   15,
	KindTimeSpan:         -16,
	KindTimeSpanVector:   16,
	KindMinute:           -17,
	KindMinuteVector:     17,
	KindSecond:           -18,
	KindSecondVector:     18,
	KindTime:             -19,
	KindTimeVector:       19,
	KindTable:            98,
	KindDictionary:       99,
	KindNil:              -101,
	KindNilVector:        101,
	KindError:            -128,
}

// width is the fixed per-element octet width for atoms and fixed-width
// vector elements. Types without a fixed width (List, Symbol[Vector],
// Char[Vector], Table, Dictionary, Nil[Vector], Error) are absent.
var width = map[Kind]int{
	KindBool: 1, KindBoolVector: 1,
	KindGUID: 16, KindGUIDVector: 16,
	KindByte: 1, KindByteVector: 1,
	KindShort: 2, KindShortVector: 2,
	KindInt: 4, KindIntVector: 4,
	KindLong: 8, KindLongVector: 8,
	KindReal: 4, KindRealVector: 4,
	KindFloat: 8, KindFloatVector: 8,
	KindTimestamp: 8, KindTimestampVector: 8,
	KindMonth: 4, KindMonthVector: 4,
	KindDate: 4, KindDateVector: 4,
	KindDateTime: 8, KindDateTimeVector: 8,
	KindTimeSpan: 8, KindTimeSpanVector: 8,
	KindMinute: 4, KindMinuteVector: 4,
	KindSecond: 4, KindSecondVector: 4,
	KindTime: 4, KindTimeVector: 4,
}

// kindByTag is the inverse of typeTag, built once at init for dispatch.
var kindByTag = func() map[int8]Kind {
	m := make(map[int8]Kind, len(typeTag))
	for k, tag := range typeTag {
		m[tag] = k
	}
	return m
}()

// VectorAttribute is metadata carried by every vector (and Table) declaring
// an ordering/uniqueness property. The codec transports these values; it
// never verifies that the underlying data actually has the claimed property.
type VectorAttribute byte

const (
	AttrNone    VectorAttribute = 0
	AttrSorted  VectorAttribute = 1
	AttrUnique  VectorAttribute = 2
	AttrGrouped VectorAttribute = 3
)

func (a VectorAttribute) valid() bool {
	return a <= AttrGrouped
}
