package payload

// Value is the recursive sum type carrying every value the kdb+ IPC
// protocol can transport. Only the fields relevant to Kind are populated;
// the rest are left at their zero value.
type Value struct {
	Kind Kind
	Attr VectorAttribute // vectors and Table

	// Atoms. Numeric atom widths follow the wire width exactly (two's
	// complement little-endian on the wire, stored here as unsigned — the
	// protocol never distinguishes sign for these beyond width).
	Bool    bool
	GUID    [16]byte
	Byte    byte
	Short   uint16
	Int32   uint32 // Int, Month, Date, Minute, Second, Time
	Int64   uint64 // Long, Timestamp, DateTime, TimeSpan
	Real    float32
	Float64 float64
	Char    byte
	Symbol  string
	Err     string // Error text

	// Vectors, sharing storage across the Kinds that have the same wire
	// width and semantics (disambiguated by Kind).
	Bools   []bool
	GUIDs   [][16]byte
	Bytes   []byte
	Shorts  []uint16
	Ints32  []uint32 // IntVector, MonthVector, DateVector, MinuteVector, SecondVector, TimeVector
	Ints64  []uint64 // LongVector, TimestampVector, DateTimeVector, TimeSpanVector
	Reals   []float32
	Floats  []float64
	Text    string // CharVector
	Symbols []string

	// Composites.
	List []*Value // List elements
	Dict *Value   // Table: the boxed Dictionary
	Keys *Value   // Dictionary keys
	Vals *Value   // Dictionary values
}

// TypeTag returns the signed wire dispatch byte for v's Kind.
func (v *Value) TypeTag() int8 {
	return typeTag[v.Kind]
}

// Constructors are provided for the atoms and the common vector and
// composite cases a client builds programmatically; the remaining vector
// kinds are built by assigning fields directly.

func NewBool(b bool) *Value        { return &Value{Kind: KindBool, Bool: b} }
func NewByte(b byte) *Value        { return &Value{Kind: KindByte, Byte: b} }
func NewShort(s uint16) *Value     { return &Value{Kind: KindShort, Short: s} }
func NewInt(i uint32) *Value       { return &Value{Kind: KindInt, Int32: i} }
func NewLong(l uint64) *Value      { return &Value{Kind: KindLong, Int64: l} }
func NewReal(r float32) *Value     { return &Value{Kind: KindReal, Real: r} }
func NewFloat(f float64) *Value    { return &Value{Kind: KindFloat, Float64: f} }
func NewChar(c byte) *Value        { return &Value{Kind: KindChar, Char: c} }
func NewSymbol(s string) *Value    { return &Value{Kind: KindSymbol, Symbol: s} }
func NewError(msg string) *Value   { return &Value{Kind: KindError, Err: msg} }
func NewNil() *Value               { return &Value{Kind: KindNil} }

func NewCharVector(attr VectorAttribute, s string) *Value {
	return &Value{Kind: KindCharVector, Attr: attr, Text: s}
}

func NewSymbolVector(attr VectorAttribute, syms []string) *Value {
	return &Value{Kind: KindSymbolVector, Attr: attr, Symbols: syms}
}

func NewLongVector(attr VectorAttribute, longs []uint64) *Value {
	return &Value{Kind: KindLongVector, Attr: attr, Ints64: longs}
}

func NewList(attr VectorAttribute, items []*Value) *Value {
	return &Value{Kind: KindList, Attr: attr, List: items}
}

func NewDictionary(keys, vals *Value) *Value {
	return &Value{Kind: KindDictionary, Keys: keys, Vals: vals}
}

func NewTable(attr VectorAttribute, dict *Value) *Value {
	return &Value{Kind: KindTable, Attr: attr, Dict: dict}
}

// Equal reports whether v and other decode to the same logical value. It is
// used by round-trip tests instead of reflect.DeepEqual so that nil vs.
// empty slices in either operand don't cause spurious mismatches.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.Kind != other.Kind || v.Attr != other.Attr {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.Bool == other.Bool
	case KindGUID:
		return v.GUID == other.GUID
	case KindByte:
		return v.Byte == other.Byte
	case KindShort:
		return v.Short == other.Short
	case KindInt, KindMonth, KindDate, KindMinute, KindSecond, KindTime:
		return v.Int32 == other.Int32
	case KindLong, KindTimestamp, KindDateTime, KindTimeSpan:
		return v.Int64 == other.Int64
	case KindReal:
		return v.Real == other.Real
	case KindFloat:
		return v.Float64 == other.Float64
	case KindChar:
		return v.Char == other.Char
	case KindSymbol:
		return v.Symbol == other.Symbol
	case KindError:
		return v.Err == other.Err
	case KindNil, KindNilVector:
		return true
	case KindBoolVector:
		return equalSlice(v.Bools, other.Bools)
	case KindGUIDVector:
		return equalSlice(v.GUIDs, other.GUIDs)
	case KindByteVector:
		return equalSlice(v.Bytes, other.Bytes)
	case KindShortVector:
		return equalSlice(v.Shorts, other.Shorts)
	case KindIntVector, KindMonthVector, KindDateVector, KindMinuteVector, KindSecondVector, KindTimeVector:
		return equalSlice(v.Ints32, other.Ints32)
	case KindLongVector, KindTimestampVector, KindDateTimeVector, KindTimeSpanVector:
		return equalSlice(v.Ints64, other.Ints64)
	case KindRealVector:
		return equalSlice(v.Reals, other.Reals)
	case KindFloatVector:
		return equalSlice(v.Floats, other.Floats)
	case KindCharVector:
		return v.Text == other.Text
	case KindSymbolVector:
		return equalSlice(v.Symbols, other.Symbols)
	case KindList:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(other.List[i]) {
				return false
			}
		}
		return true
	case KindDictionary:
		return v.Keys.Equal(other.Keys) && v.Vals.Equal(other.Vals)
	case KindTable:
		return v.Dict.Equal(other.Dict)
	}
	return false
}

func equalSlice[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
