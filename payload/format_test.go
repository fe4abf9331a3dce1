package payload

import "testing"

func TestString(t *testing.T) {
	dict := NewDictionary(
		NewSymbolVector(AttrNone, []string{"sym", "price"}),
		NewList(AttrNone, []*Value{
			NewSymbolVector(AttrNone, []string{"AAPL", "MSFT"}),
			NewLongVector(AttrNone, []uint64{100, 200}),
		}),
	)

	cases := []struct {
		v    *Value
		want string
	}{
		{NewBool(true), "1b"},
		{NewByte(0x2a), "0x2a"},
		{NewShort(1234), "1234h"},
		{NewInt(314159265), "314159265i"},
		{NewLong(42), "42"},
		{NewReal(12.5), "12.5e"},
		{NewFloat(3.5), "3.5f"},
		{NewChar('q'), `"q"`},
		{NewSymbol("trade"), "`trade"},
		{NewError("type"), "'type"},
		{NewNil(), "::"},
		{NewCharVector(AttrNone, "thatscrazy"), `"thatscrazy"`},
		{NewSymbolVector(AttrNone, []string{"Dent", "Prefect"}), "`Dent`Prefect"},
		{NewLongVector(AttrNone, []uint64{1, 2, 3}), "1 2 3"},
		{&Value{Kind: KindBoolVector, Bools: []bool{true, false, true}}, "101b"},
		{&Value{Kind: KindByteVector, Bytes: []byte{0xde, 0xad}}, "0xdead"},
		{NewList(AttrNone, []*Value{NewChar('a'), NewCharVector(AttrNone, "ab")}), `("a";"ab")`},
		{dict, "`sym`price!(`AAPL`MSFT;100 200)"},
		{NewTable(AttrNone, dict), "+`sym`price!(`AAPL`MSFT;100 200)"},
	}

	for _, tc := range cases {
		if got := tc.v.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestStringNegativeAtoms(t *testing.T) {
	// Wire storage is unsigned; rendering reinterprets two's complement for
	// the signed widths.
	if got := NewInt(0xffffffff).String(); got != "-1i" {
		t.Errorf("got %q, want -1i", got)
	}
	if got := NewShort(0xffff).String(); got != "-1h" {
		t.Errorf("got %q, want -1h", got)
	}
}
