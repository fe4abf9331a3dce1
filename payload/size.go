package payload

// Size returns the number of wire bytes v occupies after its own type tag
// byte — the "body size" the decoder needs to skip from one sibling to the
// next during List/Table/Dictionary recursion. Decode reports exactly
// 1 + Size(v) bytes consumed for a successful parse of v; for Error the
// NUL terminator it reads is not included.
func Size(v *Value) int {
	switch v.Kind {
	case KindBool, KindByte, KindChar:
		return 1
	case KindShort:
		return 2
	case KindInt, KindMonth, KindDate, KindMinute, KindSecond, KindTime, KindReal:
		return 4
	case KindLong, KindTimestamp, KindDateTime, KindTimeSpan, KindFloat:
		return 8
	case KindGUID:
		return 16
	case KindNil, KindNilVector:
		return 1 // the one reserved byte following the tag

	case KindBoolVector:
		return 1 + 4 + len(v.Bools)
	case KindByteVector:
		return 1 + 4 + len(v.Bytes)
	case KindShortVector:
		return 1 + 4 + 2*len(v.Shorts)
	case KindIntVector, KindMonthVector, KindDateVector, KindMinuteVector, KindSecondVector, KindTimeVector:
		return 1 + 4 + 4*len(v.Ints32)
	case KindLongVector, KindTimestampVector, KindDateTimeVector, KindTimeSpanVector:
		return 1 + 4 + 8*len(v.Ints64)
	case KindRealVector:
		return 1 + 4 + 4*len(v.Reals)
	case KindFloatVector:
		return 1 + 4 + 8*len(v.Floats)
	case KindGUIDVector:
		return 1 + 4 + 16*len(v.GUIDs)

	case KindSymbol:
		return len(v.Symbol) + 1
	case KindSymbolVector:
		total := 1 + 4
		for _, s := range v.Symbols {
			total += len(s) + 1
		}
		return total
	case KindCharVector:
		return 1 + 4 + len(v.Text)

	case KindList:
		total := 1 + 4
		for _, child := range v.List {
			total += 1 + Size(child)
		}
		return total

	case KindTable:
		return 1 + Size(v.Dict) + 1
	case KindDictionary:
		return 1 + Size(v.Keys) + 1 + Size(v.Vals)

	case KindError:
		return len(v.Err)
	}
	return 0
}
