package payload

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders v in a compact, q-console-flavored form: atoms print their
// value, symbols carry a leading backtick, numeric and GUID vectors are
// space-separated (boolean, byte and symbol vectors print packed),
// heterogeneous lists are parenthesized and semicolon-separated, and a
// dictionary prints as keys!values. Temporal kinds print their raw wire
// counts — converting them to calendar representations is a consumer
// concern, not a codec one.
func (v *Value) String() string {
	if v == nil {
		return "::"
	}
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return "1b"
		}
		return "0b"
	case KindGUID:
		return formatGUID(v.GUID)
	case KindByte:
		return fmt.Sprintf("0x%02x", v.Byte)
	case KindShort:
		return strconv.FormatInt(int64(int16(v.Short)), 10) + "h"
	case KindInt, KindMonth, KindDate, KindMinute, KindSecond, KindTime:
		return strconv.FormatInt(int64(int32(v.Int32)), 10) + "i"
	case KindLong, KindTimestamp, KindDateTime, KindTimeSpan:
		return strconv.FormatInt(int64(v.Int64), 10)
	case KindReal:
		return strconv.FormatFloat(float64(v.Real), 'g', -1, 32) + "e"
	case KindFloat:
		return strconv.FormatFloat(v.Float64, 'g', -1, 64) + "f"
	case KindChar:
		return `"` + string(v.Char) + `"`
	case KindSymbol:
		return "`" + v.Symbol
	case KindError:
		return "'" + v.Err
	case KindNil, KindNilVector:
		return "::"

	case KindBoolVector:
		var sb strings.Builder
		for _, b := range v.Bools {
			if b {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		sb.WriteByte('b')
		return sb.String()
	case KindGUIDVector:
		parts := make([]string, len(v.GUIDs))
		for i, g := range v.GUIDs {
			parts[i] = formatGUID(g)
		}
		return strings.Join(parts, " ")
	case KindByteVector:
		var sb strings.Builder
		sb.WriteString("0x")
		for _, b := range v.Bytes {
			fmt.Fprintf(&sb, "%02x", b)
		}
		return sb.String()
	case KindShortVector:
		parts := make([]string, len(v.Shorts))
		for i, s := range v.Shorts {
			parts[i] = strconv.FormatInt(int64(int16(s)), 10)
		}
		return strings.Join(parts, " ") + "h"
	case KindIntVector, KindMonthVector, KindDateVector, KindMinuteVector, KindSecondVector, KindTimeVector:
		parts := make([]string, len(v.Ints32))
		for i, n := range v.Ints32 {
			parts[i] = strconv.FormatInt(int64(int32(n)), 10)
		}
		return strings.Join(parts, " ") + "i"
	case KindLongVector, KindTimestampVector, KindDateTimeVector, KindTimeSpanVector:
		parts := make([]string, len(v.Ints64))
		for i, n := range v.Ints64 {
			parts[i] = strconv.FormatInt(int64(n), 10)
		}
		return strings.Join(parts, " ")
	case KindRealVector:
		parts := make([]string, len(v.Reals))
		for i, r := range v.Reals {
			parts[i] = strconv.FormatFloat(float64(r), 'g', -1, 32)
		}
		return strings.Join(parts, " ") + "e"
	case KindFloatVector:
		parts := make([]string, len(v.Floats))
		for i, f := range v.Floats {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(parts, " ") + "f"
	case KindCharVector:
		return `"` + v.Text + `"`
	case KindSymbolVector:
		var sb strings.Builder
		for _, s := range v.Symbols {
			sb.WriteByte('`')
			sb.WriteString(s)
		}
		return sb.String()

	case KindList:
		parts := make([]string, len(v.List))
		for i, child := range v.List {
			parts[i] = child.String()
		}
		return "(" + strings.Join(parts, ";") + ")"
	case KindDictionary:
		return v.Keys.String() + "!" + v.Vals.String()
	case KindTable:
		return "+" + v.Dict.String()
	}
	return fmt.Sprintf("?kind %d", v.Kind)
}

func formatGUID(g [16]byte) string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", g[:4], g[4:6], g[6:8], g[8:10], g[10:])
}
